package dispatch

import (
	"context"

	"worklog-bot/internal/flow"
	"worklog-bot/internal/logger"
	"worklog-bot/internal/report"
	"worklog-bot/internal/session"
	"worklog-bot/internal/whatsapp"
)

// statusRecordCount is how many recent entries the status flow shows.
const statusRecordCount = 3

// Sender delivers outbound messages to the chat channel.
type Sender interface {
	Send(ctx context.Context, to string, msg flow.Message) error
}

// Dispatcher drives one inbound message through classify, transition,
// commit, and effect execution. It owns the per-user serialization the
// session store contract requires.
type Dispatcher struct {
	store    session.Store
	machine  *flow.Machine
	sender   Sender
	recorder report.Recorder
	locks    keyedMutex
}

func New(
	store session.Store,
	machine *flow.Machine,
	sender Sender,
	recorder report.Recorder,
) *Dispatcher {
	return &Dispatcher{
		store:    store,
		machine:  machine,
		sender:   sender,
		recorder: recorder,
	}
}

// Handle processes one inbound provider message. Unclassifiable
// payloads return immediately with no effect. Everything else either
// advances the session, re-prompts, or no-ops; nothing here is fatal.
func (d *Dispatcher) Handle(ctx context.Context, msg whatsapp.InboundMessage) {
	ev, ok := Classify(msg)
	if !ok {
		return
	}

	effects, ok := d.advance(ctx, ev)
	if !ok {
		return
	}

	d.execute(ctx, effects)
}

// advance runs the get-transition-set sequence as one atomic unit for
// the user key. The session commit must happen before any effect
// executes, and no network effect runs while the lock is held.
func (d *Dispatcher) advance(ctx context.Context, ev flow.Event) ([]flow.Effect, bool) {
	unlock := d.locks.lock(ev.UserID)
	defer unlock()

	sess, err := d.store.Get(ctx, ev.UserID)
	if err != nil {
		logger.Error("session load failed", map[string]any{
			"user":  ev.UserID,
			"error": err.Error(),
		})
		return nil, false
	}

	next, effects := d.machine.Transition(sess, ev)

	if err := d.store.Set(ctx, ev.UserID, next); err != nil {
		// Effects derived from an uncommitted transition must not run.
		logger.Error("session commit failed", map[string]any{
			"user":  ev.UserID,
			"error": err.Error(),
		})
		return nil, false
	}

	return effects, true
}

// execute runs effects in order. Failures are logged and never roll
// back the committed session: a failed send must not re-trap the user
// in a state they already logically exited.
func (d *Dispatcher) execute(ctx context.Context, effects []flow.Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case flow.SendMessage:
			if err := d.sender.Send(ctx, e.To, e.Message); err != nil {
				logger.Error("outbound send failed", map[string]any{
					"user":  e.To,
					"error": err.Error(),
				})
			}

		case flow.PersistRecord:
			if err := d.recorder.Save(ctx, e.Record); err != nil {
				// Logged, not retried; the session is already Idle.
				logger.Error("record save failed", map[string]any{
					"user":  e.Record.UserID,
					"error": err.Error(),
				})
			}

		case flow.ShowStatus:
			d.sendStatus(ctx, e.UserID)
		}
	}
}

func (d *Dispatcher) sendStatus(ctx context.Context, userID string) {
	records, err := d.recorder.Recent(ctx, userID, statusRecordCount)
	if err != nil {
		logger.Error("status lookup failed", map[string]any{
			"user":  userID,
			"error": err.Error(),
		})
		return
	}
	if err := d.sender.Send(ctx, userID, d.machine.StatusMessage(records)); err != nil {
		logger.Error("outbound send failed", map[string]any{
			"user":  userID,
			"error": err.Error(),
		})
	}
}
