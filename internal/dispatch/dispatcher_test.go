package dispatch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog-bot/internal/flow"
	"worklog-bot/internal/session"
	"worklog-bot/internal/whatsapp"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []flow.SendMessage
	onSend func(to string, msg flow.Message)
	err    error
}

func (f *fakeSender) Send(ctx context.Context, to string, msg flow.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onSend != nil {
		f.onSend(to, msg)
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, flow.SendMessage{To: to, Message: msg})
	return nil
}

func (f *fakeSender) messages() []flow.SendMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]flow.SendMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeStatusRecorder struct {
	mu      sync.Mutex
	saved   []flow.CompletedRecord
	saveErr error
	tries   int
}

func (f *fakeStatusRecorder) Save(ctx context.Context, rec flow.CompletedRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tries++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeStatusRecorder) Recent(ctx context.Context, userID string, n int) ([]flow.CompletedRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []flow.CompletedRecord
	for _, r := range f.saved {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakeStatusRecorder) records() []flow.CompletedRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]flow.CompletedRecord, len(f.saved))
	copy(out, f.saved)
	return out
}

func textMsg(from, body string) whatsapp.InboundMessage {
	return whatsapp.InboundMessage{From: from, Type: whatsapp.MessageTypeText, Text: whatsapp.Text{Body: body}}
}

func buttonMsg(from, id string) whatsapp.InboundMessage {
	return whatsapp.InboundMessage{
		From: from,
		Type: whatsapp.MessageTypeInteractive,
		Interactive: whatsapp.Interactive{
			Type:        whatsapp.InteractiveTypeButtonReply,
			ButtonReply: whatsapp.Reply{ID: id},
		},
	}
}

func listMsg(from, id string) whatsapp.InboundMessage {
	return whatsapp.InboundMessage{
		From: from,
		Type: whatsapp.MessageTypeInteractive,
		Interactive: whatsapp.Interactive{
			Type:      whatsapp.InteractiveTypeListReply,
			ListReply: whatsapp.Reply{ID: id},
		},
	}
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *session.MemoryStore, *fakeSender, *fakeStatusRecorder) {
	store := session.NewMemoryStore(0)
	t.Cleanup(func() { store.Close() })

	machine := flow.NewMachine(flow.DefaultCatalog(), func() time.Time {
		return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	})
	sender := &fakeSender{}
	recorder := &fakeStatusRecorder{}

	return New(store, machine, sender, recorder), store, sender, recorder
}

func TestHandleFullFlow(t *testing.T) {
	d, store, sender, recorder := newTestDispatcher(t)
	ctx := context.Background()
	user := "79991234567"

	d.Handle(ctx, textMsg(user, "menu"))
	d.Handle(ctx, buttonMsg(user, flow.ButtonWorkMenu))
	d.Handle(ctx, listMsg(user, "work_field"))
	d.Handle(ctx, listMsg(user, "shift_1"))
	d.Handle(ctx, listMsg(user, "hours_8"))
	d.Handle(ctx, buttonMsg(user, flow.ButtonConfirmYes))

	records := recorder.records()
	require.Len(t, records, 1)
	assert.Equal(t, "work_field", records[0].Work)
	assert.Equal(t, "shift_1", records[0].Shift)
	assert.Equal(t, "hours_8", records[0].Hours)

	sess, err := store.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, flow.StateIdle, sess.State)
	assert.Empty(t, sess.Fields)

	// The confirmation ends with the saved summary and the main menu.
	msgs := sender.messages()
	require.NotEmpty(t, msgs)
	menu, ok := msgs[len(msgs)-1].Message.(flow.ButtonPrompt)
	require.True(t, ok)
	assert.Equal(t, flow.ButtonWorkMenu, menu.Buttons[0].ID)

	// A duplicate confirmation delivery finds Idle and persists nothing.
	d.Handle(ctx, buttonMsg(user, flow.ButtonConfirmYes))
	assert.Len(t, recorder.records(), 1)
}

func TestHandleDropsUnclassifiable(t *testing.T) {
	d, store, sender, recorder := newTestDispatcher(t)
	ctx := context.Background()

	d.Handle(ctx, whatsapp.InboundMessage{From: "79991234567", Type: "image"})

	assert.Empty(t, sender.messages())
	assert.Empty(t, recorder.records())

	sess, err := store.Get(ctx, "79991234567")
	require.NoError(t, err)
	assert.Equal(t, flow.StateIdle, sess.State)
}

func TestHandleConcurrentConfirmPersistsOnce(t *testing.T) {
	d, store, _, recorder := newTestDispatcher(t)
	ctx := context.Background()
	user := "79991234567"

	require.NoError(t, store.Set(ctx, user, flow.Session{
		State: flow.StateAwaitingConfirmation,
		Fields: map[string]string{
			flow.FieldWork:  "work_field",
			flow.FieldShift: "shift_1",
			flow.FieldHours: "hours_8",
		},
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Handle(ctx, buttonMsg(user, flow.ButtonConfirmYes))
		}()
	}
	wg.Wait()

	assert.Len(t, recorder.records(), 1, "only the first delivery may persist")

	sess, err := store.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, flow.StateIdle, sess.State)
}

func TestSessionCommittedBeforeEffects(t *testing.T) {
	d, store, sender, _ := newTestDispatcher(t)
	ctx := context.Background()
	user := "79991234567"

	var statesSeen []flow.State
	sender.onSend = func(to string, msg flow.Message) {
		sess, err := store.Get(ctx, to)
		require.NoError(t, err)
		statesSeen = append(statesSeen, sess.State)
	}

	d.Handle(ctx, buttonMsg(user, flow.ButtonWorkMenu))

	require.NotEmpty(t, statesSeen)
	for _, st := range statesSeen {
		assert.Equal(t, flow.StateAwaitingWorkType, st,
			"the committed session must be visible before any send")
	}
}

func TestHandleStatusFlow(t *testing.T) {
	d, store, sender, recorder := newTestDispatcher(t)
	ctx := context.Background()
	user := "79991234567"

	recorder.saved = []flow.CompletedRecord{
		{UserID: user, Work: "work_field", Shift: "shift_1", Hours: "hours_8", RecordedAt: time.Now()},
		{UserID: "someone-else", Work: "work_warehouse", Shift: "shift_2", Hours: "hours_4", RecordedAt: time.Now()},
	}

	d.Handle(ctx, buttonMsg(user, flow.ButtonMyStatus))

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	text, ok := msgs[0].Message.(flow.PlainText)
	require.True(t, ok)
	assert.Contains(t, text.Body, "Field work")
	assert.NotContains(t, text.Body, "Warehouse")

	sess, err := store.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, flow.StateIdle, sess.State)
}

func TestHandleSendFailureStillCommits(t *testing.T) {
	d, store, sender, _ := newTestDispatcher(t)
	ctx := context.Background()
	user := "79991234567"

	sender.err = errors.New("provider down")

	d.Handle(ctx, buttonMsg(user, flow.ButtonWorkMenu))

	sess, err := store.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, flow.StateAwaitingWorkType, sess.State,
		"a failed send must not roll back the committed session")
}

func TestHandlePersistFailureDoesNotRetrap(t *testing.T) {
	d, store, _, recorder := newTestDispatcher(t)
	ctx := context.Background()
	user := "79991234567"

	recorder.saveErr = errors.New("storage down")

	require.NoError(t, store.Set(ctx, user, flow.Session{
		State: flow.StateAwaitingConfirmation,
		Fields: map[string]string{
			flow.FieldWork:  "work_field",
			flow.FieldShift: "shift_1",
			flow.FieldHours: "hours_8",
		},
	}))

	d.Handle(ctx, buttonMsg(user, flow.ButtonConfirmYes))

	sess, err := store.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, flow.StateIdle, sess.State,
		"the session is not rolled back to confirmation on a failed save")

	// The replay lands in Idle and never reaches the recorder again.
	d.Handle(ctx, buttonMsg(user, flow.ButtonConfirmYes))
	recorder.mu.Lock()
	assert.Equal(t, 1, recorder.tries)
	recorder.mu.Unlock()
}
