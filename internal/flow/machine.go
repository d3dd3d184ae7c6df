package flow

import (
	"fmt"
	"strings"
	"time"
)

// Button ids the machine recognizes.
const (
	ButtonWorkMenu   = "work_menu"
	ButtonMyStatus   = "my_status"
	ButtonConfirmYes = "confirm_yes"
	ButtonConfirmNo  = "confirm_no"
)

// Commands recognized as free text, case-insensitive.
const (
	commandStart  = "start"
	commandMenu   = "menu"
	commandCancel = "cancel"
)

const (
	textMainMenu      = "What would you like to do?"
	textCancelled     = "Cancelled. Back to the main menu."
	textUnknownOption = "That option is not on the list. Please pick one of the options below."
	textUseButtons    = "Please use the menu buttons below."
	textNoRecords     = "No saved entries yet."
)

// Machine is the conversation state machine. Transition maps (session,
// event) to (next session, effects); all side effects come back as the
// ordered effect list, so the machine itself touches nothing outside
// its arguments.
type Machine struct {
	catalog Catalog
	now     func() time.Time
}

// NewMachine builds a machine over the given option catalog. A nil
// clock defaults to time.Now; tests inject a fixed one.
func NewMachine(catalog Catalog, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{catalog: catalog, now: now}
}

// Transition is total: every (state, event) pair lands in a defined
// branch, with a re-prompt catch-all, so malformed or out-of-sequence
// input can never corrupt a session or produce an undefined outbound
// action. The input session is never mutated.
func (m *Machine) Transition(sess Session, ev Event) (Session, []Effect) {
	// Cancellation wins over every state-specific rule.
	if ev.Kind == EventText && strings.EqualFold(ev.Payload, commandCancel) {
		return NewSession(), []Effect{
			send(ev.UserID, PlainText{Body: textCancelled}),
			send(ev.UserID, m.mainMenu()),
		}
	}

	switch sess.State {
	case StateIdle:
		return m.fromIdle(sess, ev)
	case StateAwaitingWorkType:
		return m.fromAwaitingWorkType(sess, ev)
	case StateAwaitingShift:
		return m.fromAwaitingShift(sess, ev)
	case StateAwaitingHours:
		return m.fromAwaitingHours(sess, ev)
	case StateAwaitingConfirmation:
		return m.fromAwaitingConfirmation(sess, ev)
	default:
		// A state tag this build does not know (stale store data)
		// restarts the dialogue.
		return NewSession(), []Effect{send(ev.UserID, m.mainMenu())}
	}
}

func (m *Machine) fromIdle(sess Session, ev Event) (Session, []Effect) {
	switch {
	case ev.Kind == EventText &&
		(strings.EqualFold(ev.Payload, commandStart) || strings.EqualFold(ev.Payload, commandMenu)):
		return sess.Clone(), []Effect{send(ev.UserID, m.mainMenu())}

	case ev.Kind == EventButtonChoice && ev.Payload == ButtonWorkMenu:
		// A new flow starts with a clean slate regardless of what the
		// stored fields held.
		next := Session{State: StateAwaitingWorkType, Fields: map[string]string{}}
		return next, []Effect{send(ev.UserID, m.workPrompt())}

	case ev.Kind == EventButtonChoice && ev.Payload == ButtonMyStatus:
		return sess.Clone(), []Effect{ShowStatus{UserID: ev.UserID}}

	default:
		return m.reprompt(sess, ev)
	}
}

func (m *Machine) fromAwaitingWorkType(sess Session, ev Event) (Session, []Effect) {
	if ev.Kind != EventListChoice {
		return m.reprompt(sess, ev)
	}
	opt, ok := findOption(m.catalog.WorkTypes, ev.Payload)
	if !ok {
		return sess.Clone(), []Effect{
			send(ev.UserID, PlainText{Body: textUnknownOption}),
			send(ev.UserID, m.workPrompt()),
		}
	}
	next := sess.Clone()
	next.Fields[FieldWork] = opt.ID
	next.State = StateAwaitingShift
	return next, []Effect{send(ev.UserID, m.shiftPrompt())}
}

func (m *Machine) fromAwaitingShift(sess Session, ev Event) (Session, []Effect) {
	if ev.Kind != EventListChoice {
		return m.reprompt(sess, ev)
	}
	opt, ok := findOption(m.catalog.Shifts, ev.Payload)
	if !ok {
		return sess.Clone(), []Effect{
			send(ev.UserID, PlainText{Body: textUnknownOption}),
			send(ev.UserID, m.shiftPrompt()),
		}
	}
	next := sess.Clone()
	next.Fields[FieldShift] = opt.ID
	next.State = StateAwaitingHours
	return next, []Effect{send(ev.UserID, m.hoursPrompt())}
}

func (m *Machine) fromAwaitingHours(sess Session, ev Event) (Session, []Effect) {
	if ev.Kind != EventListChoice {
		return m.reprompt(sess, ev)
	}
	opt, ok := findOption(m.catalog.Hours, ev.Payload)
	if !ok {
		return sess.Clone(), []Effect{
			send(ev.UserID, PlainText{Body: textUnknownOption}),
			send(ev.UserID, m.hoursPrompt()),
		}
	}
	next := sess.Clone()
	next.Fields[FieldHours] = opt.ID
	next.State = StateAwaitingConfirmation
	return next, []Effect{send(ev.UserID, m.confirmPrompt(next))}
}

func (m *Machine) fromAwaitingConfirmation(sess Session, ev Event) (Session, []Effect) {
	if ev.Kind != EventButtonChoice {
		return m.reprompt(sess, ev)
	}

	switch ev.Payload {
	case ButtonConfirmYes:
		if sess.Fields[FieldWork] == "" || sess.Fields[FieldShift] == "" || sess.Fields[FieldHours] == "" {
			// A confirmation without all three fields means the stored
			// session broke the collection invariant; restart.
			return NewSession(), []Effect{send(ev.UserID, m.mainMenu())}
		}
		record := CompletedRecord{
			UserID:     ev.UserID,
			Work:       sess.Fields[FieldWork],
			Shift:      sess.Fields[FieldShift],
			Hours:      sess.Fields[FieldHours],
			RecordedAt: m.now(),
		}
		// The cleared session must be committed before any effect
		// runs; a duplicate confirmation then lands in Idle and
		// persists nothing.
		return NewSession(), []Effect{
			PersistRecord{Record: record},
			send(ev.UserID, PlainText{Body: m.summary("Saved.", sess)}),
			send(ev.UserID, m.mainMenu()),
		}

	case ButtonConfirmNo:
		return NewSession(), []Effect{
			send(ev.UserID, PlainText{Body: textCancelled}),
			send(ev.UserID, m.mainMenu()),
		}

	default:
		return m.reprompt(sess, ev)
	}
}

// reprompt keeps the session unchanged and re-shows the current step's
// prompt behind a short hint.
func (m *Machine) reprompt(sess Session, ev Event) (Session, []Effect) {
	return sess.Clone(), []Effect{
		send(ev.UserID, PlainText{Body: textUseButtons}),
		send(ev.UserID, m.promptFor(sess)),
	}
}

// promptFor returns the outbound prompt matching a session's current
// step.
func (m *Machine) promptFor(sess Session) Message {
	switch sess.State {
	case StateAwaitingWorkType:
		return m.workPrompt()
	case StateAwaitingShift:
		return m.shiftPrompt()
	case StateAwaitingHours:
		return m.hoursPrompt()
	case StateAwaitingConfirmation:
		return m.confirmPrompt(sess)
	default:
		return m.mainMenu()
	}
}

// StatusMessage renders a user's recent completed records, newest
// first, for the status flow.
func (m *Machine) StatusMessage(records []CompletedRecord) PlainText {
	if len(records) == 0 {
		return PlainText{Body: textNoRecords}
	}
	var b strings.Builder
	b.WriteString("Your recent entries:")
	for _, r := range records {
		fmt.Fprintf(&b, "\n%s: %s, %s, %s",
			r.RecordedAt.Format("Jan 2"),
			labelFor(m.catalog.WorkTypes, r.Work),
			labelFor(m.catalog.Shifts, r.Shift),
			labelFor(m.catalog.Hours, r.Hours),
		)
	}
	return PlainText{Body: b.String()}
}

func (m *Machine) mainMenu() ButtonPrompt {
	return NewButtonPrompt(textMainMenu,
		Button{ID: ButtonWorkMenu, Label: "Log work"},
		Button{ID: ButtonMyStatus, Label: "My status"},
	)
}

func (m *Machine) workPrompt() ListPrompt {
	return NewListPrompt("What kind of work did you do?", "Select",
		ListSection{Title: "Work types", Rows: optionRows(m.catalog.WorkTypes)},
	)
}

func (m *Machine) shiftPrompt() ListPrompt {
	return NewListPrompt("Which shift did you work?", "Select",
		ListSection{Title: "Shifts", Rows: optionRows(m.catalog.Shifts)},
	)
}

func (m *Machine) hoursPrompt() ListPrompt {
	return NewListPrompt("How many hours did you work?", "Select",
		ListSection{Title: "Hours worked", Rows: optionRows(m.catalog.Hours)},
	)
}

func (m *Machine) confirmPrompt(sess Session) ButtonPrompt {
	return NewButtonPrompt(m.summary("Please confirm your entry.", sess),
		Button{ID: ButtonConfirmYes, Label: "Confirm"},
		Button{ID: ButtonConfirmNo, Label: "Cancel"},
	)
}

// summary renders the collected fields as display labels under a lead
// line.
func (m *Machine) summary(lead string, sess Session) string {
	return fmt.Sprintf("%s\nWork: %s\nShift: %s\nHours: %s",
		lead,
		labelFor(m.catalog.WorkTypes, sess.Fields[FieldWork]),
		labelFor(m.catalog.Shifts, sess.Fields[FieldShift]),
		labelFor(m.catalog.Hours, sess.Fields[FieldHours]),
	)
}

func optionRows(opts []Option) []ListRow {
	rows := make([]ListRow, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, ListRow{ID: o.ID, Title: o.Label, Description: o.Description})
	}
	return rows
}

func send(to string, msg Message) SendMessage {
	return SendMessage{To: to, Message: msg}
}
