package flow

import "time"

// CompletedRecord is the finalized tuple handed to persistence when a
// user confirms a flow. Field values are option ids as collected.
// Immutable once constructed; the machine keeps no reference after
// hand-off.
type CompletedRecord struct {
	UserID     string
	Work       string
	Shift      string
	Hours      string
	RecordedAt time.Time
}

// Effect is a side-effecting instruction emitted by a transition and
// executed by the dispatcher against an external collaborator. A
// transition with nothing to do returns an empty effect list.
type Effect interface {
	effect()
}

// SendMessage delivers one outbound message to a user.
type SendMessage struct {
	To      string
	Message Message
}

// PersistRecord hands a completed record to the persistence
// collaborator.
type PersistRecord struct {
	Record CompletedRecord
}

// ShowStatus asks the dispatcher to send the user a summary of their
// recent completed records. The machine cannot render it itself: the
// lookup needs the persistence collaborator, and transitions stay
// pure.
type ShowStatus struct {
	UserID string
}

func (SendMessage) effect()   {}
func (PersistRecord) effect() {}
func (ShowStatus) effect()    {}
