package flow

// State is a session's position in the collection dialogue.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingWorkType     State = "awaiting_work_type"
	StateAwaitingShift        State = "awaiting_shift"
	StateAwaitingHours        State = "awaiting_hours"
	StateAwaitingConfirmation State = "awaiting_confirmation"
)

// Keys under which collected values are stored in Session.Fields.
const (
	FieldWork  = "work"
	FieldShift = "shift"
	FieldHours = "hours"
)

// Session is one user's conversational progress: the current state tag
// plus the option ids collected so far. Fields hold ids, never display
// labels. Sessions are passed by value; Transition returns a new
// session and never mutates its input.
type Session struct {
	State  State             `json:"state"`
	Fields map[string]string `json:"fields"`
}

// NewSession returns the implicit starting session for a user with no
// stored state.
func NewSession() Session {
	return Session{State: StateIdle, Fields: map[string]string{}}
}

// Clone copies the session deeply enough that mutating the copy's
// fields never shows through the original.
func (s Session) Clone() Session {
	fields := make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		fields[k] = v
	}
	return Session{State: s.State, Fields: fields}
}
