package whatsapp

// Message types and interactive subtypes as delivered by the provider.
const (
	MessageTypeText        = "text"
	MessageTypeInteractive = "interactive"

	InteractiveTypeButtonReply = "button_reply"
	InteractiveTypeListReply   = "list_reply"
)

// Envelope is the webhook POST body. Deliveries arrive as
// entry/changes batches that may carry user messages, delivery
// statuses, or both.
type Envelope struct {
	Entry []Entry `json:"entry"`
}

type Entry struct {
	Changes []Change `json:"changes"`
}

type Change struct {
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	Messages []InboundMessage `json:"messages"`
}

// InboundMessage is one user action inside a webhook delivery. Only
// the branch named by Type is populated; the others decode to zero
// values.
type InboundMessage struct {
	From        string      `json:"from"`
	ID          string      `json:"id"`
	Timestamp   string      `json:"timestamp"`
	Type        string      `json:"type"`
	Text        Text        `json:"text"`
	Interactive Interactive `json:"interactive"`
}

type Text struct {
	Body string `json:"body"`
}

type Interactive struct {
	Type        string `json:"type"`
	ButtonReply Reply  `json:"button_reply"`
	ListReply   Reply  `json:"list_reply"`
}

// Reply is a selected button or list row.
type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Messages flattens the entry/changes nesting into the inbound message
// list. Status-only deliveries flatten to nothing.
func (e Envelope) Messages() []InboundMessage {
	var out []InboundMessage
	for _, entry := range e.Entry {
		for _, change := range entry.Changes {
			out = append(out, change.Value.Messages...)
		}
	}
	return out
}
