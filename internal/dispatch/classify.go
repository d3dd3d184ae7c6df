package dispatch

import (
	"strings"

	"worklog-bot/internal/flow"
	"worklog-bot/internal/whatsapp"
)

// Classify normalizes a provider message into a typed flow event. The
// second return is false for anything the machine should never see:
// media, stickers, interactive replies without an id, messages without
// a sender. Those are dropped at the boundary with no session effect
// and no outbound message.
func Classify(msg whatsapp.InboundMessage) (flow.Event, bool) {
	if msg.From == "" {
		return flow.Event{}, false
	}

	switch msg.Type {
	case whatsapp.MessageTypeText:
		body := strings.TrimSpace(msg.Text.Body)
		if body == "" {
			return flow.Event{}, false
		}
		return flow.Event{Kind: flow.EventText, UserID: msg.From, Payload: body}, true

	case whatsapp.MessageTypeInteractive:
		switch msg.Interactive.Type {
		case whatsapp.InteractiveTypeButtonReply:
			if msg.Interactive.ButtonReply.ID == "" {
				return flow.Event{}, false
			}
			return flow.Event{Kind: flow.EventButtonChoice, UserID: msg.From, Payload: msg.Interactive.ButtonReply.ID}, true

		case whatsapp.InteractiveTypeListReply:
			if msg.Interactive.ListReply.ID == "" {
				return flow.Event{}, false
			}
			return flow.Event{Kind: flow.EventListChoice, UserID: msg.From, Payload: msg.Interactive.ListReply.ID}, true
		}
	}

	return flow.Event{}, false
}
