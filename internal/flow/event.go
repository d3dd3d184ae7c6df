package flow

// EventKind discriminates the closed set of inbound event shapes.
type EventKind string

const (
	EventText         EventKind = "text"
	EventButtonChoice EventKind = "button_choice"
	EventListChoice   EventKind = "list_choice"
)

// Event is a normalized inbound user action. It contains facts only,
// no decisions: classification happens at the channel boundary, and
// interpretation happens in the machine.
type Event struct {
	Kind    EventKind
	UserID  string // stable chat identity, the phone number
	Payload string // selected option id, or trimmed text body
}
