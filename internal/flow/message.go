package flow

import "fmt"

// Limits imposed by the interactive-message channel. Prompt
// constructors enforce them and panic on violation.
const (
	MaxButtons           = 3
	MaxButtonLabelLen    = 20
	MaxRowTitleLen       = 24
	MaxRowDescriptionLen = 72
)

// Message is one of the three outbound shapes the channel can carry:
// PlainText, ButtonPrompt, or ListPrompt.
type Message interface {
	message()
}

// PlainText is a free-form text body.
type PlainText struct {
	Body string
}

// Button is a single reply button of a ButtonPrompt.
type Button struct {
	ID    string
	Label string
}

// ButtonPrompt is a text body with up to three reply buttons.
type ButtonPrompt struct {
	Body    string
	Buttons []Button
}

// ListRow is one selectable row of a ListPrompt section.
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// ListSection groups list rows under a title.
type ListSection struct {
	Title string
	Rows  []ListRow
}

// ListPrompt is a text body with a button that opens sectioned rows.
type ListPrompt struct {
	Body        string
	ButtonLabel string
	Sections    []ListSection
}

func (PlainText) message()    {}
func (ButtonPrompt) message() {}
func (ListPrompt) message()   {}

// NewButtonPrompt builds a ButtonPrompt, panicking on limit violations.
func NewButtonPrompt(body string, buttons ...Button) ButtonPrompt {
	if len(buttons) == 0 || len(buttons) > MaxButtons {
		panic(fmt.Sprintf("flow: button prompt needs 1 to %d buttons, got %d", MaxButtons, len(buttons)))
	}
	for _, b := range buttons {
		if b.ID == "" {
			panic("flow: button id must not be empty")
		}
		if len([]rune(b.Label)) > MaxButtonLabelLen {
			panic(fmt.Sprintf("flow: button label %q exceeds %d characters", b.Label, MaxButtonLabelLen))
		}
	}
	return ButtonPrompt{Body: body, Buttons: buttons}
}

// NewListPrompt builds a ListPrompt, panicking on limit violations.
func NewListPrompt(body, buttonLabel string, sections ...ListSection) ListPrompt {
	if len(sections) == 0 {
		panic("flow: list prompt needs at least one section")
	}
	for _, s := range sections {
		for _, row := range s.Rows {
			if row.ID == "" {
				panic("flow: list row id must not be empty")
			}
			if len([]rune(row.Title)) > MaxRowTitleLen {
				panic(fmt.Sprintf("flow: list row title %q exceeds %d characters", row.Title, MaxRowTitleLen))
			}
			if len([]rune(row.Description)) > MaxRowDescriptionLen {
				panic(fmt.Sprintf("flow: list row description %q exceeds %d characters", row.Description, MaxRowDescriptionLen))
			}
		}
	}
	return ListPrompt{Body: body, ButtonLabel: buttonLabel, Sections: sections}
}
