package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"worklog-bot/internal/flow"
)

// Client sends messages through the 360dialog WhatsApp API. It is the
// single concrete implementation of the dispatcher's Sender interface.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

// NewClient validates the 360dialog settings and returns a client.
func NewClient(apiURL, apiKey string) (*Client, error) {
	if apiURL == "" || apiKey == "" {
		return nil, errors.New("whatsapp: api url and api key are required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     apiKey,
	}, nil
}

// Send delivers one outbound message shape to a user. Non-2xx
// responses come back as errors; the caller decides what a failed send
// means.
func (c *Client) Send(ctx context.Context, to string, msg flow.Message) error {
	payload, err := buildPayload(to, msg)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("D360-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp: send returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// Outbound wire shapes, mirroring the provider API field for field.

type outboundPayload struct {
	MessagingProduct string               `json:"messaging_product"`
	To               string               `json:"to"`
	Type             string               `json:"type"`
	Text             *outboundText        `json:"text,omitempty"`
	Interactive      *outboundInteractive `json:"interactive,omitempty"`
}

type outboundText struct {
	Body string `json:"body"`
}

type outboundInteractive struct {
	Type   string         `json:"type"`
	Body   outboundBody   `json:"body"`
	Action outboundAction `json:"action"`
}

type outboundBody struct {
	Text string `json:"text"`
}

type outboundAction struct {
	Buttons  []outboundButton  `json:"buttons,omitempty"`
	Button   string            `json:"button,omitempty"`
	Sections []outboundSection `json:"sections,omitempty"`
}

type outboundButton struct {
	Type  string        `json:"type"`
	Reply outboundReply `json:"reply"`
}

type outboundReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type outboundSection struct {
	Title string        `json:"title"`
	Rows  []outboundRow `json:"rows"`
}

type outboundRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func buildPayload(to string, msg flow.Message) (outboundPayload, error) {
	base := outboundPayload{MessagingProduct: "whatsapp", To: to}

	switch msg := msg.(type) {
	case flow.PlainText:
		base.Type = "text"
		base.Text = &outboundText{Body: msg.Body}
		return base, nil

	case flow.ButtonPrompt:
		buttons := make([]outboundButton, 0, len(msg.Buttons))
		for _, b := range msg.Buttons {
			buttons = append(buttons, outboundButton{
				Type:  "reply",
				Reply: outboundReply{ID: b.ID, Title: b.Label},
			})
		}
		base.Type = "interactive"
		base.Interactive = &outboundInteractive{
			Type:   "button",
			Body:   outboundBody{Text: msg.Body},
			Action: outboundAction{Buttons: buttons},
		}
		return base, nil

	case flow.ListPrompt:
		sections := make([]outboundSection, 0, len(msg.Sections))
		for _, s := range msg.Sections {
			rows := make([]outboundRow, 0, len(s.Rows))
			for _, row := range s.Rows {
				rows = append(rows, outboundRow{
					ID:          row.ID,
					Title:       row.Title,
					Description: row.Description,
				})
			}
			sections = append(sections, outboundSection{Title: s.Title, Rows: rows})
		}
		base.Type = "interactive"
		base.Interactive = &outboundInteractive{
			Type:   "list",
			Body:   outboundBody{Text: msg.Body},
			Action: outboundAction{Button: msg.ButtonLabel, Sections: sections},
		}
		return base, nil

	default:
		return outboundPayload{}, fmt.Errorf("whatsapp: unsupported message shape %T", msg)
	}
}
