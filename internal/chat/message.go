// Package chat runs the two conversational assistants: the legal assistant
// backed by retrieval, and the general procurement assistant.
package chat

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one transcript entry. It also decodes transcripts written by
// the browser client, where ids are millisecond numbers and timestamps are
// bare clock times.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"type"`
	Text      string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources,omitempty"`
	IsError   bool      `json:"isError,omitempty"`
}

// clockLayouts are the time-only forms the browser client stored.
var clockLayouts = []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM"}

func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	var raw struct {
		plain
		ID        json.RawMessage `json:"id"`
		Timestamp string          `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Message(raw.plain)
	m.ID = decodeID(raw.ID)
	m.Timestamp = parseTimestamp(raw.Timestamp)
	return nil
}

// decodeID accepts a JSON string or number.
func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// parseTimestamp reads RFC 3339 or a bare clock time. A clock time keeps
// its hour on the zero date; anything else is the zero time.
func parseTimestamp(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(v)); err == nil {
			return t
		}
	}
	return time.Time{}
}

func newMessage(sender Sender, text string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: now,
	}
}

// Turn is a prior message as handed to a responder.
type Turn struct {
	Role    Sender
	Content string
}

func turns(msgs []Message) []Turn {
	out := make([]Turn, len(msgs))
	for i, m := range msgs {
		out[i] = Turn{Role: m.Sender, Content: m.Text}
	}
	return out
}
