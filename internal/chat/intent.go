// Package chat resolves free-text user queries into account actions or
// conversational replies and dispatches them against the registration
// workflows.
package chat

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FallbackReply is returned whenever the extractor's output cannot be parsed
// into a valid intent.
const FallbackReply = "I'm sorry, I had a little trouble understanding that. Could you please rephrase?"

const (
	ActionRegister = "register"
	ActionCancel   = "cancel"
	ActionList     = "list_registrations"
)

// Intent is the tagged result of parsing the extractor's output: exactly one
// of Action or Conversational.
type Intent interface{ isIntent() }

// Action is a request to perform one of the account operations.
type Action struct {
	Kind      string
	EventName string
}

// Conversational is a free-form reply to echo back to the user.
type Conversational struct {
	Text string
}

func (Action) isIntent()         {}
func (Conversational) isIntent() {}

// ParseIntent decodes the extractor's raw output. The payload must be a
// single JSON object carrying exactly one of the `action` or `response`
// keys; anything else (including valid JSON with both or neither key)
// resolves to the fallback Conversational. Model output is never trusted
// beyond its shape.
func ParseIntent(raw string) Intent {
	var payload struct {
		Action    *string `json:"action"`
		EventName *string `json:"event_name"`
		Response  *string `json:"response"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&payload); err != nil {
		return Conversational{Text: FallbackReply}
	}

	switch {
	case payload.Action != nil && payload.Response == nil:
		a := Action{Kind: strings.TrimSpace(*payload.Action)}
		if payload.EventName != nil {
			a.EventName = strings.TrimSpace(*payload.EventName)
		}
		if a.Kind == "" {
			return Conversational{Text: FallbackReply}
		}
		return a
	case payload.Response != nil && payload.Action == nil:
		text := strings.TrimSpace(*payload.Response)
		if text == "" {
			return Conversational{Text: FallbackReply}
		}
		return Conversational{Text: text}
	default:
		return Conversational{Text: FallbackReply}
	}
}
