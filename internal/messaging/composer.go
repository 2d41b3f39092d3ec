package messaging

import (
	"context"
	"fmt"
	"strings"

	"engagesphere/internal/model"
	"engagesphere/pkg/llm"
	"engagesphere/pkg/logx"
)

const composerSystemPrompt = "You are a friendly and professional event assistant. " +
	"Generate the content for the requested message type based on the provided details. " +
	"The output must start with 'Subject:' followed by a blank line and the body."

// Composer turns (user, event, message type) into message text. Generation
// goes through the LLM when one is configured; any failure falls back to a
// plain template, so Compose never reports an error.
type Composer struct {
	llm *llm.Client
	log logx.Logger
}

func NewComposer(client *llm.Client, log logx.Logger) *Composer {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Composer{llm: client, log: log.With(logx.String("component", "composer"))}
}

func (c *Composer) Compose(ctx context.Context, user *model.User, event *model.Event, messageType string) string {
	if c.llm != nil && c.llm.Configured() {
		text, err := c.llm.ChatCompletion(ctx, []llm.Message{
			{Role: "system", Content: composerSystemPrompt},
			{Role: "user", Content: composePrompt(user, event, messageType)},
		})
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			c.log.Warn("generation failed, using template",
				logx.String("type", messageType), logx.Err(err))
		}
	}
	return fallbackMessage(user, event, messageType)
}

func composePrompt(user *model.User, event *model.Event, messageType string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Message type: %s\n\n", messageType)
	fmt.Fprintf(&b, "### User Details\n- Name: %s\n- Job Title: %s\n- Interests: %s\n\n",
		user.Name, user.JobTitle, user.Interests)
	fmt.Fprintf(&b, "### Event Details\n- Name: %s\n- Description: %s\n- Time: %s\n\n",
		event.Name, event.Description, event.EventTime.Format("2006-01-02 15:04 MST"))
	b.WriteString("### Instructions\n")
	b.WriteString("- For a 'welcome' message, be warm, confirm their registration, and relate the event to their interests or job title.\n")
	b.WriteString("- For a 'content_preview' message, give a sneak peek of the event, like a key topic.\n")
	b.WriteString("- For a 'reminder_24h' or 'reminder_1h' message, build excitement and include the placeholder [EVENT_LINK].\n")
	b.WriteString("- For an 'event_starting' message, be energetic and concise, announce it is starting now, include [EVENT_LINK].\n")
	fmt.Fprintf(&b, "- For a 'follow_up' message, thank them for attending and include the recording link: %s.\n", event.RecordingURL)
	return b.String()
}

// fallbackMessage keeps the "Subject:" contract the transport parses.
func fallbackMessage(user *model.User, event *model.Event, messageType string) string {
	return fmt.Sprintf("Subject: Regarding %s\n\nHi %s,\n\nThis is a %s message for the event '%s'.\n\nEvent Time: %s\n\nBest,\nEvent Team",
		event.Name, user.Name, messageType, event.Name, event.EventTime.Format("2006-01-02 15:04 MST"))
}
