package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"engagesphere/internal/engage"
	"engagesphere/internal/metrics"
	"engagesphere/internal/model"
	"engagesphere/internal/storage"
	"engagesphere/pkg/logx"
)

const (
	loginReply         = "Please log in to manage your event registrations."
	unknownActionReply = "I'm not sure how to do that yet."
	noEventNameReply   = "Which event do you mean? Please include the event name."
	busyReply          = "I'm sorry, but I'm having trouble connecting right now. Please try again in a moment."
)

// Workflows is the slice of the registration service the dispatcher drives.
type Workflows interface {
	Register(ctx context.Context, userID, eventID int64) (*model.User, *model.Event, error)
	Cancel(ctx context.Context, userID, eventID int64) (bool, error)
}

// Dispatcher resolves queries into intents and executes them.
type Dispatcher struct {
	workflows Workflows
	store     storage.Store
	extractor Extractor
	log       logx.Logger

	now func() time.Time
}

func NewDispatcher(workflows Workflows, store storage.Store, extractor Extractor, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{
		workflows: workflows,
		store:     store,
		extractor: extractor,
		log:       log.With(logx.String("component", "chat")),
		now:       time.Now,
	}
}

// Resolve obtains the raw intent string from the extractor and parses it.
// Extraction failures resolve to a fixed conversational apology rather than
// an error; the chat surface never hard-fails on the model.
func (d *Dispatcher) Resolve(ctx context.Context, query, contextBlob string) Intent {
	raw, err := d.extractor.Extract(ctx, query, contextBlob)
	if err != nil {
		d.log.Warn("intent extraction failed", logx.Err(err))
		return Conversational{Text: busyReply}
	}
	return ParseIntent(raw)
}

// Dispatch turns an intent into the user-facing reply, running the
// register/cancel workflows as needed. user is nil when the caller is not
// authenticated; actions are never performed unauthenticated.
func (d *Dispatcher) Dispatch(ctx context.Context, intent Intent, user *model.User) string {
	switch it := intent.(type) {
	case Conversational:
		metrics.ChatIntents.WithLabelValues("conversational").Inc()
		return it.Text
	case Action:
		if user == nil {
			metrics.ChatIntents.WithLabelValues("unauthenticated").Inc()
			return loginReply
		}
		metrics.ChatIntents.WithLabelValues(it.Kind).Inc()
		switch it.Kind {
		case ActionList:
			return d.listRegistrations(ctx, user)
		case ActionRegister:
			return d.register(ctx, user, it.EventName)
		case ActionCancel:
			return d.cancel(ctx, user, it.EventName)
		default:
			return unknownActionReply
		}
	default:
		return FallbackReply
	}
}

// Handle is the full query-to-reply path: it builds the context blob from
// the event catalog, resolves the intent and dispatches it.
func (d *Dispatcher) Handle(ctx context.Context, query string, user *model.User) string {
	blob, err := d.contextBlob(ctx)
	if err != nil {
		d.log.Warn("context build failed", logx.Err(err))
	}
	return d.Dispatch(ctx, d.Resolve(ctx, query, blob), user)
}

func (d *Dispatcher) listRegistrations(ctx context.Context, user *model.User) string {
	events, err := d.store.ListUpcomingEventsForUser(ctx, user.ID, d.now().UTC())
	if err != nil {
		d.log.Error("list registrations failed", logx.Int64("user", user.ID), logx.Err(err))
		return busyReply
	}
	if len(events) == 0 {
		return "You have no upcoming event registrations."
	}
	var b strings.Builder
	b.WriteString("You are registered for the following upcoming events:\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "- %s (%s)\n", ev.Name, ev.EventTime.Format("Mon, 02 Jan 2006 15:04 MST"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) register(ctx context.Context, user *model.User, eventName string) string {
	ev, reply := d.matchEvent(ctx, eventName)
	if ev == nil {
		return reply
	}
	_, _, err := d.workflows.Register(ctx, user.ID, ev.ID)
	switch {
	case errors.Is(err, engage.ErrAlreadyRegistered):
		return fmt.Sprintf("You're already registered for '%s'.", ev.Name)
	case err != nil:
		d.log.Error("chat register failed", logx.Int64("event", ev.ID), logx.Err(err))
		return busyReply
	}
	return fmt.Sprintf("You're all set for '%s'! I've scheduled your reminders.", ev.Name)
}

func (d *Dispatcher) cancel(ctx context.Context, user *model.User, eventName string) string {
	ev, reply := d.matchEvent(ctx, eventName)
	if ev == nil {
		return reply
	}
	ok, err := d.workflows.Cancel(ctx, user.ID, ev.ID)
	if err != nil {
		d.log.Error("chat cancel failed", logx.Int64("event", ev.ID), logx.Err(err))
		return busyReply
	}
	if !ok {
		return fmt.Sprintf("You don't seem to be registered for '%s'.", ev.Name)
	}
	return fmt.Sprintf("Your registration for '%s' has been cancelled.", ev.Name)
}

// matchEvent resolves a name mention to an event by case-insensitive
// substring match against the catalog. First match in catalog order wins.
func (d *Dispatcher) matchEvent(ctx context.Context, name string) (*model.Event, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, noEventNameReply
	}
	events, err := d.store.ListEvents(ctx)
	if err != nil {
		d.log.Error("event lookup failed", logx.Err(err))
		return nil, busyReply
	}
	needle := strings.ToLower(name)
	for i := range events {
		if strings.Contains(strings.ToLower(events[i].Name), needle) {
			return &events[i], ""
		}
	}
	return nil, fmt.Sprintf("I couldn't find an event named '%s'.", name)
}

// contextBlob summarizes the event catalog for the extractor prompt.
func (d *Dispatcher) contextBlob(ctx context.Context) (string, error) {
	events, err := d.store.ListEvents(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("EngageSphere is an AI-powered agent that boosts engagement for webinars and events.\n\nKnown events:\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "- %s (%s): %s\n", ev.Name, ev.EventTime.Format("2006-01-02 15:04 MST"), ev.Description)
	}
	return b.String(), nil
}
