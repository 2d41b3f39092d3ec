package chat

import (
	"context"

	"engagesphere/pkg/llm"
)

// Extractor obtains the raw intent string for a query. The output is
// expected to be one of the two JSON shapes ParseIntent accepts, but the
// dispatcher validates rather than trusts it.
type Extractor interface {
	Extract(ctx context.Context, query, contextBlob string) (string, error)
}

const extractorSystemPrompt = `You are the AI assistant for "EngageSphere". Analyze the user's query and the provided context, then choose one of two paths:

1. Function call: if the user wants to register for an event, cancel a registration, or list their events, return a JSON object with the key "action" set to "register", "cancel" or "list_registrations". For "register" and "cancel" also include an "event_name" key with the event name extracted from the query.

2. Conversational response: for anything else, return a JSON object with a single key "response" containing your friendly answer, based only on the provided context. If the answer is not in the context, say you do not have that information.

Return a single, valid JSON object and nothing else.`

// maxContextChars truncates the context blob so it stays within the model's
// input window.
const maxContextChars = 3000

// LLMExtractor delegates extraction to a chat completion model.
type LLMExtractor struct {
	client *llm.Client
}

func NewLLMExtractor(client *llm.Client) *LLMExtractor {
	return &LLMExtractor{client: client}
}

func (e *LLMExtractor) Extract(ctx context.Context, query, contextBlob string) (string, error) {
	if len(contextBlob) > maxContextChars {
		contextBlob = contextBlob[:maxContextChars] + "\n... (context truncated)"
	}
	return e.client.ChatCompletion(ctx, []llm.Message{
		{Role: "system", Content: extractorSystemPrompt},
		{Role: "user", Content: "### Context\n" + contextBlob + "\n\n### User Question\n" + query},
	})
}
