// Package llm talks to the language model: placeholder extraction from a
// document's text and the field-filling chat.
package llm

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

var (
	// ErrNotConfigured is returned by Disabled, used when no API key is set.
	ErrNotConfigured = errors.New("llm is not configured")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("llm returned an empty response")
	// ErrMalformedResponse is returned when the answer is not the requested JSON.
	ErrMalformedResponse = errors.New("llm returned malformed JSON")
)

// Client is implemented by Gemini and by test doubles.
type Client interface {
	// ExtractFields lists the placeholders of a document. Keys are the
	// model's suggestion and scopes are left empty; callers canonicalize
	// and classify them.
	ExtractFields(ctx context.Context, text string) ([]reconcile.Field, error)
	// Chat answers one user message and proposes field updates.
	Chat(ctx context.Context, req ChatRequest) (ChatReply, error)
}

// Role of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one earlier message of the conversation.
type Turn struct {
	Role    Role
	Content string
}

// ChatRequest carries everything the model needs to help fill a document.
type ChatRequest struct {
	DocumentName string
	Fields       []reconcile.Field
	History      []Turn
	Message      string
}

// ChatReply is the assistant answer plus proposed values keyed by field key.
type ChatReply struct {
	Reply   string
	Updates map[string]string
}

// Disabled fails every call with ErrNotConfigured.
type Disabled struct{}

var _ Client = Disabled{}

func (Disabled) ExtractFields(context.Context, string) ([]reconcile.Field, error) {
	return nil, ErrNotConfigured
}

func (Disabled) Chat(context.Context, ChatRequest) (ChatReply, error) {
	return ChatReply{}, ErrNotConfigured
}

const truncationMarker = "\n[... document truncated ...]"

// Truncate limits text to maxChars runes. Non-positive maxChars means no limit.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return strings.TrimRightFunc(text[:i], isSpace) + truncationMarker
		}
		n++
	}
	return text
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
