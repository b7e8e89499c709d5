package repository

import (
	"context"

	"github.com/camerontabion/JurisFlo/internal/model"
)

// MessageRepository stores the chat history of a document.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)

	// ListByDocument returns the most recent limit messages, oldest first.
	// A limit <= 0 returns all of them.
	ListByDocument(ctx context.Context, documentID string, limit int) ([]model.Message, error)
}
