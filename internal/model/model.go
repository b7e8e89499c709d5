// Package model contains domain models/data structures.
// No business logic here beyond small accessors.
package model

import (
	"time"

	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

// Status is the processing state of a document.
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusParsing   Status = "parsing"
	StatusReview    Status = "review"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Company groups documents whose company-level fields are shared.
type Company struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Data      reconcile.Data `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the fill-in conversation for a document.
type Message struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	Updates    map[string]string `json:"updates,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
