package model

import (
	"time"

	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

// Document represents an uploaded legal document and its extracted fields.
// RawText is persisted but never serialized; clients read fields and snippets instead.
type Document struct {
	ID           string            `json:"id"`
	CompanyID    string            `json:"company_id,omitempty"`
	Filename     string            `json:"filename"`
	OriginalName string            `json:"original_name"`
	StoragePath  string            `json:"storage_path"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type"`
	Status       Status            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	RawText      string            `json:"-"`
	Fields       []reconcile.Field `json:"fields"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// Source returns the document's contribution to its company's data.
func (d *Document) Source() reconcile.Source {
	at := d.UpdatedAt
	if d.CompletedAt != nil {
		at = *d.CompletedAt
	}
	return reconcile.Source{
		DocumentID: d.ID,
		UpdatedAt:  at,
		Fields:     d.Fields,
	}
}
