package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/repository"
)

// MessagePostgres is a PostgreSQL implementation of repository.MessageRepository.
type MessagePostgres struct {
	db *sql.DB
}

// NewMessagePostgres creates a new MessagePostgres repository.
func NewMessagePostgres(db *sql.DB) *MessagePostgres {
	return &MessagePostgres{db: db}
}

var _ repository.MessageRepository = (*MessagePostgres)(nil)

// Create inserts a chat message.
func (r *MessagePostgres) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	updates, err := json.Marshal(msg.Updates)
	if err != nil {
		return nil, fmt.Errorf("encode updates: %w", err)
	}
	const q = `
		INSERT INTO messages (id, document_id, role, content, updates, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, document_id, role, content, updates, created_at
	`
	return scanMessage(r.db.QueryRowContext(ctx, q,
		msg.ID,
		msg.DocumentID,
		string(msg.Role),
		msg.Content,
		updates,
		msg.CreatedAt,
	))
}

// ListByDocument returns the latest messages of a document in chronological order.
func (r *MessagePostgres) ListByDocument(ctx context.Context, documentID string, limit int) ([]model.Message, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		const q = `
			SELECT id, document_id, role, content, updates, created_at FROM (
				SELECT id, document_id, role, content, updates, created_at
				FROM messages
				WHERE document_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT $2
			) recent
			ORDER BY created_at ASC, id ASC
		`
		rows, err = r.db.QueryContext(ctx, q, documentID, limit)
	} else {
		const q = `
			SELECT id, document_id, role, content, updates, created_at
			FROM messages
			WHERE document_id = $1
			ORDER BY created_at ASC, id ASC
		`
		rows, err = r.db.QueryContext(ctx, q, documentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var (
		m       model.Message
		role    string
		updates []byte
	)
	if err := row.Scan(&m.ID, &m.DocumentID, &role, &m.Content, &updates, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Role = model.Role(role)
	if err := unmarshalJSON(updates, &m.Updates); err != nil {
		return nil, fmt.Errorf("decode updates of message %s: %w", m.ID, err)
	}
	return &m, nil
}
