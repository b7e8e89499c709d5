package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/camerontabion/JurisFlo/internal/llm"
	"github.com/camerontabion/JurisFlo/internal/logger"
	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/repository"
)

const defaultHistoryLimit = 20

// ChatResult is one exchange: the stored user and assistant messages, the
// field values applied from the reply, and the document afterwards.
type ChatResult struct {
	UserMessage      *model.Message    `json:"user_message"`
	AssistantMessage *model.Message    `json:"assistant_message"`
	Applied          map[string]string `json:"applied"`
	Document         *model.Document   `json:"document"`
}

// ChatService runs the conversational fill-in of a document.
type ChatService interface {
	// Send stores the message, asks the model and applies the values it proposes.
	Send(ctx context.Context, documentID, content string) (*ChatResult, error)

	// History returns the conversation of a document, oldest first.
	History(ctx context.Context, documentID string) ([]model.Message, error)
}

type chatService struct {
	docs         DocumentService
	repo         repository.DocumentRepository
	messages     repository.MessageRepository
	llm          llm.Client
	log          *logger.Logger
	historyLimit int
	now          func() time.Time
}

// NewChatService constructs a new ChatService. historyLimit caps the number of
// earlier messages sent to the model.
func NewChatService(docs DocumentService, repo repository.DocumentRepository, messages repository.MessageRepository, client llm.Client, log *logger.Logger, historyLimit int) ChatService {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &chatService{
		docs:         docs,
		repo:         repo,
		messages:     messages,
		llm:          client,
		log:          log.With("component", "chat_service"),
		historyLimit: historyLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *chatService) Send(ctx context.Context, documentID, content string) (*ChatResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageRequired
	}
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != model.StatusReview {
		return nil, fmt.Errorf("%w: chat is available while the document is in review", ErrInvalidStatus)
	}

	history, err := s.messages.ListByDocument(ctx, doc.ID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	userMsg, err := s.messages.Create(ctx, &model.Message{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Role:       model.RoleUser,
		Content:    content,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	reply, err := s.llm.Chat(ctx, llm.ChatRequest{
		DocumentName: doc.OriginalName,
		Fields:       doc.Fields,
		History:      turns(history),
		Message:      content,
	})
	if err != nil {
		s.log.Error("chat_reply_failed", "document_id", doc.ID, "error", err.Error())
		return nil, fmt.Errorf("chat: %w", err)
	}

	applied := applyValues(doc.Fields, reply.Updates)
	if len(applied) > 0 {
		doc.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, doc); err != nil {
			return nil, fmt.Errorf("save document: %w", err)
		}
	}
	if ignored := len(reply.Updates) - len(applied); ignored > 0 {
		s.log.Debug("chat_updates_ignored", "document_id", doc.ID, "count", ignored)
	}

	text := reply.Reply
	if text == "" {
		filled, total := reconcile.Progress(doc.Fields)
		text = fmt.Sprintf("Saved. %d of %d fields are filled.", filled, total)
	}
	assistantMsg, err := s.messages.Create(ctx, &model.Message{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Role:       model.RoleAssistant,
		Content:    text,
		Updates:    applied,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}

	return &ChatResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Applied:          applied,
		Document:         doc,
	}, nil
}

func (s *chatService) History(ctx context.Context, documentID string) ([]model.Message, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByDocument(ctx, doc.ID, 0)
}

func turns(msgs []model.Message) []llm.Turn {
	out := make([]llm.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := llm.RoleUser
		if m.Role == model.RoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Turn{Role: role, Content: m.Content})
	}
	return out
}
