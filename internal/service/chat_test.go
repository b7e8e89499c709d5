package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/camerontabion/JurisFlo/internal/llm"
	llmMocks "github.com/camerontabion/JurisFlo/internal/llm/mocks"
	"github.com/camerontabion/JurisFlo/internal/logger"
	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	repoMocks "github.com/camerontabion/JurisFlo/internal/repository/mocks"
)

type chatFixture struct {
	docs     *repoMocks.MockDocumentRepository
	messages *repoMocks.MockMessageRepository
	llm      *llmMocks.MockClient
}

func newChatFixture() *chatFixture {
	return &chatFixture{
		docs:     new(repoMocks.MockDocumentRepository),
		messages: new(repoMocks.MockMessageRepository),
		llm:      new(llmMocks.MockClient),
	}
}

func (f *chatFixture) service() ChatService {
	docs := NewDocumentService(nil, f.docs, nil, f.llm, nil, logger.Nop(), DocumentOptions{})
	return NewChatService(docs, f.docs, f.messages, f.llm, logger.Nop(), 0)
}

func (f *chatFixture) assertExpectations(t *testing.T) {
	f.docs.AssertExpectations(t)
	f.messages.AssertExpectations(t)
	f.llm.AssertExpectations(t)
}

func chatDocument() *model.Document {
	return &model.Document{
		ID:           "doc-1",
		OriginalName: "safe.docx",
		Status:       model.StatusReview,
		Fields: []reconcile.Field{
			{Key: "company_name", Label: "Company Name", Scope: reconcile.ScopeCompany},
			{Key: "date", Label: "Date", Scope: reconcile.ScopeDocument},
		},
	}
}

func withRole(role model.Role) interface{} {
	return mock.MatchedBy(func(m *model.Message) bool { return m.Role == role && m.DocumentID == "doc-1" })
}

func TestChatService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("applies known updates", func(t *testing.T) {
		f := newChatFixture()
		f.docs.On("FindByID", ctx, "doc-1").Return(chatDocument(), nil)
		f.messages.On("ListByDocument", ctx, "doc-1", defaultHistoryLimit).Return([]model.Message{
			{Role: model.RoleAssistant, Content: "What is the company's legal name?"},
		}, nil)
		f.messages.On("Create", ctx, withRole(model.RoleUser)).
			Return(&model.Message{ID: "m-1", Role: model.RoleUser, Content: "Acme, Inc."}, nil)
		f.llm.On("Chat", ctx, mock.MatchedBy(func(req llm.ChatRequest) bool {
			return req.Message == "Acme, Inc." &&
				req.DocumentName == "safe.docx" &&
				len(req.Fields) == 2 &&
				len(req.History) == 1 && req.History[0].Role == llm.RoleAssistant
		})).Return(llm.ChatReply{
			Reply:   "Got it. What is the date?",
			Updates: map[string]string{"Company Name": "Acme, Inc.", "unknown_field": "x"},
		}, nil)
		f.docs.On("Update", ctx, mock.MatchedBy(func(d *model.Document) bool {
			return d.Fields[0].Value == "Acme, Inc." && d.Fields[1].Value == ""
		})).Return(nil)
		f.messages.On("Create", ctx, mock.MatchedBy(func(m *model.Message) bool {
			return m.Role == model.RoleAssistant &&
				m.Content == "Got it. What is the date?" &&
				m.Updates["company_name"] == "Acme, Inc."
		})).Return(&model.Message{ID: "m-2", Role: model.RoleAssistant, Content: "Got it. What is the date?"}, nil)

		res, err := f.service().Send(ctx, "doc-1", "  Acme, Inc. ")

		require.NoError(t, err)
		assert.Equal(t, "m-1", res.UserMessage.ID)
		assert.Equal(t, "m-2", res.AssistantMessage.ID)
		assert.Equal(t, map[string]string{"company_name": "Acme, Inc."}, res.Applied)
		assert.Equal(t, "Acme, Inc.", res.Document.Fields[0].Value)
		f.assertExpectations(t)
	})

	t.Run("empty reply gets a progress message", func(t *testing.T) {
		f := newChatFixture()
		f.docs.On("FindByID", ctx, "doc-1").Return(chatDocument(), nil)
		f.messages.On("ListByDocument", ctx, "doc-1", defaultHistoryLimit).Return([]model.Message{}, nil)
		f.messages.On("Create", ctx, withRole(model.RoleUser)).Return(&model.Message{ID: "m-1"}, nil)
		f.llm.On("Chat", ctx, mock.Anything).Return(llm.ChatReply{
			Updates: map[string]string{"date": "March 1, 2025"},
		}, nil)
		f.docs.On("Update", ctx, mock.Anything).Return(nil)
		f.messages.On("Create", ctx, mock.MatchedBy(func(m *model.Message) bool {
			return m.Role == model.RoleAssistant && m.Content == "Saved. 1 of 2 fields are filled."
		})).Return(&model.Message{ID: "m-2"}, nil)

		_, err := f.service().Send(ctx, "doc-1", "March 1, 2025")

		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("no updates leaves the document alone", func(t *testing.T) {
		f := newChatFixture()
		f.docs.On("FindByID", ctx, "doc-1").Return(chatDocument(), nil)
		f.messages.On("ListByDocument", ctx, "doc-1", defaultHistoryLimit).Return([]model.Message{}, nil)
		f.messages.On("Create", ctx, withRole(model.RoleUser)).Return(&model.Message{ID: "m-1"}, nil)
		f.llm.On("Chat", ctx, mock.Anything).Return(llm.ChatReply{Reply: "Which field?"}, nil)
		f.messages.On("Create", ctx, withRole(model.RoleAssistant)).Return(&model.Message{ID: "m-2"}, nil)

		res, err := f.service().Send(ctx, "doc-1", "hello")

		require.NoError(t, err)
		assert.Empty(t, res.Applied)
		f.docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("blank message", func(t *testing.T) {
		f := newChatFixture()

		_, err := f.service().Send(ctx, "doc-1", " \n ")

		assert.ErrorIs(t, err, ErrMessageRequired)
	})

	t.Run("document not in review", func(t *testing.T) {
		f := newChatFixture()
		d := chatDocument()
		d.Status = model.StatusCompleted
		f.docs.On("FindByID", ctx, "doc-1").Return(d, nil)

		_, err := f.service().Send(ctx, "doc-1", "hi")

		assert.ErrorIs(t, err, ErrInvalidStatus)
		f.assertExpectations(t)
	})

	t.Run("model error", func(t *testing.T) {
		f := newChatFixture()
		f.docs.On("FindByID", ctx, "doc-1").Return(chatDocument(), nil)
		f.messages.On("ListByDocument", ctx, "doc-1", defaultHistoryLimit).Return([]model.Message{}, nil)
		f.messages.On("Create", ctx, withRole(model.RoleUser)).Return(&model.Message{ID: "m-1"}, nil)
		f.llm.On("Chat", ctx, mock.Anything).Return(llm.ChatReply{}, llm.ErrNotConfigured)

		_, err := f.service().Send(ctx, "doc-1", "hi")

		assert.ErrorIs(t, err, llm.ErrNotConfigured)
		assert.Contains(t, err.Error(), "chat:")
		f.assertExpectations(t)
	})

	t.Run("history error", func(t *testing.T) {
		f := newChatFixture()
		f.docs.On("FindByID", ctx, "doc-1").Return(chatDocument(), nil)
		f.messages.On("ListByDocument", ctx, "doc-1", defaultHistoryLimit).Return(nil, errors.New("db fail"))

		_, err := f.service().Send(ctx, "doc-1", "hi")

		assert.EqualError(t, err, "load history: db fail")
	})
}

func TestChatService_History(t *testing.T) {
	ctx := context.Background()

	f := newChatFixture()
	f.docs.On("FindByID", ctx, "doc-1").Return(chatDocument(), nil)
	f.messages.On("ListByDocument", ctx, "doc-1", 0).Return([]model.Message{
		{ID: "m-1", Role: model.RoleUser},
		{ID: "m-2", Role: model.RoleAssistant},
	}, nil)

	msgs, err := f.service().History(ctx, "doc-1")

	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	f.assertExpectations(t)
}

func TestTurns(t *testing.T) {
	got := turns([]model.Message{
		{Role: model.RoleUser, Content: "a"},
		{Role: model.RoleAssistant, Content: "b"},
	})
	assert.Equal(t, []llm.Turn{
		{Role: llm.RoleUser, Content: "a"},
		{Role: llm.RoleAssistant, Content: "b"},
	}, got)
}
