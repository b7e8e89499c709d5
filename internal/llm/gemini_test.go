package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/camerontabion/JurisFlo/internal/config"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

type fakeGenerator struct {
	text     string
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	deadline bool
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = cfg
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

func newTestGemini(gen *fakeGenerator) *Gemini {
	return newGemini(gen, config.LLMConfig{Temperature: 0.1, MaxInputChars: 100, TimeoutSec: 30})
}

func TestNewGemini_RequiresAPIKey(t *testing.T) {
	g, err := NewGemini(context.Background(), config.LLMConfig{})
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGemini_ExtractFields(t *testing.T) {
	gen := &fakeGenerator{text: `{"fields":[
		{"key":"company_name","label":" Company Name ","description":"Legal name","type":"text","pattern":"[Company Name]"},
		{"key":"","label":"Date","type":"date","pattern":"[Date]"},
		{"key":" ","label":"nothing","pattern":""}
	]}`}
	g := newTestGemini(gen)

	fields, err := g.ExtractFields(context.Background(), strings.Repeat("x", 500))

	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, reconcile.Field{
		Key:         "company_name",
		Label:       "Company Name",
		Description: "Legal name",
		Type:        "text",
		Pattern:     "[Company Name]",
	}, fields[0])
	assert.Equal(t, "[Date]", fields[1].Key)

	assert.Equal(t, DefaultModel, gen.model)
	assert.True(t, gen.deadline)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	assert.Equal(t, extractSchema, gen.config.ResponseSchema)
	require.NotNil(t, gen.config.Temperature)
	assert.InDelta(t, 0.1, *gen.config.Temperature, 1e-6)
	require.Len(t, gen.contents, 1)
	assert.True(t, strings.HasSuffix(gen.contents[0].Parts[0].Text, truncationMarker))
}

func TestGemini_ExtractFieldsErrors(t *testing.T) {
	_, err := newTestGemini(&fakeGenerator{err: errors.New("quota exceeded")}).ExtractFields(context.Background(), "doc")
	assert.EqualError(t, err, "extract fields: quota exceeded")

	_, err = newTestGemini(&fakeGenerator{text: "   "}).ExtractFields(context.Background(), "doc")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = newTestGemini(&fakeGenerator{text: "I cannot help with that."}).ExtractFields(context.Background(), "doc")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGemini_Chat(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n" + `{"reply":" Thanks! What is the purchase amount? ","updates":[{"key":"company_name","value":"Acme, Inc."},{"key":"","value":"x"}]}` + "\n```"}
	g := newTestGemini(gen)

	reply, err := g.Chat(context.Background(), ChatRequest{
		DocumentName: "SAFE.docx",
		Fields: []reconcile.Field{
			{Key: "company_name", Label: "Company Name", Type: "text"},
			{Key: "purchase_amount", Label: "Purchase Amount", Type: "currency", Value: "$100"},
		},
		History: []Turn{
			{Role: RoleAssistant, Content: "What is the company name?"},
		},
		Message: "Acme, Inc.",
	})

	require.NoError(t, err)
	assert.Equal(t, "Thanks! What is the purchase amount?", reply.Reply)
	assert.Equal(t, map[string]string{"company_name": "Acme, Inc."}, reply.Updates)

	require.Len(t, gen.contents, 2)
	assert.Equal(t, genai.RoleModel, gen.contents[0].Role)
	assert.Equal(t, genai.RoleUser, gen.contents[1].Role)
	assert.Equal(t, "Acme, Inc.", gen.contents[1].Parts[0].Text)

	system := gen.config.SystemInstruction.Parts[0].Text
	assert.Contains(t, system, `"SAFE.docx"`)
	assert.Contains(t, system, "- company_name | Company Name | text | (missing)")
	assert.Contains(t, system, "- purchase_amount | Purchase Amount | currency | $100")
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, decodeJSON(`{"reply":"a"}`, &v))
	assert.Equal(t, "a", v.Reply)

	require.NoError(t, decodeJSON("```\n{\"reply\":\"b\"}\n```", &v))
	assert.Equal(t, "b", v.Reply)

	require.NoError(t, decodeJSON(`Sure! {"reply":"c"} Hope that helps.`, &v))
	assert.Equal(t, "c", v.Reply)

	assert.ErrorIs(t, decodeJSON(`no json`, &v), ErrMalformedResponse)
	assert.ErrorIs(t, decodeJSON(`{"reply": }`, &v), ErrMalformedResponse)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "anything", Truncate("anything", 0))
	assert.Equal(t, "héllo"+truncationMarker, Truncate("héllo world", 6))
	assert.Equal(t, "ab"+truncationMarker, Truncate("abc", 2))
}

func TestDisabled(t *testing.T) {
	var c Client = Disabled{}
	_, err := c.ExtractFields(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.Chat(context.Background(), ChatRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewGemini_Timeout(t *testing.T) {
	g := newGemini(&fakeGenerator{}, config.LLMConfig{Model: "gemini-custom", TimeoutSec: 5})
	assert.Equal(t, "gemini-custom", g.model)
	assert.Equal(t, 5*time.Second, g.timeout)
}
