package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"

	"github.com/camerontabion/JurisFlo/internal/config"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

const DefaultModel = "gemini-2.5-flash"

// generator is the subset of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements Client on the Gemini API.
type Gemini struct {
	models        generator
	model         string
	temperature   float32
	maxInputChars int
	timeout       time.Duration
}

var _ Client = (*Gemini)(nil)

// NewGemini builds a Gemini API client. Outgoing requests are traced.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:    genai.BackendGeminiAPI,
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(client.Models, cfg), nil
}

func newGemini(models generator, cfg config.LLMConfig) *Gemini {
	g := &Gemini{
		models:        models,
		model:         cfg.Model,
		temperature:   float32(cfg.Temperature),
		maxInputChars: cfg.MaxInputChars,
		timeout:       time.Duration(cfg.TimeoutSec) * time.Second,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	return g
}

var fieldSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"key":         {Type: genai.TypeString},
		"label":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"type":        {Type: genai.TypeString, Enum: []string{"text", "date", "number", "currency", "email", "address"}},
		"pattern":     {Type: genai.TypeString},
	},
	Required:         []string{"key", "label", "pattern"},
	PropertyOrdering: []string{"key", "label", "description", "type", "pattern"},
}

var extractSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"fields": {Type: genai.TypeArray, Items: fieldSchema},
	},
	Required: []string{"fields"},
}

var chatSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"reply": {Type: genai.TypeString},
		"updates": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"key":   {Type: genai.TypeString},
					"value": {Type: genai.TypeString},
				},
				Required: []string{"key", "value"},
			},
		},
	},
	Required: []string{"reply"},
}

type extractResponse struct {
	Fields []struct {
		Key         string `json:"key"`
		Label       string `json:"label"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Pattern     string `json:"pattern"`
	} `json:"fields"`
}

type chatResponse struct {
	Reply   string `json:"reply"`
	Updates []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"updates"`
}

func (g *Gemini) ExtractFields(ctx context.Context, text string) ([]reconcile.Field, error) {
	var out extractResponse
	contents := genai.Text(Truncate(text, g.maxInputChars))
	if err := g.generate(ctx, extractSystemPrompt, contents, extractSchema, &out); err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}

	fields := make([]reconcile.Field, 0, len(out.Fields))
	for _, f := range out.Fields {
		if strings.TrimSpace(f.Key) == "" && strings.TrimSpace(f.Pattern) == "" {
			continue
		}
		key := f.Key
		if strings.TrimSpace(key) == "" {
			key = f.Pattern
		}
		fields = append(fields, reconcile.Field{
			Key:         key,
			Label:       strings.TrimSpace(f.Label),
			Description: strings.TrimSpace(f.Description),
			Type:        f.Type,
			Pattern:     f.Pattern,
		})
	}
	return fields, nil
}

func (g *Gemini) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, t := range req.History {
		role := genai.Role(genai.RoleUser)
		if t.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	var out chatResponse
	if err := g.generate(ctx, chatSystem(req.DocumentName, req.Fields), contents, chatSchema, &out); err != nil {
		return ChatReply{}, fmt.Errorf("chat: %w", err)
	}

	reply := ChatReply{Reply: strings.TrimSpace(out.Reply), Updates: map[string]string{}}
	for _, u := range out.Updates {
		if strings.TrimSpace(u.Key) == "" {
			continue
		}
		reply.Updates[u.Key] = u.Value
	}
	return reply, nil
}

func (g *Gemini) generate(ctx context.Context, system string, contents []*genai.Content, schema *genai.Schema, out any) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	})
	if err != nil {
		return err
	}
	if resp == nil {
		return ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return ErrEmptyResponse
	}
	return decodeJSON(text, out)
}

// decodeJSON tolerates markdown fences and prose around the JSON object.
func decodeJSON(text string, out any) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	if err := json.Unmarshal([]byte(text), out); err == nil {
		return nil
	}
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ErrMalformedResponse
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
