package query

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"google.golang.org/genai"

	"robora/internal/question"
	"robora/internal/schema"
)

// GeminiConfig configures the Gemini-backed handler.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:  apiKey,
		Model:   "gemini-2.5-flash",
		Timeout: 2 * time.Minute,
	}
}

// Gemini answers questions through the Gemini API with structured output.
// The question's schema kind selects the response schema sent with the
// request; the returned JSON is validated against the same kind before it
// is accepted.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini handler.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

// Answer renders the question, requests a structured response and validates
// it against the question's schema kind.
func (g *Gemini) Answer(ctx context.Context, q question.Question) (*question.Answer, error) {
	kind := schema.Kind(q.Schema)
	respSchema, err := schema.GenAISchema(kind)
	if err != nil {
		return nil, Fatal(err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   respSchema,
		Temperature:      genai.Ptr[float32](0),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(q.Render()), cfg)
	if err != nil {
		return nil, classify(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, Transient(fmt.Errorf("empty response from model %s", g.model))
	}

	if _, err := schema.Decode(kind, []byte(text)); err != nil {
		return nil, Validation(err)
	}

	return &question.Answer{
		Question:    q,
		Payload:     []byte(text),
		Citations:   citationsOf(resp),
		RetrievedAt: time.Now().UTC(),
	}, nil
}

// citationsOf collects citation URIs from the first candidate, if any.
func citationsOf(resp *genai.GenerateContentResponse) []string {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].CitationMetadata
	if meta == nil {
		return nil
	}
	var uris []string
	for _, c := range meta.Citations {
		if c != nil && c.URI != "" {
			uris = append(uris, c.URI)
		}
	}
	return uris
}

// classify maps a genai transport failure onto the tagged error kinds.
// Rate limits and server-side failures are transient; everything else from
// the API is fatal for the stage.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Transient(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient(err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 408, 429, 500, 502, 503, 504:
			return Transient(err)
		default:
			return Fatal(err)
		}
	}
	return Fatal(err)
}
