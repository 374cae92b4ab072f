package oracle

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini generates conversions with Google's Gemini API.
type Gemini struct {
	client         *genai.Client
	model          string
	thinkingBudget int32
}

// NewGemini creates a Gemini backend.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	budget := cfg.ThinkingBudget
	if budget <= 0 {
		budget = DefaultThinkingBudget
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{
		client:         client,
		model:          model,
		thinkingBudget: int32(budget),
	}, nil
}

// Generate implements Oracle.
func (g *Gemini) Generate(ctx context.Context, instruction string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(instruction), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   genaiSchema(ResultSchema),
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(g.thinkingBudget),
		},
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	return resp.Text(), nil
}

// Name implements Oracle.
func (g *Gemini) Name() string {
	return fmt.Sprintf("gemini:%s", g.model)
}

// genaiSchema maps the shared schema onto genai's typed schema.
func genaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = genaiSchema(prop)
		}
	}
	return out
}

func genaiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "boolean":
		return genai.TypeBoolean
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}
