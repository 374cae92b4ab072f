// Package oracle wraps the external model providers that perform conversions.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Backend names.
const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
	BackendLambda = "lambda"
)

// Oracle turns an instruction into the raw JSON text of a conversion result.
// Implementations must ask the provider for output matching ResultSchema.
type Oracle interface {
	Generate(ctx context.Context, instruction string) (string, error)
	Name() string
}

// Config selects and configures a backend.
type Config struct {
	Backend        string
	APIKey         string
	Model          string
	BaseURL        string
	FunctionName   string
	ThinkingBudget int
	Timeout        time.Duration
}

// Default models per backend.
const (
	DefaultGeminiModel = "gemini-3-pro-preview"
	DefaultOpenAIModel = "gpt-4o"
)

// DefaultThinkingBudget is the thinking token budget for models that support it.
const DefaultThinkingBudget = 32768

// Schema is a minimal JSON schema for structured model output.
type Schema struct {
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties bool               `json:"additionalProperties"`
}

// MarshalJSON implements json.Marshaler; the alias type prevents recursion.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	return json.Marshal((*alias)(s))
}

// ResultSchema is the three-field contract every backend asks for.
var ResultSchema = &Schema{
	Type: "object",
	Properties: map[string]*Schema{
		"success": {
			Type:        "boolean",
			Description: "True if conversion was successful.",
		},
		"outputCode": {
			Type:        "string",
			Description: "The formatted converted code. Empty if success is false.",
		},
		"errorContext": {
			Type:        "string",
			Description: "Detailed explanation of why conversion failed, if success is false.",
		},
	},
	Required: []string{"success", "outputCode"},
}

// New constructs the backend named in cfg.
func New(ctx context.Context, cfg Config) (Oracle, error) {
	switch cfg.Backend {
	case BackendGemini, "":
		return NewGemini(ctx, cfg)
	case BackendOpenAI:
		return NewOpenAI(cfg)
	case BackendLambda:
		return NewLambda(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown oracle backend %q", cfg.Backend)
	}
}
