// Package gateway implements the stateless conversion request boundary
// between callers and the model oracle.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pricofy/omnicode/internal/domain"
	"github.com/pricofy/omnicode/internal/languages"
	"github.com/pricofy/omnicode/internal/oracle"
	"github.com/pricofy/omnicode/internal/prompt"
)

// DefaultTimeout bounds a single oracle call.
const DefaultTimeout = 120 * time.Second

// Outcome labels for metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
	OutcomeEngine   = "engine_error"
)

// Options configures a Gateway.
type Options struct {
	Registry        *languages.Registry
	MaxSourceTokens int
	Timeout         time.Duration
	Metrics         *Metrics
	Logger          *slog.Logger
}

// Gateway validates requests, builds prompts and calls the oracle.
// It holds no per-request state and is safe for concurrent use.
type Gateway struct {
	oracle          oracle.Oracle
	registry        *languages.Registry
	builder         *prompt.Builder
	maxSourceTokens int
	timeout         time.Duration
	metrics         *Metrics
	logger          *slog.Logger
}

// New creates a Gateway over o.
func New(o oracle.Oracle, opts Options) *Gateway {
	registry := opts.Registry
	if registry == nil {
		registry = languages.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		oracle:          o,
		registry:        registry,
		builder:         prompt.NewBuilder(registry),
		maxSourceTokens: opts.MaxSourceTokens,
		timeout:         timeout,
		metrics:         opts.Metrics,
		logger:          logger,
	}
}

// Registry returns the language registry the gateway validates against.
func (g *Gateway) Registry() *languages.Registry {
	return g.registry
}

// Convert performs one conversion. A semantic rejection is returned as a
// result with Success=false; only validation and engine failures are errors.
func (g *Gateway) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	if req.SourceLang == "" {
		req.SourceLang = domain.AutoDetect
	}

	if err := g.validate(req); err != nil {
		g.metrics.observeRequest(req.TargetLang, OutcomeInvalid)
		return nil, err
	}

	instruction := g.builder.Build(req)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.oracle.Generate(ctx, instruction)
	g.metrics.observeLatency(g.oracle.Name(), time.Since(start))
	if err != nil {
		g.metrics.observeRequest(req.TargetLang, OutcomeEngine)
		g.logger.Error("oracle call failed",
			"oracle", g.oracle.Name(),
			"target", req.TargetLang,
			"error", err,
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewEngineError("model request timed out", err)
		}
		return nil, domain.NewEngineError("failed to communicate with the AI model", err)
	}

	result, err := parseResult(text)
	if err != nil {
		g.metrics.observeRequest(req.TargetLang, OutcomeEngine)
		g.logger.Warn("malformed oracle payload",
			"oracle", g.oracle.Name(),
			"target", req.TargetLang,
			"error", err,
		)
		return nil, err
	}

	outcome := OutcomeSuccess
	if !result.Success {
		outcome = OutcomeRejected
	}
	g.metrics.observeRequest(req.TargetLang, outcome)
	g.logger.Debug("conversion finished",
		"source", req.SourceLang,
		"target", req.TargetLang,
		"outcome", outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// validate checks the request before any oracle call.
func (g *Gateway) validate(req domain.ConversionRequest) error {
	if strings.TrimSpace(req.SourceCode) == "" {
		return &domain.ValidationError{Field: "sourceCode", Reason: "is required"}
	}
	if req.TargetLang == "" {
		return &domain.ValidationError{Field: "targetLang", Reason: "is required"}
	}
	if req.TargetLang == domain.AutoDetect {
		return &domain.ValidationError{Field: "targetLang", Reason: "cannot be auto-detect"}
	}
	if !g.registry.IsTarget(req.TargetLang) {
		return &domain.ValidationError{Field: "targetLang", Reason: "unsupported language " + req.TargetLang}
	}
	if !g.registry.IsSource(req.SourceLang) {
		return &domain.ValidationError{Field: "sourceLang", Reason: "unsupported language " + req.SourceLang}
	}
	if !prompt.WithinBudget(req.SourceCode, g.maxSourceTokens) {
		return &domain.ValidationError{Field: "sourceCode", Reason: "exceeds the maximum input size"}
	}
	return nil
}

// parseResult decodes the oracle text into a result. The three-field shape is
// the oracle's responsibility; anything else is an engine failure.
func parseResult(text string) (*domain.ConversionResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewEngineError("empty response from the AI model", nil)
	}

	var raw struct {
		Success      *bool   `json:"success"`
		OutputCode   *string `json:"outputCode"`
		ErrorContext string  `json:"errorContext"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, domain.NewEngineError("malformed response from the AI model", err)
	}
	if raw.Success == nil {
		return nil, domain.NewEngineError("malformed response from the AI model: missing success", nil)
	}

	result := &domain.ConversionResult{
		Success:      *raw.Success,
		ErrorContext: raw.ErrorContext,
	}
	if raw.OutputCode != nil {
		result.OutputCode = *raw.OutputCode
	}
	if result.Success && strings.TrimSpace(result.OutputCode) == "" {
		return nil, domain.NewEngineError("AI model reported success without output", nil)
	}

	return result, nil
}
