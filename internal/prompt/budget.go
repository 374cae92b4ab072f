package prompt

// DefaultMaxSourceTokens caps the source size accepted by the gateway.
// Roughly 1M characters, well inside the default model's context window.
const DefaultMaxSourceTokens = 250000

// EstimateTokens estimates the token count for a text.
// Uses a simple heuristic: ~4 characters per token.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len(text) / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

// WithinBudget reports whether text fits under maxTokens.
// A non-positive maxTokens falls back to DefaultMaxSourceTokens.
func WithinBudget(text string, maxTokens int) bool {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxSourceTokens
	}
	return EstimateTokens(text) <= maxTokens
}
