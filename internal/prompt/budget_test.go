package prompt

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{
			name:     "empty string",
			text:     "",
			expected: 0,
		},
		{
			name:     "short text",
			text:     "x=1",
			expected: 1, // 3/4 = 0, min 1
		},
		{
			name:     "single statement",
			text:     "fmt.Println(\"hello world\")",
			expected: 6, // 26/4 = 6
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EstimateTokens(tt.text)
			if result != tt.expected {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, result, tt.expected)
			}
		})
	}
}

func TestWithinBudget(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxTokens int
		expected  bool
	}{
		{"fits", strings.Repeat("a", 40), 10, true},
		{"exceeds", strings.Repeat("a", 44), 10, false},
		{"default budget", strings.Repeat("a", 400), 0, true},
		{"default budget exceeded", strings.Repeat("a", DefaultMaxSourceTokens*4+4), -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinBudget(tt.text, tt.maxTokens); got != tt.expected {
				t.Errorf("WithinBudget() = %v, want %v", got, tt.expected)
			}
		})
	}
}
