// Package prompt builds the instruction sent to the model for a conversion.
package prompt

import (
	"fmt"
	"strings"

	"github.com/pricofy/omnicode/internal/domain"
	"github.com/pricofy/omnicode/internal/languages"
)

const autoSourcePhrase = "an automatically detected language"

// Builder composes conversion instructions.
type Builder struct {
	registry *languages.Registry
}

// NewBuilder creates a Builder that names languages through registry.
func NewBuilder(registry *languages.Registry) *Builder {
	return &Builder{registry: registry}
}

// Build returns the full instruction for req. The source text is always last.
func (b *Builder) Build(req domain.ConversionRequest) string {
	source := b.languageName(req.SourceLang)
	if req.SourceLang == "" || req.SourceLang == domain.AutoDetect {
		source = autoSourcePhrase
	}
	target := b.languageName(req.TargetLang)

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a world-class polyglot software engineer. Convert the provided code from %s to %s.\n\n", source, target)

	if block, ok := RulesFor(req.TargetLang); ok {
		sb.WriteString(block.Title)
		sb.WriteString(":\n")
		for i, line := range block.Lines {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, line)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("GENERAL RULES:\n")
	sb.WriteString("1. Logical Equivalence: The behavior must remain identical.\n")
	fmt.Fprintf(&sb, "2. Idiomatic Style: Use the standard naming conventions, patterns, and best practices of %s.\n", target)
	sb.WriteString("3. Robust Formatting: Indent and format the output as a professional formatter would.\n")
	fmt.Fprintf(&sb, "4. Dependencies: Map standard library functions and imports to their %s equivalents.\n", target)
	sb.WriteString("5. Error Handling: If the code contains constructs that are impossible to port or logically invalid, set success to false and give a detailed reason in errorContext.\n")
	sb.WriteString("6. Large Inputs: Preserve structural integrity across the whole input, however long.\n")
	if _, ok := RulesFor(req.TargetLang); ok {
		sb.WriteString("7. Follow the protocol above strictly; it overrides general style guidance.\n")
	}

	sb.WriteString("\nRespond with JSON only: {\"success\": boolean, \"outputCode\": string, \"errorContext\": string}.\n")
	sb.WriteString("\nINPUT SOURCE:\n")
	sb.WriteString(req.SourceCode)

	return sb.String()
}

// languageName prefers the registry display name and falls back to the raw id.
func (b *Builder) languageName(id string) string {
	if b.registry != nil {
		if l, ok := b.registry.Lookup(id); ok {
			return l.DisplayName
		}
	}
	return id
}
