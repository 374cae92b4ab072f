// Package languages holds the static table of supported languages.
package languages

import "github.com/pricofy/omnicode/internal/domain"

// GenericLabel is shown for ids that are not in the registry.
const GenericLabel = "Unknown"

// DefaultExtension is used for exports when the language has no extension.
const DefaultExtension = "txt"

// Language ids that carry conversion rules.
const (
	English    = "english"
	PineScript = "pinescript"
	LipiScript = "lipiscript"
)

var supported = []domain.Language{
	{ID: domain.AutoDetect, DisplayName: "Auto-detect", FileExtension: ""},
	{ID: English, DisplayName: "Plain English", FileExtension: "txt"},
	{ID: PineScript, DisplayName: "Pine Script (v5)", FileExtension: "pine"},
	{ID: LipiScript, DisplayName: "Lipi Script", FileExtension: "lipi"},
	{ID: "python", DisplayName: "Python", FileExtension: "py"},
	{ID: "javascript", DisplayName: "JavaScript", FileExtension: "js"},
	{ID: "typescript", DisplayName: "TypeScript", FileExtension: "ts"},
	{ID: "java", DisplayName: "Java", FileExtension: "java"},
	{ID: "cpp", DisplayName: "C++", FileExtension: "cpp"},
	{ID: "csharp", DisplayName: "C#", FileExtension: "cs"},
	{ID: "go", DisplayName: "Go", FileExtension: "go"},
	{ID: "rust", DisplayName: "Rust", FileExtension: "rs"},
	{ID: "ruby", DisplayName: "Ruby", FileExtension: "rb"},
	{ID: "php", DisplayName: "PHP", FileExtension: "php"},
	{ID: "swift", DisplayName: "Swift", FileExtension: "swift"},
	{ID: "kotlin", DisplayName: "Kotlin", FileExtension: "kt"},
	{ID: "dart", DisplayName: "Dart", FileExtension: "dart"},
	{ID: "r", DisplayName: "R", FileExtension: "r"},
	{ID: "sql", DisplayName: "SQL", FileExtension: "sql"},
	{ID: "bash", DisplayName: "Bash", FileExtension: "sh"},
	{ID: "c", DisplayName: "C", FileExtension: "c"},
	{ID: "perl", DisplayName: "Perl", FileExtension: "pl"},
	{ID: "lua", DisplayName: "Lua", FileExtension: "lua"},
	{ID: "scala", DisplayName: "Scala", FileExtension: "scala"},
	{ID: "haskell", DisplayName: "Haskell", FileExtension: "hs"},
	{ID: "objectivec", DisplayName: "Objective-C", FileExtension: "m"},
}

// Registry is an immutable, ordered lookup table of languages.
type Registry struct {
	ordered []domain.Language
	byID    map[string]domain.Language
}

// Default returns the registry of all supported languages.
func Default() *Registry {
	return New(supported)
}

// New builds a registry from an ordered list. Later duplicates are ignored.
func New(langs []domain.Language) *Registry {
	r := &Registry{
		ordered: make([]domain.Language, 0, len(langs)),
		byID:    make(map[string]domain.Language, len(langs)),
	}
	for _, l := range langs {
		if _, dup := r.byID[l.ID]; dup {
			continue
		}
		r.ordered = append(r.ordered, l)
		r.byID[l.ID] = l
	}
	return r
}

// All returns every language in display order, including the auto-detect entry.
func (r *Registry) All() []domain.Language {
	out := make([]domain.Language, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Targets returns the languages that may be selected as a conversion target.
func (r *Registry) Targets() []domain.Language {
	out := make([]domain.Language, 0, len(r.ordered))
	for _, l := range r.ordered {
		if l.ID != domain.AutoDetect {
			out = append(out, l)
		}
	}
	return out
}

// Lookup returns the language with the given id.
func (r *Registry) Lookup(id string) (domain.Language, bool) {
	l, ok := r.byID[id]
	return l, ok
}

// IsSource reports whether id may be used as a source language.
func (r *Registry) IsSource(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IsTarget reports whether id may be used as a target language.
func (r *Registry) IsTarget(id string) bool {
	return id != domain.AutoDetect && r.IsSource(id)
}

// DisplayName returns the human name for id, or GenericLabel.
func (r *Registry) DisplayName(id string) string {
	if l, ok := r.byID[id]; ok {
		return l.DisplayName
	}
	return GenericLabel
}

// Extension returns the export file extension for id, or DefaultExtension.
func (r *Registry) Extension(id string) string {
	if l, ok := r.byID[id]; ok && l.FileExtension != "" {
		return l.FileExtension
	}
	return DefaultExtension
}
