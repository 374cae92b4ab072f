// Package domain contains the core domain types for the conversion gateway.
package domain

import "time"

// AutoDetect is the source language sentinel meaning the model infers the
// language from content. It is never a valid target.
const AutoDetect = "auto"

// Default editor languages.
const (
	DefaultSourceLang = AutoDetect
	DefaultTargetLang = "python"
)

// ConversionRequest is the input to the gateway.
type ConversionRequest struct {
	SourceCode string `json:"sourceCode"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

// ConversionResult is the structured payload produced by the model.
type ConversionResult struct {
	Success      bool   `json:"success"`
	OutputCode   string `json:"outputCode"`
	ErrorContext string `json:"errorContext,omitempty"`
}

// Output returns the converted code, or "" when the conversion was rejected.
func (r ConversionResult) Output() string {
	if !r.Success {
		return ""
	}
	return r.OutputCode
}

// ErrorResponse is the body returned on non-2xx gateway responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Language is an entry of the language registry.
type Language struct {
	ID            string `json:"id"`
	DisplayName   string `json:"name"`
	FileExtension string `json:"extension"`
}

// HistoryEntry is a stored successful conversion.
type HistoryEntry struct {
	ID           string    `json:"id"`
	SourceCode   string    `json:"sourceCode"`
	TargetCode   string    `json:"targetCode"`
	SourceLang   string    `json:"sourceLanguage"`
	TargetLang   string    `json:"targetLanguage"`
	ErrorContext string    `json:"errorContext,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EditorState is the client's working state.
type EditorState struct {
	SourceCode   string `json:"sourceCode"`
	TargetCode   string `json:"targetCode"`
	SourceLang   string `json:"sourceLanguage"`
	TargetLang   string `json:"targetLanguage"`
	IsConverting bool   `json:"isConverting"`
	ErrorTitle   string `json:"error,omitempty"`
	ErrorDetail  string `json:"errorContext,omitempty"`
}

// NewEditorState returns an empty editor with the default language pair.
func NewEditorState() EditorState {
	return EditorState{
		SourceLang: DefaultSourceLang,
		TargetLang: DefaultTargetLang,
	}
}
