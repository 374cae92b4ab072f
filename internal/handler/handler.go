// Package handler adapts conversion requests arriving over Lambda or HTTP to
// the gateway and maps outcomes to status codes.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/pricofy/omnicode/internal/domain"
)

// Request is the input to the conversion endpoint.
type Request = domain.ConversionRequest

// Response is the output of a direct (non-HTTP) invocation. Exactly one of
// Result or Error is set.
type Response struct {
	*domain.ConversionResult
	Error string `json:"error,omitempty"`
}

// Converter is the gateway operation the handler delegates to.
type Converter interface {
	Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error)
}

// CORSHeaders are attached to every HTTP response.
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

// Handler serves conversion requests.
type Handler struct {
	converter Converter
	initErr   error
	logger    *slog.Logger
}

// New creates a Handler over c.
func New(c Converter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{converter: c, logger: logger}
}

// Unavailable creates a Handler that answers every request with a
// configuration error, so a misconfigured function still responds.
func Unavailable(err error, logger *slog.Logger) *Handler {
	h := New(nil, logger)
	h.initErr = err
	return h
}

// Handle processes one conversion request and returns the HTTP status and
// body to send: a domain.ConversionResult or a domain.ErrorResponse.
func (h *Handler) Handle(ctx context.Context, req Request) (int, any) {
	if h.initErr != nil {
		h.logger.Error("conversion gateway unavailable", "error", h.initErr)
		return http.StatusInternalServerError, domain.ErrorResponse{Error: h.initErr.Error()}
	}

	result, err := h.converter.Convert(ctx, req)
	if err != nil {
		if !domain.IsValidation(err) && !domain.IsEngine(err) {
			h.logger.Error("unexpected conversion failure", "target", req.TargetLang, "error", err)
		}
		return statusFor(err), domain.ErrorResponse{Error: messageFor(err)}
	}
	return http.StatusOK, result
}

// HandleDirect serves a direct Lambda invocation with a JSON request body.
func (h *Handler) HandleDirect(ctx context.Context, req Request) (*Response, error) {
	_, body := h.Handle(ctx, req)
	switch v := body.(type) {
	case *domain.ConversionResult:
		return &Response{ConversionResult: v}, nil
	case domain.ErrorResponse:
		return &Response{Error: v.Error}, nil
	default:
		return nil, errors.New("unexpected handler body")
	}
}

// HandleAPIGateway serves an API Gateway proxy event.
func (h *Handler) HandleAPIGateway(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch event.HTTPMethod {
	case http.MethodOptions:
		return proxyResponse(http.StatusOK, "ok"), nil
	case http.MethodPost:
	default:
		return jsonProxyResponse(http.StatusMethodNotAllowed, domain.ErrorResponse{Error: "method not allowed"}), nil
	}

	var req Request
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return jsonProxyResponse(http.StatusBadRequest, domain.ErrorResponse{Error: "invalid JSON body"}), nil
	}

	status, body := h.Handle(ctx, req)
	return jsonProxyResponse(status, body), nil
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsEngine(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// MessageInternal is returned for failures outside the error taxonomy.
const MessageInternal = "internal error"

// messageFor returns the caller-facing text. Engine errors expose only their
// message, never the wrapped transport diagnostics; unclassified errors are
// replaced by MessageInternal.
func messageFor(err error) string {
	var eerr *domain.EngineError
	if errors.As(err, &eerr) {
		return eerr.Message
	}
	if domain.IsValidation(err) {
		return err.Error()
	}
	return MessageInternal
}

func jsonProxyResponse(status int, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"error":"failed to encode response"}`)
	}
	resp := proxyResponse(status, string(raw))
	resp.Headers["Content-Type"] = "application/json"
	return resp
}

func proxyResponse(status int, body string) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(CORSHeaders)+1)
	for k, v := range CORSHeaders {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}
