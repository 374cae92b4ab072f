package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pricofy/omnicode/internal/domain"
)

// maxResponseBytes bounds the gateway response body read by the client.
const maxResponseBytes = 16 << 20

// HTTPGateway calls a remote conversion endpoint.
type HTTPGateway struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPGateway creates a client for the endpoint at url. apiKey, when set,
// is sent as a bearer token.
func NewHTTPGateway(url, apiKey string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPGateway{
		endpoint:   url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Convert implements Gateway. Every failure other than a decoded result is
// reported as a *domain.EngineError.
func (h *HTTPGateway) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, domain.NewEngineError("failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewEngineError("failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewEngineError("conversion request timed out", err)
		}
		return nil, domain.NewEngineError("failed to reach the conversion service", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewEngineError("failed to read the conversion response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp domain.ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return nil, domain.NewEngineError(errResp.Error, fmt.Errorf("status %d", resp.StatusCode))
		}
		return nil, domain.NewEngineError("conversion service unavailable", fmt.Errorf("status %d", resp.StatusCode))
	}

	var result domain.ConversionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, domain.NewEngineError("malformed response from the conversion service", err)
	}
	return &result, nil
}
