package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricofy/omnicode/internal/domain"
	"github.com/pricofy/omnicode/internal/handler"
)

type stubConverter struct {
	result *domain.ConversionResult
	err    error
	got    domain.ConversionRequest
}

func (s *stubConverter) Convert(_ context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	s.got = req
	return s.result, s.err
}

func newTestServer(conv handler.Converter, rateLimit float64, burst int) *Server {
	return New(Options{
		Handler:   handler.New(conv, nil),
		Gatherer:  prometheus.NewRegistry(),
		RateLimit: rateLimit,
		RateBurst: burst,
	})
}

func postConvert(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://omnicode.example")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestConvertRoute(t *testing.T) {
	tests := []struct {
		name       string
		converter  *stubConverter
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "success",
			converter:  &stubConverter{result: &domain.ConversionResult{Success: true, OutputCode: "puts 1"}},
			body:       `{"sourceCode":"print(1)","sourceLang":"python","targetLang":"ruby"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "validation error",
			converter:  &stubConverter{err: &domain.ValidationError{Field: "targetLang", Reason: "is required"}},
			body:       `{"sourceCode":"print(1)"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "targetLang: is required",
		},
		{
			name:       "engine error",
			converter:  &stubConverter{err: domain.NewEngineError("failed to communicate with the AI model", nil)},
			body:       `{"sourceCode":"print(1)","targetLang":"go"}`,
			wantStatus: http.StatusBadGateway,
			wantError:  "failed to communicate with the AI model",
		},
		{
			name:       "malformed body",
			converter:  &stubConverter{},
			body:       `{"sourceCode":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postConvert(newTestServer(tt.converter, 0, 0), tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantError != "" {
				var resp domain.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantError, resp.Error)
				return
			}
			var result domain.ConversionResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, *tt.converter.result, result)
			assert.Equal(t, "ruby", tt.converter.got.TargetLang)
		})
	}
}

func TestConvertRoute_Preflight(t *testing.T) {
	s := newTestServer(&stubConverter{}, 0, 0)
	req := httptest.NewRequest(http.MethodOptions, "/api/convert", nil)
	req.Header.Set("Origin", "https://omnicode.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestConvertRoute_RateLimit(t *testing.T) {
	s := newTestServer(&stubConverter{result: &domain.ConversionResult{Success: true, OutputCode: "x"}}, 0.001, 2)
	body := `{"sourceCode":"x","targetLang":"go"}`

	assert.Equal(t, http.StatusOK, postConvert(s, body).Code)
	assert.Equal(t, http.StatusOK, postConvert(s, body).Code)

	rec := postConvert(s, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestLanguagesRoute(t *testing.T) {
	s := newTestServer(&stubConverter{}, 0, 0)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/languages", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var langs []domain.Language
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &langs))
	require.NotEmpty(t, langs)
	assert.Equal(t, domain.AutoDetect, langs[0].ID)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(&stubConverter{}, 0, 0)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorBodies(t *testing.T) {
	s := newTestServer(&stubConverter{result: &domain.ConversionResult{Success: true, OutputCode: "x"}}, 0, 0)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
	}{
		{
			name:       "body over limit",
			req:        httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(`{"sourceCode":"`+strings.Repeat("x", 9<<20)+`"}`)),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "unknown route",
			req:        httptest.NewRequest(http.MethodGet, "/api/unknown", nil),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrong method",
			req:        httptest.NewRequest(http.MethodGet, "/api/convert", nil),
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, tt.req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotContains(t, body, "message")
			msg, ok := body["error"].(string)
			require.True(t, ok, "error key missing in %s", rec.Body.String())
			assert.NotEmpty(t, msg)
		})
	}
}

func TestClientLimiter_EvictsIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newClientLimiter(1, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.Equal(t, 2, l.size())

	now = now.Add(limiterIdleTTL + time.Second)
	assert.True(t, l.allow("10.0.0.3"))

	assert.Equal(t, 1, l.size())
}
