package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricofy/omnicode/internal/domain"
	"github.com/pricofy/omnicode/internal/prompt"
)

type fakeOracle struct {
	mu     sync.Mutex
	text   string
	err    error
	delay  time.Duration
	calls  int
	prompt string
}

func (f *fakeOracle) Generate(ctx context.Context, instruction string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompt = instruction
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func (f *fakeOracle) Name() string { return "fake" }

func validRequest() domain.ConversionRequest {
	return domain.ConversionRequest{
		SourceCode: "print('hi')",
		SourceLang: "python",
		TargetLang: "go",
	}
}

func TestConvert_Success(t *testing.T) {
	o := &fakeOracle{text: `{"success": true, "outputCode": "fmt.Println(\"hi\")"}`}
	g := New(o, Options{})

	result, err := g.Convert(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, `fmt.Println("hi")`, result.OutputCode)
	assert.Empty(t, result.ErrorContext)
	assert.Equal(t, 1, o.calls)
	assert.True(t, strings.HasSuffix(o.prompt, "print('hi')"))
}

func TestConvert_SemanticRejection(t *testing.T) {
	o := &fakeOracle{text: `{"success": false, "outputCode": "partial", "errorContext": "goroutines have no equivalent"}`}
	g := New(o, Options{})

	result, err := g.Convert(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "goroutines have no equivalent", result.ErrorContext)
	assert.Equal(t, "partial", result.OutputCode, "result is returned unchanged")
	assert.Empty(t, result.Output())
}

func TestConvert_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   domain.ConversionRequest
		field string
	}{
		{
			name:  "empty source",
			req:   domain.ConversionRequest{SourceCode: "", SourceLang: "python", TargetLang: "go"},
			field: "sourceCode",
		},
		{
			name:  "whitespace source",
			req:   domain.ConversionRequest{SourceCode: " \n\t ", SourceLang: "python", TargetLang: "go"},
			field: "sourceCode",
		},
		{
			name:  "auto target",
			req:   domain.ConversionRequest{SourceCode: "x", SourceLang: "python", TargetLang: "auto"},
			field: "targetLang",
		},
		{
			name:  "missing target",
			req:   domain.ConversionRequest{SourceCode: "x", SourceLang: "python"},
			field: "targetLang",
		},
		{
			name:  "unknown target",
			req:   domain.ConversionRequest{SourceCode: "x", SourceLang: "python", TargetLang: "cobol"},
			field: "targetLang",
		},
		{
			name:  "unknown source",
			req:   domain.ConversionRequest{SourceCode: "x", SourceLang: "cobol", TargetLang: "go"},
			field: "sourceLang",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &fakeOracle{text: `{"success": true, "outputCode": "x"}`}
			g := New(o, Options{})

			_, err := g.Convert(context.Background(), tt.req)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, o.calls, "oracle must not be called for invalid requests")
		})
	}
}

func TestConvert_AutoSourceDefault(t *testing.T) {
	o := &fakeOracle{text: `{"success": true, "outputCode": "x"}`}
	g := New(o, Options{})

	req := validRequest()
	req.SourceLang = ""
	_, err := g.Convert(context.Background(), req)

	require.NoError(t, err)
	assert.Contains(t, o.prompt, "automatically detected language")
}

func TestConvert_SourceTooLarge(t *testing.T) {
	o := &fakeOracle{text: `{"success": true, "outputCode": "x"}`}
	g := New(o, Options{MaxSourceTokens: 10})

	req := validRequest()
	req.SourceCode = strings.Repeat("x", 100)
	_, err := g.Convert(context.Background(), req)

	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, o.calls)
}

func TestConvert_EngineErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{name: "transport failure", err: errors.New("connection reset")},
		{name: "empty payload", text: "   "},
		{name: "not json", text: "Sure! Here is your code:"},
		{name: "missing success", text: `{"outputCode": "x"}`},
		{name: "success without output", text: `{"success": true, "outputCode": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(&fakeOracle{text: tt.text, err: tt.err}, Options{})

			result, err := g.Convert(context.Background(), validRequest())

			assert.Nil(t, result)
			assert.True(t, domain.IsEngine(err), "want EngineError, got %v", err)
		})
	}
}

func TestConvert_Timeout(t *testing.T) {
	o := &fakeOracle{text: `{"success": true, "outputCode": "x"}`, delay: time.Second}
	g := New(o, Options{Timeout: 20 * time.Millisecond})

	_, err := g.Convert(context.Background(), validRequest())

	var eerr *domain.EngineError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "model request timed out", eerr.Message)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConvert_LipiPromptCarriesManual(t *testing.T) {
	o := &fakeOracle{text: `{"success": true, "outputCode": "x"}`}
	g := New(o, Options{})

	_, err := g.Convert(context.Background(), domain.ConversionRequest{
		SourceCode: "plot(close)",
		SourceLang: "pinescript",
		TargetLang: "lipiscript",
	})
	require.NoError(t, err)

	assert.Contains(t, o.prompt, prompt.LipiLoopRule)
	assert.Contains(t, o.prompt, prompt.LipiAttributionRule)
}

func TestConvert_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := New(&fakeOracle{text: `{"success": true, "outputCode": "x"}`}, Options{Metrics: m})
	rejected := New(&fakeOracle{text: `{"success": false, "outputCode": "", "errorContext": "no"}`}, Options{Metrics: m})
	broken := New(&fakeOracle{err: errors.New("down")}, Options{Metrics: m})

	_, _ = ok.Convert(context.Background(), validRequest())
	_, _ = ok.Convert(context.Background(), validRequest())
	_, _ = rejected.Convert(context.Background(), validRequest())
	_, _ = broken.Convert(context.Background(), validRequest())
	_, _ = ok.Convert(context.Background(), domain.ConversionRequest{TargetLang: "go"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("go", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("go", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("go", OutcomeEngine)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("go", OutcomeInvalid)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.observeRequest("go", OutcomeSuccess)
	m.observeLatency("fake", time.Second)
}
