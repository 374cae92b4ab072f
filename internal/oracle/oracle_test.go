package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeInvoker struct {
	input  *lambda.InvokeInput
	output *lambda.InvokeOutput
	err    error
}

func (f *fakeInvoker) Invoke(_ context.Context, params *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	f.input = params
	return f.output, f.err
}

func TestResultSchemaJSON(t *testing.T) {
	raw, err := json.Marshal(ResultSchema)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "object", decoded["type"])
	assert.ElementsMatch(t, []any{"success", "outputCode"}, decoded["required"])

	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, props, 3)
	assert.Contains(t, props, "errorContext")
}

func TestGenaiSchema(t *testing.T) {
	s := genaiSchema(ResultSchema)

	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, genai.TypeBoolean, s.Properties["success"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["outputCode"].Type)
	assert.Equal(t, []string{"success", "outputCode"}, s.Required)
}

func TestLambdaGenerate(t *testing.T) {
	inv := &fakeInvoker{
		output: &lambda.InvokeOutput{Payload: []byte(`{"text":"{\"success\":true,\"outputCode\":\"x\"}"}`)},
	}
	l := NewLambdaWithClient(inv, "omnicode-model-proxy", "m1")

	text, err := l.Generate(context.Background(), "convert this")
	require.NoError(t, err)
	assert.Equal(t, `{"success":true,"outputCode":"x"}`, text)

	assert.Equal(t, "omnicode-model-proxy", aws.ToString(inv.input.FunctionName))
	var sent ProxyRequest
	require.NoError(t, json.Unmarshal(inv.input.Payload, &sent))
	assert.Equal(t, "convert this", sent.Prompt)
	assert.Equal(t, "m1", sent.Model)
	assert.NotNil(t, sent.Schema)
}

func TestLambdaGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		output *lambda.InvokeOutput
		err    error
	}{
		{name: "invoke failure", err: errors.New("throttled")},
		{name: "function error", output: &lambda.InvokeOutput{FunctionError: aws.String("Unhandled")}},
		{name: "bad payload", output: &lambda.InvokeOutput{Payload: []byte("not json")}},
		{name: "proxy error", output: &lambda.InvokeOutput{Payload: []byte(`{"error":"quota exceeded"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLambdaWithClient(&fakeInvoker{output: tt.output, err: tt.err}, "fn", "")
			_, err := l.Generate(context.Background(), "x")
			assert.Error(t, err)
		})
	}
}

func TestNewRejectsMissingSettings(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{Backend: "carrier-pigeon"})
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: BackendGemini})
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: BackendOpenAI})
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: BackendLambda})
	assert.Error(t, err)
}

func TestNewOpenAI(t *testing.T) {
	o, err := NewOpenAI(Config{APIKey: "k", BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.Equal(t, "openai:"+DefaultOpenAIModel, o.Name())
}
