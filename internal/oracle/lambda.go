package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaInvoker is the subset of the Lambda client used by the Lambda backend.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// ProxyRequest is the request format for the model-proxy Lambda.
type ProxyRequest struct {
	Prompt string  `json:"prompt"`
	Model  string  `json:"model,omitempty"`
	Schema *Schema `json:"schema"`
}

// ProxyResponse is the response format from the model-proxy Lambda.
type ProxyResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Lambda forwards instructions to a model-proxy Lambda function, for
// deployments where provider credentials live in a separate function.
type Lambda struct {
	client       LambdaInvoker
	functionName string
	model        string
}

// NewLambda creates a Lambda backend using the default AWS config chain.
func NewLambda(ctx context.Context, cfg Config) (*Lambda, error) {
	if cfg.FunctionName == "" {
		return nil, fmt.Errorf("model proxy function name is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewLambdaWithClient(lambda.NewFromConfig(awsCfg), cfg.FunctionName, cfg.Model), nil
}

// NewLambdaWithClient creates a Lambda backend over an existing client.
func NewLambdaWithClient(client LambdaInvoker, functionName, model string) *Lambda {
	return &Lambda{
		client:       client,
		functionName: functionName,
		model:        model,
	}
}

// Generate implements Oracle.
func (l *Lambda) Generate(ctx context.Context, instruction string) (string, error) {
	payload, err := json.Marshal(ProxyRequest{
		Prompt: instruction,
		Model:  l.model,
		Schema: ResultSchema,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := l.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(l.functionName),
		Payload:      payload,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke %s: %w", l.functionName, err)
	}

	if result.FunctionError != nil {
		return "", fmt.Errorf("lambda error: %s", *result.FunctionError)
	}

	var resp ProxyResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Error != "" {
		return "", fmt.Errorf("model proxy error: %s", resp.Error)
	}

	return resp.Text, nil
}

// Name implements Oracle.
func (l *Lambda) Name() string {
	return fmt.Sprintf("lambda:%s", l.functionName)
}
