// Package main is the entry point for the OmniCode conversion Lambda function.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/pricofy/omnicode/internal/config"
	"github.com/pricofy/omnicode/internal/gateway"
	"github.com/pricofy/omnicode/internal/handler"
	"github.com/pricofy/omnicode/internal/languages"
	"github.com/pricofy/omnicode/internal/oracle"
)

// app holds everything built once per cold start.
type app struct {
	handler *handler.Handler
	warmer  *Warmer
	logger  *slog.Logger
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(viper.New())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	a := &app{
		handler: buildHandler(ctx, cfg, logger),
		warmer:  NewWarmer(os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), logger),
		logger:  logger,
	}
	lambda.Start(a.handleRequest)
}

// buildHandler wires the gateway. A configuration problem yields a handler
// that reports it on every request instead of crashing the function.
func buildHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) *handler.Handler {
	if err := cfg.Validate(); err != nil {
		logger.Error("gateway misconfigured", "error", err)
		return handler.Unavailable(err, logger)
	}

	o, err := oracle.New(ctx, cfg.Oracle)
	if err != nil {
		logger.Error("failed to create oracle", "backend", cfg.Oracle.Backend, "error", err)
		return handler.Unavailable(err, logger)
	}

	gw := gateway.New(o, gateway.Options{
		Registry:        languages.Default(),
		MaxSourceTokens: cfg.MaxSourceTokens,
		Timeout:         cfg.Oracle.Timeout,
		Metrics:         gateway.NewMetrics(prometheus.DefaultRegisterer),
		Logger:          logger,
	})
	logger.Info("conversion gateway ready", "oracle", o.Name())
	return handler.New(gw, logger)
}

func (a *app) handleRequest(ctx context.Context, event json.RawMessage) (any, error) {
	// Warmup detection comes before any other processing.
	if warmup, ok := IsWarmupEvent(event); ok {
		return a.warmer.Handle(ctx, warmup)
	}

	if isProxyEvent(event) {
		var proxy events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &proxy); err != nil {
			return nil, err
		}
		return a.handler.HandleAPIGateway(ctx, proxy)
	}

	var req handler.Request
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}
	return a.handler.HandleDirect(ctx, req)
}

// isProxyEvent reports whether the event came through API Gateway.
func isProxyEvent(event json.RawMessage) bool {
	var probe struct {
		HTTPMethod string `json:"httpMethod"`
	}
	return json.Unmarshal(event, &probe) == nil && probe.HTTPMethod != ""
}
