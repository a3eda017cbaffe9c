// Command lambda-http serves the governance API behind API Gateway HTTP APIs.
//
//	GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"governance-backend/internal/bootstrap"
	"governance-backend/internal/shared/config"
	"governance-backend/internal/shared/telemetry"
)

// coldStart builds the app once per execution environment and reuses it across invocations.
type coldStart struct {
	once    sync.Once
	adapter *ginadapter.GinLambdaV2
	err     error
}

func (cs *coldStart) init() {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		cs.err = err
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": err.Error()})
		return
	}
	cs.adapter = ginadapter.NewV2(app.Router)
	telemetry.Info("lambda.ready", map[string]any{"env": app.Config.Env})
}

func (cs *coldStart) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	cs.once.Do(cs.init)
	if cs.err != nil || cs.adapter == nil {
		return unavailable(), nil
	}
	return cs.adapter.ProxyWithContext(ctx, req)
}

func unavailable() events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(map[string]any{
		"error": map[string]any{
			"code":    "service_unavailable",
			"message": "Service failed to start",
			"details": map[string]any{},
		},
	})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	cs := &coldStart{}
	lambda.Start(cs.handle)
}
