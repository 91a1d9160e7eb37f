package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// APIGateway adapts fn to an API Gateway proxy integration.
func APIGateway(fn Func) func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return toProxyResponse(message(http.StatusBadRequest, "Invalid request body.")), nil
			}
			body = decoded
		}
		return toProxyResponse(fn(ctx, body)), nil
	}
}

// Invoke adapts fn to a direct or asynchronous invocation whose event is either
// the payload itself or an envelope carrying it in "body".
func Invoke(fn Func) func(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
		return toProxyResponse(fn(ctx, event)), nil
	}
}

func toProxyResponse(r Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       r.Body,
	}
}
