package handler

import (
	"encoding/json"
	"net/http"
)

// Response is a transport-agnostic reply. Adapters copy it onto an API Gateway
// proxy response or an http.ResponseWriter.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Error string `json:"error"`
}

func jsonResponse(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"message":"Internal server error."}`)
	}
	return Response{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(body),
	}
}

func message(status int, msg string) Response {
	return jsonResponse(status, messageBody{Message: msg})
}

func errorMessage(status int, msg string) Response {
	return jsonResponse(status, errorBody{Error: msg})
}
