package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"garagesite/pkg/apperr"
	"garagesite/pkg/models"
)

// errorFromResponse reads a failed response body as the error payload. A code
// or message in the body wins over the one derived from the status.
func errorFromResponse(status int, raw []byte) *apperr.Error {
	msg := http.StatusText(status)
	if msg == "" {
		msg = "request failed"
	}
	aerr := apperr.FromStatus(status, msg)

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		if text := strings.TrimSpace(string(raw)); text != "" {
			aerr.Details = map[string]any{"body": text}
		}
		return aerr
	}

	aerr.Details = body
	if code, ok := body["code"].(string); ok && code != "" {
		aerr.Code = code
	}
	if m, ok := body["message"].(string); ok && m != "" {
		aerr.Message = m
	}
	switch e := body["error"].(type) {
	case string:
		if e != "" {
			aerr.Message = e
		}
	case map[string]any:
		if code, ok := e["code"].(string); ok && code != "" {
			aerr.Code = code
		}
		if m, ok := e["message"].(string); ok && m != "" {
			aerr.Message = m
		}
	}
	return aerr
}

func toFailure[T any](err error) models.Result[T] {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.Failure[T](apperr.CodeNetwork, "request timed out", nil)
	case errors.Is(err, context.Canceled):
		return models.Failure[T](apperr.CodeNetwork, "request canceled", nil)
	}
	if aerr, ok := apperr.As(err); ok {
		return models.Failure[T](aerr.Code, aerr.Message, aerr.Details)
	}
	return models.Failure[T](apperr.CodeUnknown, err.Error(), nil)
}
