package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: Validation("bad", nil), want: http.StatusBadRequest},
		{name: "wrapped_validation", err: fmt.Errorf("lead: %w", Validation("bad", nil)), want: http.StatusBadRequest},
		{name: "authorization", err: Authorization("captcha", nil), want: http.StatusForbidden},
		{name: "authentication", err: Authentication("key", nil), want: http.StatusUnauthorized},
		{name: "not_found", err: NotFound("nope"), want: http.StatusNotFound},
		{name: "network", err: Network("down", errors.New("dial")), want: http.StatusBadGateway},
		{name: "server", err: Server("email", nil), want: http.StatusInternalServerError},
		{name: "deadline", err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{name: "canceled", err: context.Canceled, want: http.StatusRequestTimeout},
		{name: "plain", err: errors.New("x"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFromStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeValidation, FromStatus(http.StatusBadRequest, "").Code)
	assert.Equal(t, CodeValidation, FromStatus(http.StatusUnprocessableEntity, "").Code)
	assert.Equal(t, CodeAuthentication, FromStatus(http.StatusUnauthorized, "").Code)
	assert.Equal(t, CodeAuthorization, FromStatus(http.StatusForbidden, "").Code)
	assert.Equal(t, CodeNotFound, FromStatus(http.StatusNotFound, "").Code)
	assert.Equal(t, CodeServer, FromStatus(http.StatusBadGateway, "").Code)
	assert.Equal(t, CodeUnknown, FromStatus(http.StatusTeapot, "").Code)
}

func TestValidationDetails(t *testing.T) {
	t.Parallel()

	e := Validation("Validation failed", map[string]string{"email": "invalid"})
	assert.Equal(t, map[string]any{"validationErrors": map[string]string{"email": "invalid"}}, e.Details)
	assert.Equal(t, SeverityInfo, SeverityOf(e))
	assert.Nil(t, Validation("x", nil).Details)
}

func TestUnwrapAndSeverity(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp")
	e := Network("send failed", cause)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "network", e.Kind())
	assert.Equal(t, SeverityWarning, SeverityOf(fmt.Errorf("wrap: %w", e)))
	assert.Equal(t, SeverityError, SeverityOf(errors.New("plain")))
	assert.Equal(t, Severity(""), SeverityOf(nil))
}
