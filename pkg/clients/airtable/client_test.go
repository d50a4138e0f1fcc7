package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagesite/pkg/apiclient"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("key", "app123", WithAPIClient(apiclient.New(srv.URL)))
}

func TestRecordExists(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/app123/Web%20Leads", r.URL.EscapedPath())
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, `{hash}="abc"`, r.URL.Query().Get("filterByFormula"))
		_, _ = w.Write([]byte(`{"records":[{"id":"rec1"}]}`))
	})

	ok, err := c.RecordExists(context.Background(), "Web Leads", "hash", "abc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordExists_None(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"records":[]}`))
	})

	ok, err := c.RecordExists(context.Background(), "Leads", "hash", "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateRecord(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body struct {
			Records []struct {
				Fields map[string]any `json:"fields"`
			} `json:"records"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Records, 1)
		assert.Equal(t, "Ana", body.Records[0].Fields["Name"])
		_, _ = w.Write([]byte(`{"records":[{"id":"recNew"}]}`))
	})

	id, err := c.CreateRecord(context.Background(), "Leads", map[string]any{"Name": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "recNew", id)
}

func TestCreateRecord_APIError(t *testing.T) {
	t.Parallel()

	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"bad field"}}`))
	})

	_, err := c.CreateRecord(context.Background(), "Leads", map[string]any{"Name": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad field")
	assert.Equal(t, 1, calls)
}
