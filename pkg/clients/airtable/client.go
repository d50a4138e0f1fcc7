package airtable

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"garagesite/pkg/apiclient"
)

// DefaultBaseURL is the Airtable REST API root.
const DefaultBaseURL = "https://api.airtable.com/v0"

// Client defines the interface for interacting with Airtable API
type Client interface {
	RecordExists(ctx context.Context, table, field, value string) (bool, error)
	CreateRecord(ctx context.Context, table string, fields map[string]any) (string, error)
}

type clientImpl struct {
	apiKey string
	baseID string
	api    *apiclient.Client
	logger *zap.Logger
}

// Option configures the client.
type Option func(*clientImpl)

// WithAPIClient replaces the HTTP client, e.g. to point at a test server.
func WithAPIClient(api *apiclient.Client) Option {
	return func(c *clientImpl) { c.api = api }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *clientImpl) { c.logger = l }
}

// NewClient creates a new Airtable client
func NewClient(apiKey, baseID string, opts ...Option) Client {
	c := &clientImpl{
		apiKey: apiKey,
		baseID: baseID,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.api == nil {
		c.api = apiclient.New(DefaultBaseURL, apiclient.WithLogger(c.logger))
	}
	return c
}

func (c *clientImpl) tablePath(table string) string {
	return "/" + c.baseID + "/" + url.PathEscape(table)
}

type listResponse struct {
	Records []struct {
		ID string `json:"id"`
	} `json:"records"`
}

func (c *clientImpl) RecordExists(ctx context.Context, table, field, value string) (bool, error) {
	q := url.Values{}
	q.Set("filterByFormula", fmt.Sprintf("{%s}=\"%s\"", field, strings.ReplaceAll(value, `"`, `\"`)))
	q.Set("maxRecords", "1")

	res := apiclient.Get[listResponse](ctx, c.api, c.tablePath(table)+"?"+q.Encode(),
		apiclient.WithBearer(c.apiKey))
	if !res.OK() {
		return false, fmt.Errorf("error from Airtable API: %s: %s", res.Error.Code, res.Error.Message)
	}

	exists := len(res.Data.Records) > 0
	c.logger.Debug("airtable record check", zap.String("table", table), zap.Bool("exists", exists))
	return exists, nil
}

type createResponse struct {
	Records []struct {
		ID string `json:"id"`
	} `json:"records"`
}

func (c *clientImpl) CreateRecord(ctx context.Context, table string, fields map[string]any) (string, error) {
	payload := map[string]any{
		"records": []map[string]any{
			{"fields": fields},
		},
		"typecast": true,
	}

	// Creating is not idempotent, so a timed-out request is not retried.
	res := apiclient.Post[createResponse](ctx, c.api, c.tablePath(table), payload,
		apiclient.WithBearer(c.apiKey),
		apiclient.WithRetry(false))
	if !res.OK() {
		return "", fmt.Errorf("error from Airtable API: %s: %s", res.Error.Code, res.Error.Message)
	}
	if len(res.Data.Records) == 0 {
		return "", fmt.Errorf("airtable returned no records for table %s", table)
	}

	id := res.Data.Records[0].ID
	c.logger.Info("airtable record created", zap.String("table", table), zap.String("id", id))
	return id, nil
}
