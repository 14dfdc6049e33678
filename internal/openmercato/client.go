// Package openmercato is a minimal client for the Open Mercato REST API.
package openmercato

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"deals-dashboard/internal/models"
)

const DealsPath = "/customers/deals"

const maxBodyBytes = 8 << 20

// RequestEditorFn mutates an outgoing request, e.g. to attach credentials.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client holds only the base URL and transport. Credentials are supplied per
// call through request editors so one Client can serve concurrent callers.
type Client struct {
	baseURL string
	http    HTTPDoer
}

func NewClient(baseURL string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
	}
}

func WithBearerToken(token string) RequestEditorFn {
	return func(_ context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
}

// ListDealsResult carries either the decoded body or the upstream error.
// Data is nil when the upstream answered 2xx with an empty or null body.
type ListDealsResult struct {
	StatusCode int
	Data       *models.DealsResponse
	Error      *models.ErrorBody
}

// ListDeals issues GET /customers/deals. A returned error means the call did
// not produce a usable HTTP exchange (transport or decode failure); upstream
// error statuses are reported through ListDealsResult.Error.
func (c *Client) ListDeals(ctx context.Context, query models.DealsQuery, editors ...RequestEditorFn) (*ListDealsResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+DealsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.URL.RawQuery = encodeQuery(query).Encode()
	req.Header.Set("Accept", "application/json")

	for _, edit := range editors {
		if err := edit(ctx, req); err != nil {
			return nil, fmt.Errorf("edit request: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	result := &ListDealsResult{StatusCode: resp.StatusCode}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody models.ErrorBody
		// Non-JSON error pages leave the detail empty.
		_ = json.Unmarshal(body, &errBody)
		result.Error = &errBody
		return result, nil
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return result, nil
	}

	var data models.DealsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode deals response: %w", err)
	}
	result.Data = &data
	return result, nil
}

func encodeQuery(q models.DealsQuery) url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.SortField != "" {
		values.Set("sortField", q.SortField)
	}
	if q.SortDir != "" {
		values.Set("sortDir", string(q.SortDir))
	}
	return values
}
