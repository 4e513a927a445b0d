// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	HeaderRequestID = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// Response is a decoded JSON response. Body is nil when the server sent no
// JSON object.
type Response struct {
	StatusCode int
	Body       map[string]interface{}
	Raw        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Reason extracts a human readable reason from common error body keys.
func (r *Response) Reason() string {
	for _, key := range []string{"message", "error", "reason"} {
		if s, ok := r.Body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a JSON client rooted at baseURL. timeout <= 0 leaves the
// deadline to the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	hc := &http.Client{}
	if timeout > 0 {
		hc.Timeout = timeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// PostJSON sends body as JSON to path. A non-2xx status is not an error; the
// returned error always means the exchange itself failed.
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}, requestID string) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set(HeaderRequestID, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Raw: raw}
	if len(bytes.TrimSpace(raw)) > 0 {
		var decoded map[string]interface{}
		if json.Unmarshal(raw, &decoded) == nil {
			out.Body = decoded
		}
	}
	return out, nil
}
