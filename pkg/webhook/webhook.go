// Package webhook delivers analysis reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/ccollicutt/logtriage/pkg/output"
)

const (
	DefaultTimeout = 10 * time.Second
	UserAgent      = "logtriage-webhook"

	// RunIDHeader and SeverityHeader let receivers route a report without
	// decoding the body.
	RunIDHeader    = "X-Logtriage-Run-Id"
	SeverityHeader = "X-Logtriage-Severity"

	maxResponseBody = 1 << 20
)

// Client posts reports. The zero timeout of the underlying http.Client is
// replaced per request by SendOptions.Timeout.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{httpClient: &http.Client{}}
}

// SendOptions configures a single delivery.
type SendOptions struct {
	URL     string
	Token   string        // sent as "Authorization: Bearer <token>" when set
	Timeout time.Duration // DefaultTimeout when zero
}

// Response is the outcome of one delivery. Error is set for transport
// failures and for HTTP status 400 and above.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success reports a 2xx answer without a transport error.
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts report as JSON to opts.URL. It never returns an error directly;
// failures are recorded in the Response.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := c.send(ctx, report, opts)
	resp.Duration = time.Since(start)
	return resp
}

func (c *Client) send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := newRequest(ctx, report, opts)
	if err != nil {
		return &Response{Error: err}
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return &Response{Error: fmt.Errorf("posting report: %w", err)}
	}
	defer httpResp.Body.Close()

	resp := &Response{StatusCode: httpResp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		resp.Error = fmt.Errorf("reading webhook response: %w", err)
		return resp
	}
	resp.Body = string(body)

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp
}

func newRequest(ctx context.Context, report *output.Report, opts SendOptions) (*http.Request, error) {
	var payload bytes.Buffer
	if err := json.NewEncoder(&payload).EncodeContext(ctx, report); err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, &payload)
	if err != nil {
		return nil, fmt.Errorf("building webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(RunIDHeader, report.RunID)
	req.Header.Set(SeverityHeader, report.Summary.Severity)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}
	return req, nil
}
