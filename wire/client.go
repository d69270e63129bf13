package wire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gogpu/easel"
)

// maxErrorBody bounds how much of a failure response is read when
// looking for the service's detail message.
const maxErrorBody = 64 << 10

// ClientOption configures a Client during creation.
type ClientOption func(*clientOptions)

// clientOptions holds optional configuration for Client creation.
type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
}

// defaultClientOptions returns the default client options.
func defaultClientOptions() clientOptions {
	return clientOptions{
		timeout: 30 * time.Second,
	}
}

// WithHTTPClient replaces the underlying HTTP client. Tests pass the
// httptest server's client here.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout used when no custom HTTP
// client is supplied.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Client executes filters on a remote filter-execution service over
// HTTP. It satisfies the pipeline's executor contract.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the service at base, e.g.
// "http://localhost:7421".
func NewClient(base string, opts ...ClientOption) *Client {
	o := defaultClientOptions()
	for _, opt := range opts {
		opt(&o)
	}
	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: o.timeout}
	}
	return &Client{base: base, http: hc}
}

// Execute sends one filter-execution request and returns the resulting
// pixel bytes. A non-200 response carrying the protocol's failure shape
// comes back as a *ServiceError whose message is the service's detail
// string verbatim.
func (c *Client) Execute(ctx context.Context, filterID string, req Request) ([]uint8, error) {
	payload, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	endpoint := c.base + "/v1/filters/" + url.PathEscape(filterID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("wire: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/octet-stream")

	easel.Logger().Debug("wire: executing filter",
		"filter", filterID, "region", fmt.Sprintf("%dx%d", req.Width, req.Height),
		"payload_size", len(payload))

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("wire: filter %q: %w", filterID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if svcErr := DecodeError(body); svcErr != nil {
			return nil, svcErr
		}
		return nil, fmt.Errorf("wire: filter %q returned status %d", filterID, resp.StatusCode)
	}

	pixels, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wire: read response: %w", err)
	}
	if err := ValidateResponse(req, pixels); err != nil {
		return nil, err
	}

	easel.Logger().Debug("wire: filter executed",
		"filter", filterID, "duration", time.Since(start))
	return pixels, nil
}
