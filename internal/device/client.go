package device

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/muurk/fanlink/internal/logging"
)

const (
	// DefaultStatusTimeout is the default timeout for the lightweight
	// status query
	DefaultStatusTimeout = 3 * time.Second

	// DefaultCommandTimeout is the default timeout for command requests
	DefaultCommandTimeout = 5 * time.Second

	// DefaultPort is the default HTTP port for fan devices
	DefaultPort = 80

	// statusPath is the firmware's full status query endpoint
	statusPath = "/getStatus"
)

// Client issues HTTP requests against a single fan device. The client holds
// no device state between calls; it is a pure transport.
type Client struct {
	// BaseURL is the base URL for the device (e.g., "http://192.168.4.20")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// StatusTimeout is the per-call timeout for status queries
	StatusTimeout time.Duration

	// CommandTimeout is the per-call timeout for command requests
	CommandTimeout time.Duration
}

// NewClient creates a new device client
// ip: Device IP address or hostname (e.g., "192.168.4.20")
// port: Device HTTP port (typically 80)
func NewClient(ip string, port int) *Client {
	return NewClientWithURL(fmt.Sprintf("http://%s:%d", ip, port))
}

// NewClientWithURL creates a new client with a full base URL
// baseURL: Full base URL (e.g., "http://192.168.4.20:80")
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:        baseURL,
		HTTPClient:     &http.Client{},
		StatusTimeout:  DefaultStatusTimeout,
		CommandTimeout: DefaultCommandTimeout,
	}
}

// SetTimeouts sets the per-call timeouts for status and command requests
func (c *Client) SetTimeouts(status, command time.Duration) {
	c.StatusTimeout = status
	c.CommandTimeout = command
}

// Status performs the full status query against the device and returns its
// decoded state.
func (c *Client) Status(ctx context.Context) (State, error) {
	return c.roundTrip(ctx, statusPath, nil, c.StatusTimeout)
}

// Command issues a single corrective command for one field and returns the
// decoded full state the device reports after applying it. The device does
// not support combined multi-field commands; callers send one field per call.
//
// Power is derived from speed on the wire and must not be commanded directly.
func (c *Client) Command(ctx context.Context, field Field, value int) (State, error) {
	if field == FieldPower {
		return State{}, NewValidationError("power is derived from speed and cannot be commanded directly")
	}

	query := url.Values{}
	query.Set("act", field.String())
	query.Set("arg1", strconv.Itoa(value))

	return c.roundTrip(ctx, "/", query, c.CommandTimeout)
}

// roundTrip performs one GET request and decodes the sanitized response body.
func (c *Client) roundTrip(ctx context.Context, path string, query url.Values, timeout time.Duration) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := c.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	logging.LogDeviceRequest(c.BaseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return State{}, NewNetworkError("failed to create GET request", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return State{}, NewNetworkError("GET request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return State{}, NewNetworkError("failed to read response body", err)
	}

	logging.LogRawBytes("device response", body)

	// A 400 carries the firmware's own error message; propagate it rather
	// than trying to use partially parsed fields.
	if resp.StatusCode == http.StatusBadRequest {
		return State{}, NewHTTPError(resp.StatusCode, "device rejected request", DecodeErrorMessage(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return State{}, NewHTTPError(resp.StatusCode,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), "")
	}

	return DecodeStatus(body)
}
