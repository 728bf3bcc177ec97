// internal/publish/client.go
//
// Chart-host HTTP client.
//
// Context
//   Hosted sharing modes upload the figure document to the chart host:
//
//      POST <endpoint>/plot
//      Authorization: Basic <username:api_key>
//      {"figure": {…}, "sharing": "secret", "world_readable": false, …}
//
//      200 {"url": "https://host/~user/12"}
//
//   Transient failures (connection errors, 5xx, 429) are retried by
//   go-retryablehttp with exponential backoff.  The last response is
//   handed back instead of a generic "giving up" error so callers see the
//   host's status and message.
//
//------------------------------------------------------------------------------

package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ErrNoCredentials is returned when the client has no API key.
var ErrNoCredentials = errors.New("publish: chart host credentials not configured")

// HTTPError is a non-2xx answer from the chart host.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("publish: chart host answered %d: %s", e.Status, e.Body)
}

// ClientConfig configures NewClient.
type ClientConfig struct {
	Endpoint string
	Username string
	APIKey   string
	Timeout  time.Duration
	Retries  int
	Logger   *zap.SugaredLogger // optional
}

// Client publishes figure documents.  Safe for concurrent use.
type Client struct {
	endpoint string
	username string
	apiKey   string
	http     *retryablehttp.Client
}

// NewClient builds a Client.  An empty endpoint is rejected.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("publish: endpoint is required")
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Retries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	if cfg.Logger != nil {
		rc.Logger = leveled{cfg.Logger}
	} else {
		rc.Logger = nil
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		username: cfg.Username,
		apiKey:   cfg.APIKey,
		http:     rc,
	}, nil
}

type publishRequest struct {
	Figure        json.RawMessage `json:"figure"`
	Sharing       string          `json:"sharing"`
	WorldReadable bool            `json:"world_readable"`
	Filename      string          `json:"filename,omitempty"`
	AutoOpen      bool            `json:"auto_open"`
	Extra         map[string]any  `json:"extra,omitempty"`
}

type publishResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Publish uploads figure and returns the hosted URL.
func (c *Client) Publish(ctx context.Context, figure []byte, opts Options) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoCredentials
	}
	body, err := json.Marshal(publishRequest{
		Figure:        json.RawMessage(figure),
		Sharing:       opts.Sharing,
		WorldReadable: opts.Sharing == "public",
		Filename:      opts.Filename,
		AutoOpen:      opts.AutoOpen,
		Extra:         opts.Extra,
	})
	if err != nil {
		return "", fmt.Errorf("publish: encode: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/plot", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("publish: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out publishResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("publish: decode response: %w", err)
	}
	if out.URL == "" {
		if out.Error != "" {
			return "", fmt.Errorf("publish: %s", out.Error)
		}
		return "", errors.New("publish: response carried no url")
	}
	return out.URL, nil
}

// leveled adapts zap to retryablehttp.LeveledLogger.
type leveled struct{ s *zap.SugaredLogger }

func (l leveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveled) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
