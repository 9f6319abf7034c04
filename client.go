package skillsprint

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://skillsprint-backend-app.azurewebsites.net"
	DefaultTimeout = 10 * time.Second

	HeaderRequestID = "X-Request-ID"
)

// SessionSource is what the transport needs from the Auther
type SessionSource interface {
	TokenSource
	SessionExpirer
}

// ClientConfig holds transport options
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	HTTPClient *http.Client
}

// Client is the single shared transport for every backend call. It attaches
// the bearer token and applies the same failure policy to every response.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    SessionSource
	navigator  Navigator
	notifier   Notifier
	logger     Logger
}

var _ Invalidator = (*Client)(nil)

func NewClient(cfg ClientConfig, session SessionSource) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if session == nil {
		session = anonymousSession{}
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
		session:    session,
		navigator:  noopNavigator{},
		notifier:   NoopNotifier{},
		logger:     defLogger{},
	}
}

func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

func (c *Client) WithNavigator(navigator Navigator) *Client {
	if navigator == nil {
		navigator = noopNavigator{}
	}
	c.navigator = navigator
	return c
}

func (c *Client) WithNotifier(notifier Notifier) *Client {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	c.notifier = notifier
	return c
}

// BaseURL returns the backend root every path is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends a JSON request and decodes a JSON response into out when out is
// not nil. Failures are always returned, after the transport reacted to
// them.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	requestID, ok := RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}

	req, err := c.newRequest(ctx, method, path, body, requestID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to build request")
	}

	c.logger.Debug("API request %s %s id=%s", method, path, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportFailure(ctx, method, path, requestID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportFailure(ctx, method, path, requestID, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.statusFailure(ctx, resp.StatusCode, data, map[string]any{
			"method":     method,
			"path":       path,
			"request_id": requestID,
		})
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		richErr := ErrInvalidResponse.Clone()
		richErr.Source = err
		return richErr.WithMetadata(map[string]any{
			"method":     method,
			"path":       path,
			"request_id": requestID,
		})
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, requestID string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)

	// read at send time, never cached on the client
	if token := c.session.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (c *Client) transportFailure(ctx context.Context, method, path, requestID string, err error) error {
	meta := map[string]any{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	}

	// the caller gave up, the backend did not fail
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrap(ctxErr, errors.CategoryOperation, "request cancelled").
			WithMetadata(meta)
	}

	richErr := networkError(err).WithMetadata(meta)
	c.logger.Error("API unreachable: %s details=%s", err, print.MaybePrettyJSON(meta))
	c.notifier.Error(MessageNetworkError)
	return richErr
}

func (c *Client) statusFailure(ctx context.Context, status int, body []byte, meta map[string]any) error {
	richErr := statusError(status, body, meta)

	c.logger.Info(
		"API error: %s category=%s details=%s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	switch {
	case status == http.StatusUnauthorized:
		c.session.Expire(ctx)
		if !IsLoginPath(c.navigator.CurrentPath()) {
			c.navigator.HardRedirect(LoginPath)
		}
	case status == http.StatusForbidden:
		c.notifier.Error(MessageNotAuthorized)
	case status >= http.StatusInternalServerError:
		c.notifier.Error(MessageServerError)
	}

	return richErr
}

// anonymousSession sends requests without credentials
type anonymousSession struct{}

func (anonymousSession) Token(context.Context) string { return "" }
func (anonymousSession) Expire(context.Context)       {}
