package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

const (
	defaultTimeout         = 10 * time.Second
	responseBodyLimit      = 1 << 20
	headerSessionID        = "x-session-id"
	outcomeSuccess         = "success"
	outcomeRejected        = "rejected"
	outcomeTransport       = "transport_error"
	outcomeDecode          = "decode_error"
	msgUnreachable         = "We couldn't reach the store right now. Please try again."
	msgCanceled            = "The request was canceled."
	msgUnexpectedResponse  = "The store sent an unexpected response. Please try again."
	msgNotConfigured       = "The store is not available right now."
	msgRequestUnsuccessful = "The request could not be completed."
)

var errBaseURLRequired = errors.New("backend base url is required")

// Identity scopes a call to a shopper: a bearer token for signed-in users, otherwise
// the anonymous session id.
type Identity struct {
	Token     string
	SessionID string
}

// Authenticated reports whether a bearer token is present.
func (i Identity) Authenticated() bool {
	return strings.TrimSpace(i.Token) != ""
}

// apply sets exactly one identity header; the token wins over the session id.
func (i Identity) apply(h http.Header) {
	if i.Authenticated() {
		h.Set("Authorization", "Bearer "+strings.TrimSpace(i.Token))
		return
	}
	if sid := strings.TrimSpace(i.SessionID); sid != "" {
		h.Set(headerSessionID, sid)
	}
}

// Client wraps the commerce REST API consumed by the storefront.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.BackendMetrics
	logg       *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func WithMetrics(m *metrics.BackendMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// NewClient builds a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", baseURL)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client, nil
}

// envelope is the backend's {success, message, data} response shape.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	CartID  string          `json:"cartId"`
}

func (e envelope) text() string {
	if m := strings.TrimSpace(e.Message); m != "" {
		return m
	}
	return strings.TrimSpace(e.Error)
}

type request struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
	identity Identity
}

type extractor[T any] func(envelope) (T, error)

func decodeData[T any](env envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	err := json.Unmarshal(env.Data, &out)
	return out, err
}

// call issues one HTTP request and folds every failure mode into a Result.
func call[T any](ctx context.Context, c *Client, req request, extract extractor[T]) Result[T] {
	if c == nil {
		return fail[T](pkgerrors.CodeDependency, msgNotConfigured, 0)
	}
	if extract == nil {
		extract = decodeData[T]
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"backend_endpoint": req.endpoint,
		"backend_method":   req.method,
	})

	start := time.Now()
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		c.observe(req.endpoint, outcomeTransport, start)
		c.logg.Error(ctx, "backend.build_request_failed", err)
		return fail[T](pkgerrors.CodeInternal, msgRequestUnsuccessful, 0)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req.endpoint, outcomeTransport, start)
		if ctx.Err() != nil {
			c.logg.Warn(ctx, "backend.request_canceled")
			return fail[T](pkgerrors.CodeDependency, msgCanceled, 0)
		}
		c.logg.Error(ctx, "backend.request_failed", err)
		return fail[T](pkgerrors.CodeDependency, msgUnreachable, 0)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		c.observe(req.endpoint, outcomeTransport, start)
		c.logg.Error(ctx, "backend.read_body_failed", err)
		return fail[T](pkgerrors.CodeDependency, msgUnreachable, resp.StatusCode)
	}

	var env envelope
	decodeErr := error(nil)
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.observe(req.endpoint, outcomeRejected, start)
		msg := env.text()
		if decodeErr != nil || msg == "" {
			msg = statusMessage(resp.StatusCode)
		}
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
			"status":  resp.StatusCode,
			"message": msg,
		}), "backend.request_rejected")
		return fail[T](codeForStatus(resp.StatusCode), msg, resp.StatusCode)
	}

	if decodeErr != nil {
		c.observe(req.endpoint, outcomeDecode, start)
		c.logg.Error(ctx, "backend.decode_failed", decodeErr)
		return fail[T](pkgerrors.CodeDependency, msgUnexpectedResponse, resp.StatusCode)
	}

	if env.Success != nil && !*env.Success {
		c.observe(req.endpoint, outcomeRejected, start)
		msg := env.text()
		if msg == "" {
			msg = msgRequestUnsuccessful
		}
		c.logg.Warn(c.logg.WithField(ctx, "message", msg), "backend.request_unsuccessful")
		return fail[T](pkgerrors.CodeRejected, msg, resp.StatusCode)
	}

	data, err := extract(env)
	if err != nil {
		c.observe(req.endpoint, outcomeDecode, start)
		c.logg.Error(ctx, "backend.decode_data_failed", err)
		return fail[T](pkgerrors.CodeDependency, msgUnexpectedResponse, resp.StatusCode)
	}

	c.observe(req.endpoint, outcomeSuccess, start)
	return ok(data, env.text(), resp.StatusCode)
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(req.path, "/")
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", req.endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	req.identity.apply(httpReq.Header)
	return httpReq, nil
}

func (c *Client) observe(endpoint, outcome string, start time.Time) {
	c.metrics.Observe(endpoint, outcome, time.Since(start))
}

func codeForStatus(status int) pkgerrors.Code {
	switch {
	case status == http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case status == http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status == http.StatusConflict:
		return pkgerrors.CodeConflict
	case status >= http.StatusInternalServerError:
		return pkgerrors.CodeDependency
	default:
		return pkgerrors.CodeRejected
	}
}

func statusMessage(status int) string {
	switch codeForStatus(status) {
	case pkgerrors.CodeUnauthorized:
		return "Please log in to continue."
	case pkgerrors.CodeNotFound:
		return "We couldn't find what you were looking for."
	case pkgerrors.CodeDependency:
		return msgUnreachable
	}
	return fmt.Sprintf("The request failed (%s).", strings.ToLower(http.StatusText(status)))
}

func itemPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(strings.TrimSpace(id))
}
