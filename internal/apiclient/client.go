package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/USSTM/courier-console/internal/auth"
	"github.com/USSTM/courier-console/internal/config"
	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
	maxErrorBody        = 64 << 10
)

var ErrNoSession = errors.New("no authenticated session for backend call")

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client calls the courier backend on behalf of the session found in ctx.
// Reads may be retried on transport errors; mutations are sent exactly once.
type Client struct {
	baseURL   string
	userAgent string
	reads     *retryablehttp.Client
	writes    *retryablehttp.Client
}

var _ notifications.Backend = (*Client)(nil)

func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		reads:     newRetryClient(cfg.Timeout, cfg.RetryMax),
		writes:    newRetryClient(cfg.Timeout, 0),
	}
}

func newRetryClient(timeout time.Duration, retryMax int) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = defaultRetryWaitMin
	rc.RetryWaitMax = defaultRetryWaitMax
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	// only transport failures are retried, never an answered request
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		return false, nil
	}
	return rc
}

func (c *Client) ListNotifications(ctx context.Context, page, pageSize int) (notifications.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var p notifications.Page
	if err := c.do(ctx, c.reads, http.MethodGet, "/notifications?"+q.Encode(), &p); err != nil {
		return notifications.Page{}, err
	}
	return p, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, c.writes, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, c.writes, http.MethodPatch, "/notifications/read-all", nil)
}

func (c *Client) do(ctx context.Context, hc *retryablehttp.Client, method, path string, out any) error {
	token, ok := auth.BearerToken(ctx)
	if !ok {
		return ErrNoSession
	}

	target := c.baseURL + path
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	slog.DebugContext(ctx, "backend client: sending request", "method", method, "url", target)

	resp, err := hc.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "backend client: request failed", "method", method, "url", target, "error", err)
		return fmt.Errorf("do request to backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.WarnContext(ctx, "backend client: unexpected status",
			"method", method,
			"url", target,
			"status_code", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func errorMessage(status int, body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != nil && eb.Error.Message != "" {
			return eb.Error.Message
		}
	}
	return http.StatusText(status)
}
