// Package api provides a typed HTTP client for the cischat server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/yonatanwolf/cischat/internal/metrics"
	"github.com/yonatanwolf/cischat/internal/models"
)

// Client talks to the chat server's JSON API. Authentication is a session
// cookie set by the server on login; the cookie jar is persisted to the
// session file so separate CLI invocations share one login.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	jar         *cookiejar.Jar
	sessionFile string
	log         *slog.Logger
	stats       *metrics.Collector
}

// Options configures a Client.
type Options struct {
	// Endpoint is the server base URL. If empty, CISCHAT_SERVER_URL is
	// used, then http://localhost:8000.
	Endpoint string

	// Timeout applies to every request. Zero means 5 minutes; answer
	// generation on the server is slow.
	Timeout time.Duration

	// SessionFile stores the session cookie between invocations.
	// Empty disables persistence.
	SessionFile string

	Logger *slog.Logger
}

// New creates a client and restores any stored session.
func New(opts Options) (*Client, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = os.Getenv("CISCHAT_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8000"
	}

	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		jar:         jar,
		sessionFile: opts.SessionFile,
		log:         logger,
		stats:       metrics.NewCollector(),
	}

	c.restoreSession()

	return c, nil
}

// Stats returns the client's request metrics collector.
func (c *Client) Stats() *metrics.Collector {
	return c.stats
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do issues one request and decodes the JSON response into out.
//
// Non-2xx statuses become an *APIError carrying the server's "detail" or
// "message" field. A success body that fails to parse is treated as an
// empty object, matching the web client's behavior.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.stats.Record(op, duration, true)
		c.log.Debug("request failed", "op", op, "request_id", requestID, "error", err)
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.stats.Record(op, duration, true)
		return fmt.Errorf("read response: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.stats.Record(op, duration, !ok)
	c.log.Debug("request",
		"op", op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)

	if !ok {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		// Parse failures fall back to the zero value (empty object).
		_ = json.Unmarshal(respBody, out)
	}

	return nil
}

// postForm sends fields as a multipart form body.
func (c *Client) postForm(ctx context.Context, op, path string, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("write form field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close form writer: %w", err)
	}

	return c.do(ctx, op, http.MethodPost, path, &buf, w.FormDataContentType(), out)
}

// postJSON sends v as a JSON body.
func (c *Client) postJSON(ctx context.Context, op, path string, v, out any) error {
	reqBody, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, op, http.MethodPost, path, bytes.NewReader(reqBody), "application/json", out)
}

// getJSON issues a GET and decodes the response.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, "", out)
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Login authenticates with the server and persists the session cookie.
func (c *Client) Login(ctx context.Context, username, password string) error {
	fields := map[string]string{"username": username, "password": password}
	if err := c.postForm(ctx, metrics.OpLogin, "/api/login", fields, nil); err != nil {
		return err
	}
	if err := c.persistSession(); err != nil {
		c.log.Warn("failed to persist session", "error", err)
	}
	return nil
}

// Register creates a new account. The server enforces the username and
// password rules and its error text is returned verbatim.
func (c *Client) Register(ctx context.Context, username, password string) error {
	fields := map[string]string{"username": username, "password": password}
	return c.postForm(ctx, metrics.OpRegister, "/api/register", fields, nil)
}

// Logout ends the server session and removes the stored cookie.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.postJSON(ctx, metrics.OpLogout, "/api/logout", struct{}{}, nil); err != nil {
		return err
	}
	c.clearSession()
	return nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// ListChats returns the caller's chats in server order (newest first).
func (c *Client) ListChats(ctx context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	if err := c.getJSON(ctx, metrics.OpListChats, "/api/chats", &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat creates a new empty chat titled "New chat" by the server.
func (c *Client) CreateChat(ctx context.Context) (*models.Chat, error) {
	var chat models.Chat
	if err := c.postJSON(ctx, metrics.OpCreateChat, "/api/chats", struct{}{}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// Messages returns a chat's messages oldest-first.
func (c *Client) Messages(ctx context.Context, chatID int) ([]models.Message, error) {
	var msgs []models.Message
	path := fmt.Sprintf("/api/chats/%d/messages", chatID)
	if err := c.getJSON(ctx, metrics.OpMessages, path, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Send posts a user message and waits for the generated answer.
func (c *Client) Send(ctx context.Context, chatID int, text string) (*models.SendResult, error) {
	var result models.SendResult
	path := fmt.Sprintf("/api/chats/%d/send_async", chatID)
	payload := map[string]string{"text": text}
	if err := c.postJSON(ctx, metrics.OpSend, path, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
