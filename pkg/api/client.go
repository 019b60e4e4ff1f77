package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"twinchat/pkg/config"
	"twinchat/pkg/version"
)

const (
	apiPrefix       = "/api/v1"
	maxResponseSize = 4 << 20
	maxErrorBody    = 2048
)

// Client talks to the Digital Twin REST backend. Endpoints that need a bearer
// token take it as an argument; the client keeps no session state.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// NewClient builds a client from config.
func NewClient(cfg config.APIConfig) (*Client, error) {
	return NewClientWithHTTPClient(cfg, nil)
}

// NewClientWithHTTPClient builds a client that sends requests through httpClient.
func NewClientWithHTTPClient(cfg config.APIConfig, httpClient *http.Client) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("api timeout_seconds must be positive")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		userAgent:  version.UserAgent(),
	}, nil
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/users/login", "", req, &out); err != nil {
		return TokenResponse{}, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return TokenResponse{}, fmt.Errorf("login response missing access_token")
	}
	return out, nil
}

// Register creates an account. The backend answers 204 with no body.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/users/register", "", req, nil)
}

// Profile returns the user the token belongs to.
func (c *Client) Profile(ctx context.Context, token string) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/users/profile", token, nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// ListPersonas returns every persona known to the backend.
func (c *Client) ListPersonas(ctx context.Context) ([]Persona, error) {
	var out []Persona
	if err := c.do(ctx, http.MethodGet, "/personas/", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChatHistory returns the stored transcript for a user and persona in server
// order. A null body means no chat exists yet and yields an empty slice.
func (c *Client) ChatHistory(ctx context.Context, token, userID, personaID string) ([]ChatMessage, error) {
	var out []ChatMessage
	path := "/users/" + url.PathEscape(userID) + "/chats/" + url.PathEscape(personaID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []ChatMessage{}
	}
	return out, nil
}

// SendChat posts a user message to a persona and returns the assistant reply.
func (c *Client) SendChat(ctx context.Context, token, userID, personaID string, msg ChatMessageCreate) (ChatMessage, error) {
	path := "/users/" + url.PathEscape(userID) + "/chats/" + url.PathEscape(personaID)
	return c.sendMessage(ctx, path, token, msg)
}

// SendMultiAgent posts a user message to the supervisor, which routes it to a persona.
func (c *Client) SendMultiAgent(ctx context.Context, token, userID string, msg ChatMessageCreate) (ChatMessage, error) {
	path := "/users/" + url.PathEscape(userID) + "/multi-agent"
	return c.sendMessage(ctx, path, token, msg)
}

func (c *Client) sendMessage(ctx context.Context, path, token string, msg ChatMessageCreate) (ChatMessage, error) {
	if msg.Role == "" {
		msg.Role = RoleUser
	}
	var reply chatReply
	if err := c.do(ctx, http.MethodPost, path, token, msg, &reply); err != nil {
		return ChatMessage{}, err
	}
	out := reply.message()
	if strings.TrimSpace(out.Content) == "" {
		return ChatMessage{}, fmt.Errorf("reply from %s has no content", path)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	endpoint := c.endpoint(path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	slog.Debug("api_request", "method", method, "path", path, "auth", token != "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("api_request_failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	slog.Debug("api_response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(data),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// endpoint joins the base URL, the API prefix and an already escaped path.
func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.baseURL.String(), "/") + apiPrefix + path
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api base_url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid api base_url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api base_url must include scheme and host")
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed, nil
}
