// Package authapi implements the credential exchange boundary: login, token
// renewal and context server-sync. The session core only sees the Client
// interface; the HTTP implementation talks to the administration backend and
// the local provider serves offline/dev use.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"eduadmin-client/models"
	"eduadmin-client/utils/logger"
)

// Client is the credential exchange collaborator consumed by the session
// core. Login never returns a Go error for a credential rejection; that is
// a LoginResult with Success=false and a user-facing Message; errors are
// transport failures.
type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	Renew(ctx context.Context, currentToken string) (newToken string, err error)
	NotifyContext(ctx context.Context, token string, managed models.ManagedContext) error
}

// HTTPClient talks to the administration backend.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// NewHTTPClient builds a client for the configured backend.
func NewHTTPClient(cfg *models.Config, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.APIBaseURL,
		http:    &http.Client{Timeout: cfg.APITimeout},
		logger:  log,
	}
}

// loginData is the Data payload of a successful login envelope.
type loginData struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

// Login exchanges credentials for a token and profile.
func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}

	envelope, status, err := c.do(ctx, http.MethodPost, "/auth/login", "", body)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized || envelope.Status == "error" {
		message := envelope.Message
		if message == "" {
			message = "Invalid username or password"
		}
		c.logger.Debugf("Login rejected: %s", message)
		return &models.LoginResult{Success: false, Message: message}, nil
	}

	var data loginData
	if err := reUnmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("unexpected login response shape: %w", err)
	}
	if data.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}

	return &models.LoginResult{
		Success: true,
		Token:   data.AccessToken,
		User:    data.User,
	}, nil
}

// Renew exchanges a still-valid token for a fresh one.
func (c *HTTPClient) Renew(ctx context.Context, currentToken string) (string, error) {
	envelope, status, err := c.do(ctx, http.MethodPost, "/auth/renew", currentToken, nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || envelope.Status == "error" {
		return "", fmt.Errorf("token renewal rejected: %s", envelope.Message)
	}

	var data loginData
	if err := reUnmarshal(envelope.Data, &data); err != nil {
		return "", fmt.Errorf("unexpected renewal response shape: %w", err)
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("renewal response carried no access token")
	}

	return data.AccessToken, nil
}

// NotifyContext reports the newly selected managed context to the server.
func (c *HTTPClient) NotifyContext(ctx context.Context, token string, managed models.ManagedContext) error {
	body, err := json.Marshal(managed)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	envelope, status, err := c.do(ctx, http.MethodPut, "/users/me/context", token, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK || envelope.Status == "error" {
		return fmt.Errorf("context update rejected: %s", envelope.Message)
	}

	return nil
}

// do issues one request and decodes the standard response envelope.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, body []byte) (*models.APIResponse, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	return &envelope, resp.StatusCode, nil
}

// reUnmarshal converts the untyped Data field of an envelope into a concrete
// shape.
func reUnmarshal(data interface{}, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
