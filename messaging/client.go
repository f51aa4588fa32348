// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/netutil"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the base URL of the messaging server.
	ServerURL string

	// Token, if set, is sent as a bearer token.
	Token string

	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is the HTTP side of the messaging server. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("messaging: ServerURL is required")
	}
	parsed, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("messaging: invalid ServerURL %q: %w", config.ServerURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("messaging: ServerURL %q must be http or https", config.ServerURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CloseIdleConnections drops pooled connections. The poll loop calls
// it after a failed request so the next attempt dials fresh instead
// of reusing a connection the network broke.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Users fetches the user directory.
func (c *Client) Users(ctx context.Context) ([]chat.User, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: fetching users: %w", err)
	}

	var profiles map[string]wireProfile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse users response: %w", err)
	}
	users := make([]chat.User, 0, len(profiles))
	for id, profile := range profiles {
		users = append(users, chat.User{ID: id, Name: profile.Name, PictureURL: profile.Picture})
	}

	c.logger.Debug("fetched user directory", "users", len(users))
	return users, nil
}

// Messages fetches every message of one conversation, notices
// included.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("messaging: conversation id is required")
	}
	body, err := c.doRequest(ctx, http.MethodGet, "/messages", url.Values{"user_id": {conversationID}})
	if err != nil {
		return nil, fmt.Errorf("messaging: fetching messages for %s: %w", conversationID, err)
	}
	return decodeMessages(body)
}

// doRequest performs a GET-style request and returns the body of a
// 2xx response. Any other status yields a *ServerError.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("messaging: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to read response body: %w", err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	serverErr := &ServerError{
		StatusCode: response.StatusCode,
		Method:     method,
		Path:       path,
		Message:    strings.TrimSpace(string(responseBody)),
	}
	var errorBody struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(responseBody, &errorBody) == nil && errorBody.Error != "" {
		serverErr.Message = errorBody.Error
	}
	return nil, serverErr
}
