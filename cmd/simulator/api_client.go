package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// StatusError is returned when the backend answers with an unexpected status.
type StatusError struct {
	Op     string
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.Status, e.Detail)
}

// Register creates a new account
func (c *APIClient) Register(username, email, password string) (*TokenPair, error) {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}

	var tokens TokenPair
	if err := c.do("register", http.MethodPost, "/users/", body, "", &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Login exchanges a username and password for a token pair
func (c *APIClient) Login(username, password string) (*TokenPair, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	var tokens TokenPair
	if err := c.do("login", http.MethodPost, "/token", body, "", &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Refresh trades a refresh token for a new access token
func (c *APIClient) Refresh(refreshToken string) (string, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do("refresh", http.MethodPost, "/token/refresh", body, "", &result); err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

// Logout revokes a refresh token
func (c *APIClient) Logout(refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return c.do("logout", http.MethodPost, "/token/logout", body, "", nil)
}

// GetUser fetches the caller's own account
func (c *APIClient) GetUser(token string, id int64) (*User, error) {
	var user User
	if err := c.do("get user", http.MethodGet, fmt.Sprintf("/users/%d", id), nil, token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateEmail changes the caller's own email
func (c *APIClient) UpdateEmail(token string, id int64, email string) (*User, error) {
	body := map[string]string{"email": email}

	var user User
	if err := c.do("update email", http.MethodPut, fmt.Sprintf("/users/%d", id), body, token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameAvailable reports whether a username is free
func (c *APIClient) UsernameAvailable(username string) (bool, error) {
	return c.available("/check-username?username=" + url.QueryEscape(username))
}

// EmailAvailable reports whether an email is free
func (c *APIClient) EmailAvailable(email string) (bool, error) {
	return c.available("/check-email?email=" + url.QueryEscape(email))
}

func (c *APIClient) available(path string) (bool, error) {
	var result struct {
		Available bool `json:"available"`
	}
	if err := c.do("availability check", http.MethodGet, path, nil, "", &result); err != nil {
		return false, err
	}
	return result.Available, nil
}

// Helper methods

func (c *APIClient) do(op, method, path string, body interface{}, token string, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Detail string `json:"detail"`
		}
		bodyBytes, _ := io.ReadAll(resp.Body)
		detail := string(bodyBytes)
		if json.Unmarshal(bodyBytes, &errBody) == nil && errBody.Detail != "" {
			detail = errBody.Detail
		}
		return &StatusError{Op: op, Status: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
