package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrorKind tags an identity provider failure so callers branch on an enum
// instead of matching message substrings.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidCredentials
	KindEmailNotConfirmed
	KindRateLimited
	KindUserExists
	KindWeakPassword
	KindInvalidEmail
	KindUnauthorized
	KindUnavailable
)

// Error is a classified identity provider failure.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity: %s (status %d)", e.Message, e.Status)
}

// KindOf returns the kind of an identity error, KindUnknown for anything
// else.
func KindOf(err error) ErrorKind {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr.Kind
	}
	return KindUnknown
}

// User is the provider's account record.
type User struct {
	ID       string                 `json:"id"`
	Email    string                 `json:"email"`
	Metadata map[string]interface{} `json:"user_metadata"`
}

// MetaString reads a string field from the auth metadata.
func (u *User) MetaString(key string) string {
	if u == nil || u.Metadata == nil {
		return ""
	}
	if v, ok := u.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// Session is an authenticated session: the bearer token plus its user.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

// Client talks to the identity provider's REST surface.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// SignUp registers a new account with the given auth metadata.
func (c *Client) SignUp(email, password string, metadata map[string]interface{}) (*User, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     metadata,
	}

	var user User
	if err := c.post("/auth/v1/signup", "", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(email, password string) (*Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	var session Session
	if err := c.post("/auth/v1/token?grant_type=password", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes a session token. Best-effort at the call sites; local
// state is cleared regardless.
func (c *Client) SignOut(token string) error {
	return c.post("/auth/v1/logout", token, map[string]interface{}{}, nil)
}

// User fetches the account behind a session token, or nil when the token is
// no longer valid.
func (c *Client) User(token string) (*User, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: err.Error()}
	}
	c.authorize(req, token)

	var user User
	if err := c.do(req, &user); err != nil {
		if KindOf(err) == KindUnauthorized {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser merges new fields into the account's auth metadata.
func (c *Client) UpdateUser(token string, metadata map[string]interface{}) (*User, error) {
	body := map[string]interface{}{"data": metadata}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: err.Error()}
	}
	req, err := http.NewRequest(http.MethodPut, c.baseURL+"/auth/v1/user", bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: err.Error()}
	}
	c.authorize(req, token)
	req.Header.Set("Content-Type", "application/json")

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) post(path, token string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindUnknown, Message: err.Error()}
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindUnknown, Message: err.Error()}
	}
	c.authorize(req, token)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) authorize(req *http.Request, token string) {
	req.Header.Set("apikey", c.apiKey)
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: err.Error()}
	}
	return nil
}

// classify maps an error response to a tagged Error. This is the only place
// that inspects provider message text.
func classify(resp *http.Response) *Error {
	var payload struct {
		Msg         string `json:"msg"`
		Message     string `json:"message"`
		Description string `json:"error_description"`
		Err         string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &payload)

	message := payload.Msg
	if message == "" {
		message = payload.Message
	}
	if message == "" {
		message = payload.Description
	}
	if message == "" {
		message = payload.Err
	}
	if message == "" {
		message = resp.Status
	}

	kind := KindUnknown
	lower := strings.ToLower(message)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || strings.Contains(lower, "rate limit"):
		kind = KindRateLimited
	case strings.Contains(lower, "invalid login credentials"):
		kind = KindInvalidCredentials
	case strings.Contains(lower, "email not confirmed"):
		kind = KindEmailNotConfirmed
	case strings.Contains(lower, "already registered") || strings.Contains(lower, "already exists"):
		kind = KindUserExists
	case strings.Contains(lower, "password should be at least"):
		kind = KindWeakPassword
	case strings.Contains(lower, "invalid email") || strings.Contains(lower, "validate email"):
		kind = KindInvalidEmail
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = KindUnauthorized
	case resp.StatusCode >= 500:
		kind = KindUnavailable
	}

	return &Error{Kind: kind, Status: resp.StatusCode, Message: message}
}
