package blob

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrorKind tags a blob store failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindBucketNotFound
	KindPermissionDenied
	KindPayloadTooLarge
	KindObjectNotFound
	KindUnavailable
)

// Error is a classified blob store failure.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("blob store: %s (status %d)", e.Message, e.Status)
}

// KindOf returns the kind of a blob store error, KindUnknown for anything
// else.
func KindOf(err error) ErrorKind {
	var blobErr *Error
	if errors.As(err, &blobErr) {
		return blobErr.Kind
	}
	return KindUnknown
}

// IsPermissionDenied reports whether err is a policy/privilege denial, the
// trigger for the elevated-credential retry.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == KindPermissionDenied
}

// IsBucketNotFound reports whether err means the target bucket is missing.
func IsBucketNotFound(err error) bool {
	return KindOf(err) == KindBucketNotFound
}

// IsPayloadTooLarge reports whether err was a size rejection by the store.
func IsPayloadTooLarge(err error) bool {
	return KindOf(err) == KindPayloadTooLarge
}

// Bucket describes one storage bucket.
type Bucket struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// Client talks to the object storage REST surface with one credential. The
// composition root builds two: one on the anon key and, when configured, one
// on the service-role key for the privileged retry.
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

// Upload stores an object under bucket/path.
func (c *Client) Upload(bucket, path string, data []byte, contentType string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, url.PathEscape(bucket), escapePath(path))
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return &Error{Kind: KindUnknown, Message: err.Error()}
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(req)
}

// Remove deletes objects from a bucket.
func (c *Client) Remove(bucket string, paths []string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s", c.baseURL, url.PathEscape(bucket))
	body, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return &Error{Kind: KindUnknown, Message: err.Error()}
	}
	req, err := http.NewRequest(http.MethodDelete, endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindUnknown, Message: err.Error()}
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// PublicURL computes the public URL for an object. No network call; the
// bucket must be public for the URL to resolve.
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, url.PathEscape(bucket), escapePath(path))
}

// ListBuckets returns all buckets visible to the credential.
func (c *Client) ListBuckets() ([]Bucket, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/bucket", c.baseURL)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: err.Error()}
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classify(resp)
	}

	var buckets []Bucket
	if err := json.NewDecoder(resp.Body).Decode(&buckets); err != nil {
		return nil, &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: err.Error()}
	}
	return buckets, nil
}

// BucketExists reports whether a named bucket is present. False on any
// listing failure.
func (c *Client) BucketExists(name string) bool {
	buckets, err := c.ListBuckets()
	if err != nil {
		return false
	}
	for _, b := range buckets {
		if b.Name == name {
			return true
		}
	}
	return false
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("apikey", c.apiKey)
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return classify(resp)
}

// classify turns an error response into a tagged Error. The message match
// happens here once, so callers branch on kinds rather than strings.
func classify(resp *http.Response) *Error {
	var payload struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &payload)

	message := payload.Message
	if message == "" {
		message = payload.Err
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = resp.Status
	}

	kind := KindUnknown
	lower := strings.ToLower(message)
	switch {
	case resp.StatusCode == http.StatusRequestEntityTooLarge || strings.Contains(lower, "exceeds"):
		kind = KindPayloadTooLarge
	case strings.Contains(lower, "bucket not found"):
		kind = KindBucketNotFound
	case resp.StatusCode == http.StatusForbidden ||
		strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "row-level security"):
		kind = KindPermissionDenied
	case resp.StatusCode == http.StatusNotFound:
		kind = KindObjectNotFound
	}

	return &Error{Kind: kind, Status: resp.StatusCode, Message: message}
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
