// Package client is a typed wrapper around the Digi Notes REST API. It holds
// the bearer token for a session, attaches it to every request and
// invalidates the session as soon as the token's embedded expiry passes,
// checked before each call and optionally on a timer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"diginotes/auth"
	"diginotes/models"
)

// ErrSessionExpired is returned when the stored token's expiry has passed.
// The caller is expected to send the user back to the login screen.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx response from the server. Message carries the
// server's envelope message verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Results int             `json:"results"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to one Digi Notes server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu               sync.Mutex
	token            string
	onSessionExpired func()
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken seeds a previously issued session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// OnSessionExpired registers a callback fired whenever the session is
// invalidated, either by local expiry or by a server 401.
func OnSessionExpired(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// New creates a client for the API at baseURL (e.g. "http://localhost:1412/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Logout drops the session token.
func (c *Client) Logout() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// expireSession clears the token and fires the expiry callback once.
func (c *Client) expireSession() {
	c.mu.Lock()
	hadToken := c.token != ""
	c.token = ""
	fn := c.onSessionExpired
	c.mu.Unlock()

	if hadToken && fn != nil {
		fn()
	}
}

// checkSession invalidates the session locally when the token's embedded
// expiry has passed, without a round trip to the server.
func (c *Client) checkSession() error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token == "" {
		return nil
	}

	expiry, err := auth.TokenExpiry(token)
	if err != nil || time.Now().After(expiry) {
		c.expireSession()
		return ErrSessionExpired
	}
	return nil
}

// WatchExpiry checks the token on a timer so an idle session is invalidated
// promptly instead of on the next request. The returned stop function ends
// the watcher.
func (c *Client) WatchExpiry(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.checkSession()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// do performs one request. A server 401 invalidates the session before the
// error is returned.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	if err := c.checkSession(); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return &envelope{Status: "success"}, nil
	}

	env := &envelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.expireSession()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	return env, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(env.Data, out)
}

// Register creates an account and stores the issued session token.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

// Login authenticates and stores the issued session token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (*models.User, error) {
	env, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	var data struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	c.mu.Lock()
	c.token = env.Token
	c.mu.Unlock()

	return data.User, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var data struct {
		User *models.User `json:"user"`
	}
	if err := c.get(ctx, "/users/me", &data); err != nil {
		return nil, err
	}
	return data.User, nil
}

// UpdateProfile applies a sparse profile update.
func (c *Client) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	env, err := c.do(ctx, http.MethodPatch, "/users/me", patch)
	if err != nil {
		return nil, err
	}
	var data struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return data.User, nil
}

// Notes lists the user's notes, pinned first then most recently updated.
func (c *Client) Notes(ctx context.Context) ([]models.Note, error) {
	var data struct {
		Notes []models.Note `json:"notes"`
	}
	if err := c.get(ctx, "/notes", &data); err != nil {
		return nil, err
	}
	return data.Notes, nil
}

func (c *Client) Note(ctx context.Context, id int64) (*models.Note, error) {
	var data struct {
		Note *models.Note `json:"note"`
	}
	if err := c.get(ctx, fmt.Sprintf("/notes/%d", id), &data); err != nil {
		return nil, err
	}
	return data.Note, nil
}

func (c *Client) CreateNote(ctx context.Context, input models.NoteInput) (*models.Note, error) {
	return c.noteRequest(ctx, http.MethodPost, "/notes", input)
}

func (c *Client) UpdateNote(ctx context.Context, id int64, update models.NoteUpdate) (*models.Note, error) {
	return c.noteRequest(ctx, http.MethodPatch, fmt.Sprintf("/notes/%d", id), update)
}

func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil)
	return err
}

// TogglePin flips the note's pinned flag and returns the updated note.
func (c *Client) TogglePin(ctx context.Context, id int64) (*models.Note, error) {
	return c.noteRequest(ctx, http.MethodPatch, fmt.Sprintf("/notes/%d/pin", id), nil)
}

// ToggleArchive flips the note's archived flag and returns the updated note.
func (c *Client) ToggleArchive(ctx context.Context, id int64) (*models.Note, error) {
	return c.noteRequest(ctx, http.MethodPatch, fmt.Sprintf("/notes/%d/archive", id), nil)
}

func (c *Client) noteRequest(ctx context.Context, method, path string, body interface{}) (*models.Note, error) {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var data struct {
		Note *models.Note `json:"note"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return data.Note, nil
}

func (c *Client) Folders(ctx context.Context) ([]models.Folder, error) {
	var data struct {
		Folders []models.Folder `json:"folders"`
	}
	if err := c.get(ctx, "/folders", &data); err != nil {
		return nil, err
	}
	return data.Folders, nil
}

func (c *Client) Folder(ctx context.Context, id int64) (*models.Folder, error) {
	var data struct {
		Folder *models.Folder `json:"folder"`
	}
	if err := c.get(ctx, fmt.Sprintf("/folders/%d", id), &data); err != nil {
		return nil, err
	}
	return data.Folder, nil
}

func (c *Client) CreateFolder(ctx context.Context, name, color string) (*models.Folder, error) {
	return c.folderRequest(ctx, http.MethodPost, "/folders", map[string]string{"name": name, "color": color})
}

func (c *Client) UpdateFolder(ctx context.Context, id int64, name, color string) (*models.Folder, error) {
	return c.folderRequest(ctx, http.MethodPatch, fmt.Sprintf("/folders/%d", id),
		map[string]string{"name": name, "color": color})
}

func (c *Client) DeleteFolder(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/folders/%d", id), nil)
	return err
}

func (c *Client) folderRequest(ctx context.Context, method, path string, body interface{}) (*models.Folder, error) {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var data struct {
		Folder *models.Folder `json:"folder"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return data.Folder, nil
}

func (c *Client) Tags(ctx context.Context) ([]models.Tag, error) {
	var data struct {
		Tags []models.Tag `json:"tags"`
	}
	if err := c.get(ctx, "/tags", &data); err != nil {
		return nil, err
	}
	return data.Tags, nil
}

// PopularTags returns the top tags by usage count.
func (c *Client) PopularTags(ctx context.Context, limit int) ([]models.Tag, error) {
	var data struct {
		Tags []models.Tag `json:"tags"`
	}
	if err := c.get(ctx, fmt.Sprintf("/tags/popular?limit=%d", limit), &data); err != nil {
		return nil, err
	}
	return data.Tags, nil
}

func (c *Client) Tag(ctx context.Context, id int64) (*models.Tag, error) {
	var data struct {
		Tag *models.Tag `json:"tag"`
	}
	if err := c.get(ctx, fmt.Sprintf("/tags/%d", id), &data); err != nil {
		return nil, err
	}
	return data.Tag, nil
}

// CreateTag is idempotent: creating an existing name returns the existing tag.
func (c *Client) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	env, err := c.do(ctx, http.MethodPost, "/tags", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	var data struct {
		Tag *models.Tag `json:"tag"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return data.Tag, nil
}

func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/tags/%d", id), nil)
	return err
}

// Health pings the liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}
