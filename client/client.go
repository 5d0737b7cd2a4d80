// Package client talks to the notes API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"notekeeper/models"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func IsNotFound(err error) bool     { return hasStatus(err, http.StatusNotFound) }
func IsConflict(err error) bool     { return hasStatus(err, http.StatusConflict) }
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// Client calls the API under a base URL such as "http://localhost:3002/api".
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a client without credentials. A nil httpClient uses a client
// with a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithToken returns a copy of c that sends token as bearer credentials.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login exchanges credentials for a token. The receiver is not modified; use
// WithToken with the result.
func (c *Client) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return "", time.Time{}, err
	}
	return resp.Token, resp.ExpiresAt, nil
}

func (c *Client) ActiveNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/notes/active", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) ArchivedNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/notes/archived", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) Note(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodGet, "/notes/"+id.String(), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) CreateNote(ctx context.Context, title, content string) (*models.Note, error) {
	var note models.Note
	err := c.do(ctx, http.MethodPost, "/notes", map[string]string{"title": title, "content": content}, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id uuid.UUID, title, content string, archived bool) error {
	return c.do(ctx, http.MethodPut, "/notes/"+id.String(), map[string]any{
		"title":    title,
		"content":  content,
		"archived": archived,
	}, nil)
}

func (c *Client) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+id.String(), nil, nil)
}

func (c *Client) ArchiveNote(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPatch, "/notes/"+id.String()+"/archive", nil, nil)
}

func (c *Client) UnarchiveNote(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPatch, "/notes/"+id.String()+"/unarchive", nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Client) Category(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var cat models.Category
	if err := c.do(ctx, http.MethodGet, "/categories/"+id.String(), nil, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	var cat models.Category
	if err := c.do(ctx, http.MethodPost, "/categories", map[string]string{"name": name}, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uuid.UUID, name string) error {
	return c.do(ctx, http.MethodPut, "/categories/"+id.String(), map[string]string{"name": name}, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+id.String(), nil, nil)
}

func (c *Client) NoteCategories(ctx context.Context, noteID uuid.UUID) ([]models.Category, error) {
	var cats []models.Category
	if err := c.do(ctx, http.MethodGet, "/notes/"+noteID.String()+"/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Client) AddNoteCategory(ctx context.Context, noteID, categoryID uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/notes/"+noteID.String()+"/categories",
		map[string]string{"categoryId": categoryID.String()}, nil)
}

func (c *Client) RemoveNoteCategory(ctx context.Context, noteID, categoryID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+noteID.String()+"/categories/"+categoryID.String(), nil, nil)
}

// ReplaceNoteCategories sets the note's categories in one server-side
// transaction.
func (c *Client) ReplaceNoteCategories(ctx context.Context, noteID uuid.UUID, categoryIDs []uuid.UUID) error {
	if categoryIDs == nil {
		categoryIDs = []uuid.UUID{}
	}
	return c.do(ctx, http.MethodPut, "/notes/"+noteID.String()+"/categories",
		map[string][]uuid.UUID{"categoryIds": categoryIDs}, nil)
}
