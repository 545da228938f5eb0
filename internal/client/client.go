// Package client calls the editor endpoints of a running pdfeditor server.
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

	"github.com/ziadkadry99/pdfeditor/internal/auth"
	"github.com/ziadkadry99/pdfeditor/internal/viewer"
)

// Client talks to one pdfeditor server on behalf of a logged-in session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSession sends the given session id as the session cookie.
func WithSession(id string) Option {
	return func(c *Client) { c.session = id }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type result struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// DeletePage removes page (1-based) from filename in the folder selected by
// folderType.
func (c *Client) DeletePage(ctx context.Context, filename, folderType string, page int) error {
	return c.post(ctx, "/delete_page", map[string]any{
		"filename":    filename,
		"page_number": page,
		"folder_type": folderType,
	}, page)
}

// Save copies filename into the user's library.
func (c *Client) Save(ctx context.Context, filename, folderType string) error {
	return c.post(ctx, "/save_file", map[string]any{
		"filename":    filename,
		"folder_type": folderType,
	}, 0)
}

// Editor binds the client to one document.
func (c *Client) Editor(filename, folderType string) viewer.Editor {
	return &Editor{client: c, filename: filename, folderType: folderType}
}

// post sends a JSON request and maps any failure, transport or
// application level, to a ServerRequestFailure.
func (c *Client) post(ctx context.Context, path string, payload any, page int) error {
	fail := func(err error) error {
		return &viewer.Error{Kind: viewer.ServerRequestFailure, Page: page, Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fail(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: c.session})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fail(fmt.Errorf("%s: reading response: %w", path, err))
	}

	var res result
	jsonErr := json.Unmarshal(raw, &res)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := res.Error
		if jsonErr != nil || msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return fail(fmt.Errorf("%s: HTTP %d: %s", path, resp.StatusCode, msg))
	}
	if jsonErr != nil {
		return fail(fmt.Errorf("%s: decoding response: %w", path, jsonErr))
	}
	if !res.Success {
		if res.Error == "" {
			return fail(errors.New(path + ": request failed"))
		}
		return fail(errors.New(res.Error))
	}
	return nil
}

// Editor is a viewer.Editor backed by the server endpoints.
type Editor struct {
	client     *Client
	filename   string
	folderType string
}

func (e *Editor) DeletePage(ctx context.Context, page int) error {
	return e.client.DeletePage(ctx, e.filename, e.folderType, page)
}

func (e *Editor) Save(ctx context.Context) error {
	return e.client.Save(ctx, e.filename, e.folderType)
}
