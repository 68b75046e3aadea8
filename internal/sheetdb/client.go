// Package sheetdb talks to the legacy spreadsheet-style record API the portal
// ran on before the relational migration. Rows are "records": an opaque id
// plus a map of named fields. The reminder and task stores in this package
// implement the same repository contracts as the SQLite stores, so the rest
// of the system cannot tell the backends apart.
package sheetdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record is one spreadsheet row.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// List fetches all records of a table matching params, following pagination
// offsets until the server stops returning one.
func (c *Client) List(table string, params url.Values) ([]Record, error) {
	if params == nil {
		params = url.Values{}
	}

	var all []Record
	for {
		u := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(table), params.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		var page listResponse
		if err := c.do(req, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)

		if page.Offset == "" {
			return all, nil
		}
		params.Set("offset", page.Offset)
	}
}

// Get fetches one record. A missing record is (nil, nil).
func (c *Client) Get(table, id string) (*Record, error) {
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(table), url.PathEscape(id))
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var rec Record
	err = c.do(req, &rec)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Create(table string, fields map[string]any) (*Record, error) {
	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	u := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(table))
	req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var rec Record
	if err := c.do(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update patches the given fields, leaving others untouched.
func (c *Client) Update(table, id string, fields map[string]any) (*Record, error) {
	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	u := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(table), url.PathEscape(id))
	req, err := http.NewRequest(http.MethodPatch, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var rec Record
	if err := c.do(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Delete(table, id string) error {
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(table), url.PathEscape(id))
	req, err := http.NewRequest(http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("sheet API returned %d", e.code)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheet API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &statusError{code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
