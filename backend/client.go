// Package backend is the HTTP client for the external inventory service that
// owns users, inventory records, ownership and confirmation.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrLoginRejected is returned by Login when the backend does not answer with
// the success marker.
var ErrLoginRejected = errors.New("login rejected")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned status code %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Download is a streamed file answer. The caller must close Body.
type Download struct {
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
	ContentLength      int64
}

// Client talks to the inventory backend. It never retries.
type Client struct {
	baseURL     string
	loginMarker string
	httpClient  *http.Client
}

// NewClient returns a client for the backend at baseURL. A login is accepted
// only when the trimmed response body equals loginMarker.
func NewClient(baseURL, loginMarker string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		loginMarker: loginMarker,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the backend root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the credentials against the backend.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/login", credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read login response: %w", err)
	}
	if strings.TrimSpace(string(body)) != c.loginMarker {
		return ErrLoginRejected
	}
	return nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := c.getJSON(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, username, password string) (*User, error) {
	resp, err := c.do(ctx, http.MethodPost, "/users", credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	user := &User{}
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, fmt.Errorf("failed to decode created user: %w", err)
	}
	return user, nil
}

// ListInventories returns every record when ownerID is empty, otherwise only
// the records owned by ownerID.
func (c *Client) ListInventories(ctx context.Context, ownerID string) ([]Inventory, error) {
	path := "/inventories"
	if ownerID != "" {
		path += "?ownerId=" + url.QueryEscape(ownerID)
	}
	inventories := []Inventory{}
	if err := c.getJSON(ctx, path, &inventories); err != nil {
		return nil, err
	}
	return inventories, nil
}

// UpdateInventory replaces the whole record with inv.
func (c *Client) UpdateInventory(ctx context.Context, id int, inv Inventory) error {
	resp, err := c.do(ctx, http.MethodPut, "/inventories/"+strconv.Itoa(id), inv)
	if err != nil {
		return err
	}
	return drain(resp)
}

// ConfirmInventory locks the record permanently on the backend.
func (c *Client) ConfirmInventory(ctx context.Context, id int) error {
	resp, err := c.do(ctx, http.MethodPut, "/inventories/"+strconv.Itoa(id)+"/confirm", nil)
	if err != nil {
		return err
	}
	return drain(resp)
}

// ExportExcel opens the backend's spreadsheet export of all records.
func (c *Client) ExportExcel(ctx context.Context) (*Download, error) {
	resp, err := c.do(ctx, http.MethodGet, "/inventories/export/excel", nil)
	if err != nil {
		return nil, err
	}
	return &Download{
		Body:               resp.Body,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentLength:      resp.ContentLength,
	}, nil
}

// Ping reports whether the backend answers the user listing.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return err
	}
	return drain(resp)
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// do sends the request and returns the response only for 2xx answers.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
	}
	return resp, nil
}

func drain(resp *http.Response) error {
	defer resp.Body.Close()
	_, err := io.Copy(io.Discard, resp.Body)
	return err
}
