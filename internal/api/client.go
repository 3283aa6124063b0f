// Package api is a typed client for the TSD order backend's REST API.
// One method per endpoint, JSON in, JSON out, bearer token attached to
// every authenticated request. No retries and no caching; callers decide
// what a failure means.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// requestTimeout bounds every request, connect and read included.
const requestTimeout = 30 * time.Second

// Client talks to one backend instance with one bearer token.
// The zero token is valid for the login call only.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New returns a client for the backend at baseURL. token may be empty
// when the client is only used to log in.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// BaseURL returns the backend base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithToken returns a copy of the client authenticated with token.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		token:      token,
		httpClient: c.httpClient,
	}
}

// Error is a non-2xx backend response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// newRequest builds a request with the bearer token attached.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do executes a request, maps non-2xx responses to *Error, and decodes
// the JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// responseError extracts the backend's error message, if it sent one.
func responseError(resp *http.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			apiErr.Message = payload.Detail
		} else if payload.Error != "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// sendForm issues a form-urlencoded request and decodes the response into
// out when out is non-nil.
func (c *Client) sendForm(ctx context.Context, method, path string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, method, path,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// sendJSON issues a request with a JSON body and decodes the response into
// out when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// sendMultipart issues a multipart request with text fields and one file
// part named fileField.
func (c *Client) sendMultipart(ctx context.Context, method, path string, fields map[string]string, fileField, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("writing field %s: %w", name, err)
		}
	}

	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copying file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, &buf, writer.FormDataContentType())
	if err != nil {
		return err
	}
	return c.do(req, out)
}
