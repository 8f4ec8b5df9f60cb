package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

const defaultTimeout = 30 * time.Second

// Client represents an HTTP client for the appointment API. Credentialed
// calls go through a cookie jar so the server-side session survives
// between login and logout.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a new API client for the given base URL
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

// SetHTTPClient sets a custom HTTP client. A client without a jar gets
// a fresh one so credentialed calls keep working.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient.Jar == nil {
		if jar, err := cookiejar.New(nil); err == nil {
			httpClient.Jar = jar
		}
	}
	c.httpClient = httpClient
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookies returns the cookies the jar holds for the API base URL
func (c *Client) Cookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar, used when a persisted session is restored
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	c.httpClient.Jar.SetCookies(c.baseURL, cookies)
}

// ID is an account identifier. Patients and doctors come back from the
// API as JSON numbers, but strings are accepted too.
type ID string

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", string(data))
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response. Patient and admin accounts
// carry user_id, doctor accounts carry doctor_id.
type LoginResponse struct {
	Message  string `json:"message"`
	Role     string `json:"role"`
	UserID   ID     `json:"user_id"`
	DoctorID ID     `json:"doctor_id"`
	Name     string `json:"name"`

	// Raw is the full decoded body
	Raw map[string]any `json:"-"`
}

// AccountID returns user_id, falling back to doctor_id
func (r *LoginResponse) AccountID() string {
	if r.UserID != "" {
		return string(r.UserID)
	}
	return string(r.DoctorID)
}

// Login authenticates the user. The server answers with a session cookie
// which is kept in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	reqBody := LoginRequest{
		Username: username,
		Password: password,
	}

	body, err := c.post(ctx, "/login", reqBody, true)
	if err != nil {
		return nil, err
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := json.Unmarshal(body, &loginResp.Raw); err != nil {
		return nil, &DecodeError{Err: err}
	}

	return &loginResp, nil
}

// Register forwards a registration payload as-is. The request is not
// credentialed.
func (c *Client) Register(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	body, err := c.post(ctx, "/register", payload, false)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if len(bytes.TrimSpace(body)) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &DecodeError{Err: err}
	}

	return data, nil
}

// Logout ends the server-side session
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.post(ctx, "/logout", struct{}{}, true)
	return err
}

// post sends a JSON body and returns the raw response body of a 2xx reply
func (c *Client) post(ctx context.Context, path string, reqBody any, credentialed bool) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL.JoinPath(path).String(),
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", ulid.Make().String())

	httpClient := c.httpClient
	if !credentialed {
		httpClient = &http.Client{
			Transport: c.httpClient.Transport,
			Timeout:   c.httpClient.Timeout,
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}
