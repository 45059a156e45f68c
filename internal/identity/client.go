package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spec-kit/citizen-portal/internal/domain"
)

const (
	authenticatePath = "/api/auth/authenticate"
	registerPath     = "/api/auth/register"

	maxErrorBody = 64 << 10
)

var (
	// ErrUnavailable wraps transport failures reaching the identity service.
	ErrUnavailable = errors.New("identity service unavailable")
	// ErrInvalidResponse means a success response carried an unusable body.
	ErrInvalidResponse = errors.New("identity service returned an invalid response")
)

// StatusError is a non-success response from the identity service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity service responded %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("identity service responded %d", e.StatusCode)
}

// TokenPair is the authenticate response body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Client talks to the external identity service. Every call is a single
// round trip without retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client. A nil httpClient uses the transport defaults.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// Authenticate exchanges credentials for a token pair.
func (c *Client) Authenticate(ctx context.Context, creds domain.Credentials) (*TokenPair, error) {
	body := map[string]string{"username": creds.Username, "password": creds.Password}

	resp, err := c.post(ctx, authenticatePath, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrInvalidResponse)
	}
	return &pair, nil
}

// Register creates an account and returns the user summary, if any.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.RegisteredUser, error) {
	resp, err := c.post(ctx, registerPath, reg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var data struct {
		User domain.RegisteredUser `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return data.User, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err == nil {
		se.Message = body.Message
	}
	return se
}
