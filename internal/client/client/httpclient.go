package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/client/models"
	"github.com/dmitrijs2005/passkeeper/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

// NewHTTPClient returns a client for the API at baseURL. timeout bounds
// every request.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// HTTP exposes the underlying http.Client, e.g. for presigned downloads.
func (c *HTTPClient) HTTP() *http.Client {
	return c.http
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
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
	req.Header.Set("Accept", "application/json")
	if token := c.getToken(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return mapError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapError(resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)
	if eb.Error == "" {
		eb.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return common.NewValidationError(eb.Error, eb.Fields...)
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, eb.Error)
	default:
		return &APIError{Status: resp.StatusCode, Message: eb.Error}
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/ping", nil, &out); err != nil {
		return err
	}
	if out.Status != "OK" {
		return fmt.Errorf("%w: unexpected status %q", ErrUnavailable, out.Status)
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, email string, password []byte, name string) (*models.User, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name,omitempty"`
	}{email, string(password), name}

	var out models.User
	if err := c.do(ctx, http.MethodPost, "/api/session/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and keeps the session for subsequent calls.
func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.Session, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, string(password)}

	var out models.Session
	if err := c.do(ctx, http.MethodPost, "/api/session/login", in, &out); err != nil {
		return nil, err
	}
	c.setToken(out.Token)
	out.Token = ""
	return &out, nil
}

// Logout revokes the session on the server and forgets it locally, even
// when the server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/session/logout", nil, nil)

	c.setToken("")

	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return err
	}
	return nil
}

func (c *HTTPClient) Session(ctx context.Context) (*models.Session, error) {
	var out models.Session
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) List(ctx context.Context) ([]models.Credential, error) {
	var out []models.Credential
	if err := c.do(ctx, http.MethodGet, "/api/credentials", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Create(ctx context.Context, in models.CredentialInput) (*models.Credential, error) {
	var out models.Credential
	if err := c.do(ctx, http.MethodPost, "/api/credentials", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Update(ctx context.Context, id string, p models.CredentialPatch) (*models.Credential, error) {
	if id == "" {
		return nil, common.NewValidationError("missing required fields", "id")
	}
	var out models.Credential
	if err := c.do(ctx, http.MethodPut, "/api/credentials/"+url.PathEscape(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return common.NewValidationError("missing required fields", "id")
	}
	return c.do(ctx, http.MethodDelete, "/api/credentials/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var out models.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Export(ctx context.Context, passphrase []byte) (*models.Export, error) {
	in := struct {
		Passphrase string `json:"passphrase"`
	}{string(passphrase)}

	var out models.Export
	if err := c.do(ctx, http.MethodPost, "/api/credentials/export", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
