// Package client is a small Go client for the saas-admin API, used by
// tooling that talks to the backend the same way the admin frontend does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/hinagata/saas-admin/internal/domain"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		cache:   cache.New(30*time.Second, time.Minute),
		baseURL: baseURL,
	}
}

// APIError carries the status and error body of a failed request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login authenticates and stores the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp loginResponse
	err := c.request(ctx, http.MethodPost, "/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.AccessToken
	c.cache.Flush()
	return nil
}

// SetToken installs a pre-issued token instead of logging in.
func (c *Client) SetToken(token string) {
	c.token = token
	c.cache.Flush()
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.getCached(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	err := c.request(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &user)
	return user, err
}

type NewUser struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
	TenantID *int64      `json:"tenantId,omitempty"`
}

func (c *Client) CreateUser(ctx context.Context, input NewUser) (domain.User, error) {
	var user domain.User
	err := c.request(ctx, http.MethodPost, "/users", input, &user)
	if err == nil {
		c.cache.Flush()
	}
	return user, err
}

type UserChanges struct {
	Name     *string      `json:"name,omitempty"`
	Email    *string      `json:"email,omitempty"`
	Password *string      `json:"password,omitempty"`
	Role     *domain.Role `json:"role,omitempty"`
	TenantID *int64       `json:"tenantId,omitempty"`
}

func (c *Client) UpdateUser(ctx context.Context, id int64, changes UserChanges) (domain.User, error) {
	var user domain.User
	err := c.request(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), changes, &user)
	if err == nil {
		c.cache.Flush()
	}
	return user, err
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	err := c.request(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
	if err == nil {
		c.cache.Flush()
	}
	return err
}

func (c *Client) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	if err := c.getCached(ctx, "/tenants", &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (c *Client) GetTenant(ctx context.Context, id int64) (domain.Tenant, error) {
	var tenant domain.Tenant
	err := c.request(ctx, http.MethodGet, fmt.Sprintf("/tenants/%d", id), nil, &tenant)
	return tenant, err
}

func (c *Client) CreateTenant(ctx context.Context, name string) (domain.Tenant, error) {
	var tenant domain.Tenant
	err := c.request(ctx, http.MethodPost, "/tenants", map[string]string{"name": name}, &tenant)
	if err == nil {
		c.cache.Flush()
	}
	return tenant, err
}

func (c *Client) UpdateTenant(ctx context.Context, id int64, name string) (domain.Tenant, error) {
	var tenant domain.Tenant
	err := c.request(ctx, http.MethodPut, fmt.Sprintf("/tenants/%d", id), map[string]string{"name": name}, &tenant)
	if err == nil {
		c.cache.Flush()
	}
	return tenant, err
}

func (c *Client) DeleteTenant(ctx context.Context, id int64) error {
	err := c.request(ctx, http.MethodDelete, fmt.Sprintf("/tenants/%d", id), nil, nil)
	if err == nil {
		c.cache.Flush()
	}
	return err
}

// getCached serves list endpoints from a short-lived cache; mutations
// flush it.
func (c *Client) getCached(ctx context.Context, path string, response any) error {
	if raw, ok := c.cache.Get(path); ok {
		return json.Unmarshal(raw.([]byte), response)
	}

	body, err := c.requestRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	c.cache.Set(path, body, cache.DefaultExpiration)
	return json.Unmarshal(body, response)
}

func (c *Client) request(ctx context.Context, method, path string, payload, response any) error {
	body, err := c.requestRaw(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if response == nil {
		return nil
	}
	return json.Unmarshal(body, response)
}

func (c *Client) requestRaw(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &errBody)
		return nil, &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}
	return body, nil
}
