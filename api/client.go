package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/fogeapi-client/users"
)

// Client calls the authenticated backend endpoints. Pass an http.Client whose
// Transport is the session interceptor; Client itself never touches tokens.
type Client struct {
	r requester
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{r: newRequester(baseURL, httpClient)}
}

// Me fetches the current user.
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	var out meResponse
	if err := c.r.do(ctx, http.MethodGet, RouteMe, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	var out listAPIKeysResponse
	if err := c.r.do(ctx, http.MethodGet, RouteListAPIKeys, nil, &out, nil); err != nil {
		return nil, err
	}
	return out.APIKeys, nil
}

func (c *Client) GenerateAPIKey(ctx context.Context, name string) (*GenerateAPIKeyResponse, error) {
	var out GenerateAPIKeyResponse
	if err := c.r.do(ctx, http.MethodPost, RouteGenerateAPIKey, GenerateAPIKeyRequest{Name: name}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAPIKey(ctx context.Context, id string) error {
	return c.r.do(ctx, http.MethodDelete, RouteDeleteAPIKey+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) CreateSchema(ctx context.Context, req CreateSchemaRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.r.do(ctx, http.MethodPost, RouteCreateSchema, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSchemas(ctx context.Context) ([]Schema, error) {
	var out listSchemasResponse
	if err := c.r.do(ctx, http.MethodGet, RouteListSchemas, nil, &out, nil); err != nil {
		return nil, err
	}
	return out.UserAPIs, nil
}

func (c *Client) DeleteSchema(ctx context.Context, id string) error {
	return c.r.do(ctx, http.MethodDelete, RouteDeleteSchema+url.PathEscape(id), nil, nil, nil)
}
