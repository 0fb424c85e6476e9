// Package client implements the HTTP client for the provider
// configuration service.
//
// The service exposes three logical operations per provider: a dry-run
// query computing the resolvable option set for a candidate
// configuration, a configure call committing one, and the provider
// schema. Endpoint paths default to the conventional REST shape and can
// be discovered from the service's published OpenAPI document instead.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/EnvForge/envforge/pkg/provider"
	"github.com/EnvForge/envforge/pkg/session"
)

// Endpoints are the service paths, with "{provider}" as the provider id
// placeholder.
type Endpoints struct {
	DryRun    string
	Configure string
	Schema    string
	Events    string
}

// DefaultEndpoints returns the conventional REST paths.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		DryRun:    "/providers/{provider}/dry-run",
		Configure: "/providers/{provider}/configure",
		Schema:    "/providers/{provider}/schema",
		Events:    "/providers/{provider}/events",
	}
}

// Client talks to the provider configuration service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	endpoints  Endpoints
}

// ClientConfig configures the Client.
type ClientConfig struct {
	// BaseURL is the service root, e.g. "https://config.example.com".
	BaseURL string
	// HTTPClient defaults to a client with a 30s timeout. Wrap its
	// transport with auth.Transport to authenticate requests.
	HTTPClient *http.Client
	// Endpoints default to DefaultEndpoints.
	Endpoints *Endpoints
}

// NewClient creates a service client.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil || config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	endpoints := DefaultEndpoints()
	if config.Endpoints != nil {
		endpoints = *config.Endpoints
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		endpoints:  endpoints,
	}, nil
}

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("service returned %d", e.Status)
}

// dryRunRequest and configureRequest are the wire shapes.
type dryRunRequest struct {
	Options map[string]string `json:"options"`
}

type configureRequest struct {
	Options              map[string]string `json:"options"`
	ReuseMachine         *bool             `json:"reuseMachine,omitempty"`
	UseAsDefaultProvider bool              `json:"useAsDefaultProvider"`
}

type dryRunResponse struct {
	Options provider.OptionSet `json:"options"`
}

// DryRunOptions computes the resolvable option set for a candidate
// configuration without committing it.
func (c *Client) DryRunOptions(ctx context.Context, providerID string, opts map[string]string) (provider.OptionSet, error) {
	if opts == nil {
		opts = map[string]string{}
	}

	var resp dryRunResponse
	err := c.postJSON(ctx, c.url(c.endpoints.DryRun, providerID), &dryRunRequest{Options: opts}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Options == nil {
		resp.Options = provider.OptionSet{}
	}
	return resp.Options, nil
}

// Configure commits a configuration. Side-effecting.
func (c *Client) Configure(ctx context.Context, providerID string, opts map[string]string, flags session.SubmitFlags) error {
	req := &configureRequest{
		Options:              opts,
		ReuseMachine:         flags.ReuseMachine,
		UseAsDefaultProvider: flags.UseAsDefault,
	}
	return c.postJSON(ctx, c.url(c.endpoints.Configure, providerID), req, nil)
}

// GetSchema fetches the provider schema. The service may answer in JSON
// or YAML; both decode into the same shape.
func (c *Client) GetSchema(ctx context.Context, providerID string) (*provider.Schema, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(c.endpoints.Schema, providerID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "yaml") {
		var schema provider.Schema
		if err := yaml.Unmarshal(body, &schema); err != nil {
			return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
		}
		return &schema, nil
	}

	return provider.ParseSchema(body)
}

// url expands the provider placeholder in an endpoint path.
func (c *Client) url(endpoint, providerID string) string {
	return c.baseURL + strings.ReplaceAll(endpoint, "{provider}", providerID)
}

// postJSON posts a JSON body and decodes a JSON response into out, if
// out is non-nil.
func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// apiError extracts the error message from a response body of the form
// {"error": "..."}, falling back to the raw body.
func apiError(status int, body []byte) error {
	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		return &APIError{Status: status, Message: wire.Error}
	}

	message := strings.TrimSpace(string(body))
	if len(message) > 200 {
		message = message[:200]
	}
	return &APIError{Status: status, Message: message}
}
