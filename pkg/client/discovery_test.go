package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const openAPIDoc = `{
  "openapi": "3.0.0",
  "info": {"title": "Provider Configuration Service", "version": "1.0.0"},
  "paths": {
    "/v2/providers/{provider}/options": {
      "post": {
        "operationId": "dryRunProviderOptions",
        "parameters": [{"name": "provider", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "resolved options"}}
      }
    },
    "/v2/providers/{provider}": {
      "put": {
        "operationId": "configureProvider",
        "parameters": [{"name": "provider", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"204": {"description": "configured"}}
      }
    }
  }
}`

func TestDiscoverEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openAPIDoc))
	}))
	defer server.Close()

	c, err := NewClient(&ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if err := c.DiscoverEndpoints(context.Background(), "/openapi.json"); err != nil {
		t.Fatalf("DiscoverEndpoints() error = %v", err)
	}

	endpoints := c.Endpoints()
	if endpoints.DryRun != "/v2/providers/{provider}/options" {
		t.Errorf("dry-run path = %q", endpoints.DryRun)
	}
	if endpoints.Configure != "/v2/providers/{provider}" {
		t.Errorf("configure path = %q", endpoints.Configure)
	}
	// The document does not describe the schema endpoint; the default
	// stays in effect.
	if endpoints.Schema != DefaultEndpoints().Schema {
		t.Errorf("schema path = %q, want default", endpoints.Schema)
	}
}

func TestDiscoverEndpointsBadDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"openapi"}`))
	}))
	defer server.Close()

	c, err := NewClient(&ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if err := c.DiscoverEndpoints(context.Background(), "/openapi.json"); err == nil {
		t.Error("expected an error for a non-OpenAPI document")
	}
}
