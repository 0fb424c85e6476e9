package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation ids the service is expected to publish in its OpenAPI
// document.
const (
	opDryRun    = "dryRunProviderOptions"
	opConfigure = "configureProvider"
	opSchema    = "getProviderSchema"
)

// DiscoverEndpoints loads the service's OpenAPI document and overrides
// the client's endpoint paths from the operation ids above. Operations
// missing from the document keep their current paths, so a partial
// document is fine.
//
// docURL is resolved against the client's base URL when relative
// (typically "/openapi.json").
func (c *Client) DiscoverEndpoints(ctx context.Context, docURL string) error {
	resolved, err := c.resolveDocURL(docURL)
	if err != nil {
		return err
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromURI(resolved)
	if err != nil {
		return fmt.Errorf("failed to load OpenAPI document: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op == nil {
				continue
			}
			switch op.OperationID {
			case opDryRun:
				c.endpoints.DryRun = path
			case opConfigure:
				c.endpoints.Configure = path
			case opSchema:
				c.endpoints.Schema = path
			}
		}
	}

	return nil
}

// Endpoints returns the paths currently in effect.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

func (c *Client) resolveDocURL(docURL string) (*url.URL, error) {
	parsed, err := url.Parse(docURL)
	if err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document URL: %w", err)
	}

	if parsed.IsAbs() {
		return parsed, nil
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	return base.ResolveReference(parsed), nil
}
