package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseSchema parses a provider schema from YAML or JSON data.
// JSON is a subset of YAML, but we try JSON first for exact error
// positions when the document is clearly JSON.
func ParseSchema(data []byte) (*Schema, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty schema document")
	}

	var schema Schema
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
		}
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	return &schema, nil
}

// LoadSchemaFile reads and parses a provider schema from disk.
func LoadSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseSchema(data)
}

// Validate checks structural invariants of the schema.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema is missing a provider name")
	}

	seen := make(map[string]bool)
	for _, group := range s.OptionGroups {
		if group.Name == "" {
			return fmt.Errorf("option group without a name")
		}
		if seen[group.Name] {
			return fmt.Errorf("duplicate option group %q", group.Name)
		}
		seen[group.Name] = true
	}

	return nil
}
