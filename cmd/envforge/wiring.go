package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/EnvForge/envforge/pkg/auth"
	"github.com/EnvForge/envforge/pkg/cache"
	"github.com/EnvForge/envforge/pkg/client"
	"github.com/EnvForge/envforge/pkg/config"
)

// app bundles the wired collaborators every command needs.
type app struct {
	cfg    *config.Config
	client *client.Client
	cache  *cache.QueryCache
	auth   *auth.Manager
}

// newApp loads configuration and wires the client, cache and auth
// manager for a command invocation.
func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.NewLoader(appName, configPath).Load()
	if err != nil {
		return nil, err
	}

	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Server = server
	}
	if cfg.Server == "" {
		return nil, fmt.Errorf("no server configured: set `server` in the config file or pass --server")
	}

	authManager, err := newAuthManager(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if authEnabled(cmd.Context(), cfg, authManager) {
		httpClient.Transport = &auth.Transport{Manager: authManager}
	}

	svcClient, err := client.NewClient(&client.ClientConfig{
		BaseURL:    cfg.Server,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}

	if cfg.OpenAPIDoc != "" {
		if err := svcClient.DiscoverEndpoints(cmd.Context(), cfg.OpenAPIDoc); err != nil {
			return nil, fmt.Errorf("endpoint discovery failed: %w", err)
		}
	}

	queryCache, err := cache.NewQueryCache(appName)
	if err != nil {
		return nil, err
	}
	if cfg.CacheTTL > 0 {
		queryCache.DefaultTTL = cfg.CacheTTL
	}

	return &app{
		cfg:    cfg,
		client: svcClient,
		cache:  queryCache,
		auth:   authManager,
	}, nil
}

func newAuthManager(cfg *config.Config) (*auth.Manager, error) {
	storage, err := auth.NewKeyringStorage(appName, "")
	if err != nil {
		return nil, err
	}

	return auth.NewManager(&auth.Config{
		Storage:      storage,
		TokenURL:     cfg.Auth.TokenURL,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		Scopes:       cfg.Auth.Scopes,
	})
}

// authEnabled decides whether requests should carry a bearer token:
// either client credentials are configured or a login token is stored.
func authEnabled(ctx context.Context, cfg *config.Config, manager *auth.Manager) bool {
	if cfg.Auth.TokenURL != "" && cfg.Auth.ClientID != "" {
		return true
	}
	token, err := manager.GetToken(ctx)
	return err == nil && token != nil
}

// providerArg resolves the provider id from args or the configured
// default.
func providerArg(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.DefaultProvider != "" {
		return cfg.DefaultProvider, nil
	}
	return "", fmt.Errorf("no provider given and no default_provider configured")
}
