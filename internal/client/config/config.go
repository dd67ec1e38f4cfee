// Package config holds the client configuration, read once at startup from
// the environment and passed to the components that need it.
package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/jwtdemo/auth-system/internal/client/platform"
)

const DefaultMobileAPIURL = "https://your-server.com"

type Config struct {
	Platform string `env:"JWTDEMO_PLATFORM, default=auto"`
	// MobileAPIURL is the absolute server address used from native shells.
	MobileAPIURL string `env:"JWTDEMO_MOBILE_API_URL, default=https://your-server.com"`
	// WebOrigin stands in for the page origin that relative paths resolve against.
	WebOrigin string `env:"JWTDEMO_WEB_ORIGIN, default=http://localhost:8080"`
	DataDir   string `env:"JWTDEMO_DATA_DIR"`
	// DeviceKey is the key material for the encrypted keystore.
	DeviceKey string `env:"JWTDEMO_DEVICE_KEY"`
}

// Load reads the client configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	if cfg.DataDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.DataDir = filepath.Join(dir, "jwtdemo")
	}
	return &cfg, nil
}

// Capabilities is the probe input derived from this configuration.
func (c *Config) Capabilities() platform.Capabilities {
	return platform.Capabilities{
		Requested:         c.Platform,
		KeystoreAvailable: c.DeviceKey != "",
	}
}

// BaseURL is the prefix prepended to endpoints: the mobile API URL on native
// platforms, nothing on the web.
func (c *Config) BaseURL(p platform.Platform) string {
	if p.IsNative() {
		if c.MobileAPIURL == "" {
			return DefaultMobileAPIURL
		}
		return strings.TrimRight(c.MobileAPIURL, "/")
	}
	return ""
}

// APIURL returns the request target for endpoint: absolute on native
// platforms, a relative path on the web.
func (c *Config) APIURL(p platform.Platform, endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	if p.IsNative() {
		return c.BaseURL(p) + endpoint
	}
	return endpoint
}

// Resolve turns an APIURL result into an absolute URL, resolving relative
// paths against WebOrigin the way a browser resolves against the page.
func (c *Config) Resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target %q: %w", target, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	origin, err := url.Parse(c.WebOrigin)
	if err != nil || !origin.IsAbs() {
		return "", fmt.Errorf("invalid web origin %q", c.WebOrigin)
	}
	return origin.ResolveReference(ref).String(), nil
}
