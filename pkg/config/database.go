package config

import (
	"fmt"
	"strings"
	"time"
)

// DatabaseConfig configures the PostgreSQL product store.
type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	// Migrate applies the embedded schema migrations on start-up.
	Migrate bool `koanf:"migrate"`
}

// String returns a string representation of the database configuration with credentials masked.
func (c *DatabaseConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Database ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", MaskURL(c.URL)))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  migrate: %t\n", c.Migrate))
	return b.String()
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isValidPostgresURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://': %s", MaskURL(c.URL))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("database timeout is not configured")
	}
	return nil
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

// MaskURL hides the user info part of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		scheme := ""
		if i := strings.Index(parts[0], "://"); i >= 0 {
			scheme = parts[0][:i+3]
		}
		return scheme + "****@" + parts[1]
	}
	return url
}
