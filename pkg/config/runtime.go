package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// maxShutdownTimeout caps how long the servers may drain in-flight requests.
const maxShutdownTimeout = 5 * time.Minute

// PProfConfig exposes net/http/pprof on a separate listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- PProf ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  address: %s\n", c.Addr))
	return b.String()
}

func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid pprof address %q: %w", c.Addr, err)
	}
	return nil
}

// ShutdownConfig bounds the graceful stop of the HTTP, gRPC and pprof servers.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 || c.Timeout > maxShutdownTimeout {
		return fmt.Errorf("invalid shutdown timeout: %s (must be in (0, %s])", c.Timeout, maxShutdownTimeout)
	}
	return nil
}
