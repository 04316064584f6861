package config

import (
	"fmt"
	"strings"
)

// Supported product store drivers.
const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// StoreConfig selects the product store backend.
type StoreConfig struct {
	Driver string `koanf:"driver"`
}

// String returns a string representation of the store configuration.
func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	return b.String()
}

func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case StoreDriverMongo, StoreDriverPostgres, StoreDriverMemory:
		return nil
	case "":
		return fmt.Errorf("store driver is not configured")
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Driver)
	}
}
