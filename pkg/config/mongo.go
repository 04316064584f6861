package config

import (
	"fmt"
	"strings"
	"time"
)

// MongoConfig configures the MongoDB product store.
type MongoConfig struct {
	URI        string        `koanf:"uri"`
	Database   string        `koanf:"database"`
	Collection string        `koanf:"collection"`
	Timeout    time.Duration `koanf:"timeout"`
}

const defaultMongoCollection = "products"

// String returns a string representation of the MongoDB configuration with credentials masked.
func (c *MongoConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- MongoDB ---\n")
	b.WriteString(fmt.Sprintf("  uri: %s\n", MaskURL(c.URI)))
	b.WriteString(fmt.Sprintf("  database: %s\n", c.Database))
	b.WriteString(fmt.Sprintf("  collection: %s\n", c.Collection))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *MongoConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("mongo URI is not configured")
	}
	if !strings.HasPrefix(c.URI, "mongodb://") && !strings.HasPrefix(c.URI, "mongodb+srv://") {
		return fmt.Errorf("mongo URI must start with 'mongodb://' or 'mongodb+srv://': %s", MaskURL(c.URI))
	}
	if c.Database == "" {
		return fmt.Errorf("mongo database is not configured")
	}
	if c.Collection == "" {
		c.Collection = defaultMongoCollection
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("mongo timeout is not configured")
	}
	return nil
}
