// Package config assembles the product service configuration.
package config

import (
	"strings"

	"github.com/JobsonDeveloper/Product-Microservice/pkg/config"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Store      config.StoreConfig      `koanf:"store"`
	Mongo      config.MongoConfig      `koanf:"mongo"`
	Database   config.DatabaseConfig   `koanf:"database"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
}

// Defaults holds the values used when neither the YAML file nor the environment sets a key.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               8080,
		"server.maxHeaderBytes":     1 << 20,
		"server.timeout.read":       "5s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readHeader": "2s",
		"store.driver":              config.StoreDriverMongo,
		"mongo.database":            "products",
		"mongo.collection":          "products",
		"mongo.timeout":             "5s",
		"database.timeout":          "5s",
		"database.migrate":          true,
		"nats.enabled":              false,
		"nats.timeout":              "5s",
		"nats.stream":               "PRODUCTS",
		"log.level":                 "info",
		"pprof.enabled":             false,
		"pprof.addr":                ":6060",
		"grpc.port":                 "9090",
		"grpc.reflection":           false,
		"shutdown.timeout":          "10s",
		"telemetry.traces.enabled":  false,
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Store.String())
	switch c.Store.Driver {
	case config.StoreDriverMongo:
		b.WriteString(c.Mongo.String())
	case config.StoreDriverPostgres:
		b.WriteString(c.Database.String())
	}
	b.WriteString(c.NATS.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid.
// Only the settings of the selected store driver are checked.
func (c *Config) Validate() error {
	validators := []configloader.Validator{&c.HTTPServer, &c.Store}
	switch c.Store.Driver {
	case config.StoreDriverMongo:
		validators = append(validators, &c.Mongo)
	case config.StoreDriverPostgres:
		validators = append(validators, &c.Database)
	}
	validators = append(validators, &c.NATS, &c.Log, &c.PProf, &c.GRPC, &c.Shutdown, &c.Telemetry)

	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
