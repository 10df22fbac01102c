// Package config holds the runtime configuration of the gateway.
package config

import (
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

type Server struct {
	HTTPPort   int    `default:"8080" validate:"min=1,max=65535"`
	ServerMode string `default:"dev" validate:"oneof=dev prod"`
	// TLS files are used in prod mode; empty means a self-signed certificate.
	TLSCertFile string
	TLSKeyFile  string
	// MaxRequestTime bounds every request, including PostGIS queries.
	MaxRequestTime time.Duration `default:"30s"`
}

type Auth struct {
	Enabled bool `default:"false"`
	// JWTFilePath holds the HMAC secret bearer tokens are signed with.
	JWTFilePath string
}

type Catalog struct {
	// DatabasePath is the DuckDB file; empty keeps the catalog in memory.
	DatabasePath string `default:"wfs-gateway.duckdb"`
	// File is an optional layers YAML file imported at start.
	File  string
	Watch bool `default:"false"`
}

type PostGIS struct {
	DSN         string
	Schema      string `default:"public"`
	Tables      []string
	MaxConns    int32 `default:"8" validate:"min=1"`
	SyncOnStart bool  `default:"false"`
}

type Filter struct {
	Dialect     string `default:"postgis" validate:"oneof=legacy postgis"`
	MaxDepth    int    `default:"64" validate:"min=1"`
	MaxFeatures uint64 `default:"10000"`
}

type Log struct {
	Level  string `default:"info" validate:"oneof=debug info warn error"`
	Format string `default:"console" validate:"oneof=console json"`
}

type Configuration struct {
	Server     Server
	Auth       Auth
	Catalog    Catalog
	PostGIS    PostGIS
	Filter     Filter
	Log        Log
	NumWorkers int `default:"4" validate:"min=1"`
}

// NewConfigurationWithOptionsAndDefaults returns a configuration with
// every default applied and opts run on top.
func NewConfigurationWithOptionsAndDefaults(opts ...Option) *Configuration {
	cfg := &Configuration{}
	_ = defaults.Set(cfg)

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

type Option func(*Configuration)

func WithCatalogFile(path string) Option {
	return func(c *Configuration) {
		c.Catalog.File = path
	}
}

func WithPostGIS(dsn string) Option {
	return func(c *Configuration) {
		c.PostGIS.DSN = dsn
	}
}

// Validate checks the struct tags.
func (c *Configuration) Validate() error {
	return validator.New().Struct(c)
}
