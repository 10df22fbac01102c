package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

type configuration struct {
	GatewayURL string
	PostgisDSN string
	JWTSecret  string
	Schema     string
}

var cfg configuration

func (c configuration) Validate() error {
	if c.PostgisDSN == "" {
		return errors.New("postgis dsn is empty")
	}
	if _, err := url.Parse(c.GatewayURL); err != nil {
		return fmt.Errorf("failed to parse gateway url: %v", err)
	}
	return nil
}

func main() {
	flag.StringVar(&cfg.GatewayURL, "gateway-url", "http://localhost:8080", "Gateway base url")
	flag.StringVar(&cfg.PostgisDSN, "postgis-dsn", "", "DSN of the PostGIS database the gateway serves")
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Token signing secret when the gateway requires authentication")
	flag.StringVar(&cfg.Schema, "schema", "e2e", "Schema the test tables are created in")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("failed to validate configuration: %v", err)
	}

	RegisterFailHandler(Fail)
	if !RunSpecs(&testing.T{}, "E2E Suite") {
		os.Exit(1)
	}
}
