package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/geowfs/wfs-gateway/internal/config"
	"github.com/geowfs/wfs-gateway/internal/server/middlewares"
	"github.com/geowfs/wfs-gateway/pkg/certificates"
)

const (
	ProductionServer string = "prod"
	DevServer        string = "dev"
	APIV1            string = "/api/v1"
	healthPath       string = APIV1 + "/health"
)

type Server struct {
	srv *http.Server
}

// NewServer builds the gin engine. registerHandlerFn receives the root
// group with logging, recovery, timeout and authentication in place.
func NewServer(cfg *config.Configuration, registerHandlerFn func(router *gin.RouterGroup)) (*Server, error) {
	gin.SetMode(gin.DebugMode)
	if cfg.Server.ServerMode == ProductionServer {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Server.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Server.ServerMode == ProductionServer {
		tlsConfig, err := certificates.TLSConfig(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = tlsConfig
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found", "code": "NotFound"})
	})

	router := engine.Group("/")
	router.Use(
		middlewares.Logger(),
		ginzap.RecoveryWithZap(zap.S().Desugar(), true),
		middlewares.Timeout(cfg.Server.MaxRequestTime),
	)

	if cfg.Auth.Enabled {
		secret, err := os.ReadFile(cfg.Auth.JWTFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read jwt secret: %w", err)
		}
		secret = bytes.TrimSpace(secret)
		if len(secret) == 0 {
			return nil, errors.New("jwt secret file is empty")
		}

		auth := middlewares.Authenticator(secret)
		router.Use(func(c *gin.Context) {
			if c.FullPath() == healthPath {
				c.Next()
				return
			}
			auth(c)
		})
	}

	registerHandlerFn(router)

	return &Server{srv: srv}, nil
}

// Start starts the HTTP or HTTPS server based on TLS configuration.
func (r *Server) Start(ctx context.Context) error {
	var err error
	if r.srv.TLSConfig != nil {
		err = r.srv.ListenAndServeTLS("", "")
	} else {
		err = r.srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (r *Server) Stop(ctx context.Context) {
	if err := r.srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("server shutdown", "error", err)
	}
}
