// Package cmd holds the wfs-gateway command line.
package cmd

import (
	"fmt"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/geowfs/wfs-gateway/internal/config"
)

// EnvPrefix prefixes the environment variable of every flag:
// --server-http-port is read from WFS_SERVER_HTTP_PORT.
const EnvPrefix = "WFS"

func NewRootCommand() *cobra.Command {
	cfg := config.NewConfigurationWithOptionsAndDefaults()

	root := &cobra.Command{
		Use:           "wfs-gateway",
		Short:         "WFS gateway compiling OGC filters to PostGIS SQL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupViper(EnvPrefix)
			cobraflags.PresetRequiredFlags(EnvPrefix, make(map[*pflag.Flag]bool), cmd)

			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format (console or json)")

	root.AddCommand(
		NewRunCommand(cfg),
		NewCompileCommand(cfg),
		NewSyncCommand(cfg),
	)

	return root
}

func setupViper(envPrefix string) {
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log-level %q", cfg.Level)
	}

	var zcfg zap.Config
	switch cfg.Format {
	case "json":
		zcfg = zap.NewProductionConfig()
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log-format %q", cfg.Format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// registerCatalogFlags adds the catalog database flags shared by several commands.
func registerCatalogFlags(cmd *cobra.Command, cfg *config.Configuration) {
	cmd.Flags().StringVar(&cfg.Catalog.DatabasePath, "catalog-db", cfg.Catalog.DatabasePath, "DuckDB catalog database file, empty for in-memory")
	cmd.Flags().StringVar(&cfg.Catalog.File, "catalog-file", cfg.Catalog.File, "Layers YAML file imported into the catalog")
}

func registerPostGISFlags(cmd *cobra.Command, cfg *config.Configuration) {
	cmd.Flags().StringVar(&cfg.PostGIS.DSN, "postgis-dsn", cfg.PostGIS.DSN, "PostGIS connection string")
	cmd.Flags().StringVar(&cfg.PostGIS.Schema, "postgis-schema", cfg.PostGIS.Schema, "Schema introspected by catalog sync")
	cmd.Flags().StringSliceVar(&cfg.PostGIS.Tables, "postgis-tables", cfg.PostGIS.Tables, "Tables introspected by catalog sync, all geometry tables when empty")
	cmd.Flags().Int32Var(&cfg.PostGIS.MaxConns, "postgis-max-conns", cfg.PostGIS.MaxConns, "Maximum PostGIS pool connections")
}
