package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/geowfs/wfs-gateway/internal/catalog"
	"github.com/geowfs/wfs-gateway/internal/config"
	"github.com/geowfs/wfs-gateway/internal/postgis"
	"github.com/geowfs/wfs-gateway/internal/services"
	"github.com/geowfs/wfs-gateway/pkg/scheduler"
)

func NewSyncCommand(cfg *config.Configuration) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Introspect PostGIS layers into the catalog database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PostGIS.DSN == "" {
				return errors.New("postgis-dsn must be set")
			}
			return runSync(cmd, cfg, export)
		},
	}

	cmd.Flags().StringVar(&cfg.Catalog.DatabasePath, "catalog-db", cfg.Catalog.DatabasePath, "DuckDB catalog database file")
	cmd.Flags().StringVar(&export, "export", "", "Write the synced layers to this catalog file")
	registerPostGISFlags(cmd, cfg)

	return cmd
}

func runSync(cmd *cobra.Command, cfg *config.Configuration, export string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	pg, err := postgis.Connect(ctx, cfg.PostGIS.DSN, cfg.PostGIS.MaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to postgis: %w", err)
	}
	defer pg.Close()

	sched := scheduler.NewScheduler(1)
	defer sched.Close()

	srv := services.NewCatalogService(sched, st, pg, services.SyncOptions{
		Schema: cfg.PostGIS.Schema,
		Tables: cfg.PostGIS.Tables,
	})

	status, err := srv.Sync(ctx)
	if err != nil {
		return fmt.Errorf("catalog sync failed: %w", err)
	}

	layers, err := srv.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	for _, l := range layers {
		bold.Fprintf(out, "%-24s", l.Name)
		fmt.Fprintf(out, " %s srid=%d geometry=%v\n", l.QualifiedTable(), l.SRID, l.GeometryColumns())
	}
	color.New(color.FgGreen).Fprintf(out, "%d layers synced\n", status.Layers)

	if export == "" {
		return nil
	}

	data, err := catalog.Marshal(layers)
	if err != nil {
		return err
	}
	if err := os.WriteFile(export, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	fmt.Fprintf(out, "catalog written to %s\n", export)

	return nil
}
