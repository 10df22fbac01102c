package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/geowfs/wfs-gateway/internal/catalog"
	"github.com/geowfs/wfs-gateway/internal/config"
	"github.com/geowfs/wfs-gateway/pkg/filter"
	"github.com/geowfs/wfs-gateway/pkg/filter/cql"
)

const compileExample = `  wfs-gateway compile --catalog-file layers.yaml --layer roads filter.xml
  wfs-gateway compile --catalog-file layers.yaml --layer roads --cql "lanes > 2"`

type compileOptions struct {
	layer string
	cql   string
}

func NewCompileCommand(cfg *config.Configuration) *cobra.Command {
	opts := &compileOptions{}

	cmd := &cobra.Command{
		Use:           "compile [filter.xml|-]",
		Short:         "Compile a Filter Encoding document or a CQL filter to SQL",
		Example:       compileExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, cfg, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.layer, "layer", "", "Layer the filter applies to")
	cmd.Flags().StringVar(&opts.cql, "cql", "", "CQL filter instead of a Filter document")
	cmd.Flags().StringVar(&cfg.Catalog.File, "catalog-file", cfg.Catalog.File, "Layers YAML file")
	cmd.Flags().StringVar(&cfg.Filter.Dialect, "filter-dialect", cfg.Filter.Dialect, "Spatial function names (legacy or postgis)")
	cmd.Flags().IntVar(&cfg.Filter.MaxDepth, "filter-max-depth", cfg.Filter.MaxDepth, "Maximum filter nesting depth")
	_ = cmd.MarkFlagRequired("layer")
	_ = cmd.MarkFlagRequired("catalog-file")

	return cmd
}

func runCompile(cmd *cobra.Command, cfg *config.Configuration, opts *compileOptions, args []string) error {
	if opts.cql != "" && len(args) > 0 {
		return errors.New("a filter file and --cql are mutually exclusive")
	}
	if opts.cql == "" && len(args) == 0 {
		return errors.New("a filter file or --cql is required")
	}

	dialect, err := filter.ParseDialect(cfg.Filter.Dialect)
	if err != nil {
		return err
	}

	layers, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return err
	}
	schemas := make([]*filter.Schema, 0, len(layers))
	for _, l := range layers {
		schemas = append(schemas, l.FilterSchema())
	}
	translator := filter.NewTranslator(filter.NewStaticCatalog(schemas...), filter.WithDialect(dialect), filter.WithMaxDepth(cfg.Filter.MaxDepth))

	var sql string
	if opts.cql != "" {
		root, perr := cql.Parse([]byte(opts.cql))
		if perr != nil {
			return printCompileError(cmd.ErrOrStderr(), perr)
		}
		sql, err = translator.Translate(cmd.Context(), opts.layer, root)
	} else {
		var document []byte
		document, err = readDocument(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		sql, err = translator.TranslateXML(cmd.Context(), opts.layer, document)
	}
	if err != nil {
		return printCompileError(cmd.ErrOrStderr(), err)
	}

	out := cmd.OutOrStdout()
	if sql == "" {
		color.New(color.FgYellow).Fprintln(out, "-- empty filter, every feature matches")
		return nil
	}
	color.New(color.FgGreen).Fprintln(out, sql)
	return nil
}

func readDocument(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read filter: %w", err)
	}
	return data, nil
}

// printCompileError prints the error kind in red and returns err for the
// exit status.
func printCompileError(w io.Writer, err error) error {
	label := "error"
	if kind, ok := filter.KindOf(err); ok {
		label = kind.String()
	}
	color.New(color.FgRed, color.Bold).Fprintf(w, "%s: ", label)
	fmt.Fprintln(w, err)
	return err
}
