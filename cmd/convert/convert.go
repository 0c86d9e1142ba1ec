package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalogconv/internal/config"
	"github.com/JonMunkholm/catalogconv/internal/core"
	"github.com/JonMunkholm/catalogconv/internal/refdata"
	"github.com/JonMunkholm/catalogconv/internal/tabular"
)

type convertOptions struct {
	input          string
	output         string
	format         string
	platform       string
	mappings       []string
	categorySource string
	jsonReport     bool

	refSource   string
	refDir      string
	sqlitePath  string
	dbURL       string
	maxConns    int
	loadTimeout time.Duration
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions

	// Reference flags default to the same REFERENCE_* variables the server reads.
	var ref config.ReferenceConfig
	envErr := config.Populate(&ref, os.LookupEnv)
	opts.maxConns = ref.MaxConns
	opts.loadTimeout = ref.LoadTimeout

	cmd := &cobra.Command{
		Use:   "convert INPUT",
		Short: "Convert a product export (CSV or Excel) to the catalog product schema",
		Long: `Detects the exporting platform, maps its columns to the catalog product
fields, resolves nested categories and writes the converted file.

The output defaults to catalog_products_<input name> in the input's
directory, in the input's format unless --format is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return withCode(exitUsage, envErr)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			return runConvert(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: catalog_products_<input>)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: csv or xlsx (default: from --output or input)")
	cmd.Flags().StringVar(&opts.platform, "platform", "", "Force a platform profile instead of detection; \"unknown\" disables profiles")
	cmd.Flags().StringArrayVar(&opts.mappings, "map", nil, "Override a mapping as field=Column; repeatable. An empty column clears the field")
	cmd.Flags().StringVar(&opts.categorySource, "category-source", "", "Column holding nested category strings")
	cmd.Flags().BoolVar(&opts.jsonReport, "json", false, "Print the conversion report as JSON")

	cmd.Flags().StringVar(&opts.refSource, "ref-source", ref.ReferenceSource(), "Reference data source: csv, postgres, sqlite, none")
	cmd.Flags().StringVar(&opts.refDir, "ref-dir", ref.Dir, "Directory with the reference category CSV files")
	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite", ref.SQLitePath, "SQLite reference database")
	cmd.Flags().StringVar(&opts.dbURL, "database-url", ref.DatabaseURL, "PostgreSQL reference database URL")

	return cmd
}

func runConvert(ctx context.Context, opts convertOptions, out io.Writer) error {
	inFormat, err := tabular.DetectFormat(opts.input)
	if err != nil {
		return withCode(exitUsage, err)
	}
	outFormat, outPath, err := resolveOutput(opts, inFormat)
	if err != nil {
		return withCode(exitUsage, err)
	}
	convOpts, err := parseConvertOptions(opts)
	if err != nil {
		return withCode(exitUsage, err)
	}

	loadCtx := ctx
	if opts.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, opts.loadTimeout)
		defer cancel()
	}
	ref, err := refdata.Load(loadCtx, refdata.Options{
		Source:      refdata.Source(strings.ToLower(strings.TrimSpace(opts.refSource))),
		Dir:         opts.refDir,
		DatabaseURL: opts.dbURL,
		MaxConns:    opts.maxConns,
		SQLitePath:  opts.sqlitePath,
	})
	if err != nil {
		return err
	}

	f, err := os.Open(opts.input)
	if err != nil {
		return err
	}
	src, err := core.ReadSource(f, inFormat)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", opts.input, err)
	}

	conv, err := core.NewTransformer(ref).Convert(src, nil, convOpts)
	if err != nil {
		return withCode(exitUsage, err)
	}

	if err := writeOutput(outPath, conv.Table, outFormat); err != nil {
		return err
	}

	if opts.jsonReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Output string `json:"output"`
			*core.Conversion
		}{outPath, conv})
	}
	printReport(out, outPath, conv)
	return nil
}

// resolveOutput picks the output format and path. An explicit --format wins,
// then the --output extension, then the input format.
func resolveOutput(opts convertOptions, inFormat tabular.Format) (tabular.Format, string, error) {
	format := inFormat
	switch {
	case opts.format != "":
		f, err := tabular.ParseFormat(opts.format)
		if err != nil {
			return "", "", err
		}
		format = f
	case opts.output != "":
		if f, err := tabular.DetectFormat(opts.output); err == nil {
			format = f
		}
	}

	path := opts.output
	if path == "" {
		name := tabular.OutputName(core.OutputPrefix, opts.input, format)
		path = filepath.Join(filepath.Dir(opts.input), name)
	}
	return format, path, nil
}

// parseConvertOptions turns the --platform, --map and --category-source
// flags into core.ConvertOptions.
func parseConvertOptions(opts convertOptions) (core.ConvertOptions, error) {
	co := core.ConvertOptions{
		Platform: strings.ToLower(strings.TrimSpace(opts.platform)),
		Mapping:  core.NewFieldMapping(),
	}
	for _, m := range opts.mappings {
		field, col, ok := strings.Cut(m, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return co, fmt.Errorf("invalid --map %q: want field=Column", m)
		}
		// Set drops empty columns; keep them so the override clears the field.
		co.Mapping.Fields[field] = strings.TrimSpace(col)
	}
	co.Mapping.CategorySource = strings.TrimSpace(opts.categorySource)
	return co, nil
}

func writeOutput(path string, t *core.Table, f tabular.Format) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := core.WriteTable(out, t, f); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

func printReport(w io.Writer, path string, conv *core.Conversion) {
	st := conv.Stats
	fmt.Fprintf(w, "Platform:   %s\n", conv.Platform)
	fmt.Fprintf(w, "Mapped:     %d of %d columns (%d/%d required, %d/%d optional)\n",
		st.MappedColumns, st.OriginalColumns, st.RequiredMapped, st.RequiredTotal, st.OptionalMapped, st.OptionalTotal)
	if conv.CategorySource != "" {
		fmt.Fprintf(w, "Categories: from %q, %d rows defaulted\n", conv.CategorySource, st.DefaultedRows)
	}
	fmt.Fprintf(w, "Rows:       %d read, %d written, %d dropped\n", st.RowsRead, st.RowsProcessed, st.RowsDropped)
	fmt.Fprintf(w, "Valid:      %t (%.1f%% complete)\n", conv.Report.Valid, st.ValidPercent)

	for _, issue := range conv.Report.Issues {
		fmt.Fprintf(w, "  issue: %s\n", issue)
	}
	for _, warn := range conv.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	for _, warn := range conv.Report.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	fmt.Fprintf(w, "Output:     %s\n", path)
}
