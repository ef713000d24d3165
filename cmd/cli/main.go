package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gradscope/adapters/excel"
	"gradscope/app"
	"gradscope/domain/drilldown"
	"gradscope/domain/filter"
	"gradscope/internal"
	"gradscope/internal/config"
	"gradscope/internal/container"
	"gradscope/internal/report"
	"gradscope/internal/testkit"
)

// requestFlags are shared by every command that runs the pipeline
type requestFlags struct {
	file     string
	variant  string
	criteria filter.Criteria
	status   string
}

func main() {
	_ = godotenv.Load()

	flags := &requestFlags{}
	rootCmd := &cobra.Command{
		Use:          "gradscope-cli",
		Short:        "Filter and summarize the recent graduates table",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.file, "file", "", "CSV or XLSX file (overrides DATA_SOURCE/DATA_FILE)")
	pf.StringVar(&flags.variant, "variant", "", "dashboard variant (overview, explorer)")
	pf.StringSliceVar(&flags.criteria.Majors, "majors", []string{filter.All}, "majors to include")
	pf.StringVar(&flags.criteria.Degree, "degree", "", "degree type")
	pf.StringVar(&flags.criteria.StartYear, "start-year", "", "first year")
	pf.StringVar(&flags.criteria.EndYear, "end-year", "", "last year (needs --start-year)")
	pf.StringVar(&flags.criteria.Gender, "gender", "", "gender")
	pf.StringVar(&flags.criteria.Employment, "employment", "", "employment status")

	rootCmd.AddCommand(
		newSummaryCmd(flags),
		newOptionsCmd(flags),
		newExportCmd(flags),
		newReportCmd(flags),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSummaryCmd(flags *requestFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Run the pipeline and print the charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := runPipeline(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), report.Markdown(view))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	cmd.Flags().StringVar(&flags.status, "status", "", "drill into an employment status (explorer variant)")
	return cmd
}

func newOptionsCmd(flags *requestFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the option lists for the current criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())
			opts, err := c.Explorer.Options(cmd.Context(), flags.variant, flags.criteria)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), opts)
		},
	}
}

func newExportCmd(flags *requestFlags) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered rows as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := excel.NewExporter(format)
			if err != nil {
				return err
			}
			c, err := setup(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			res, err := c.Explorer.Filter(cmd.Context(), app.ExplorerRequest{Variant: flags.variant, Criteria: flags.criteria})
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w.Message)
			}
			body, err := exporter.Export(res.Rows)
			if err != nil {
				return err
			}
			if out == "" {
				out = "graduates." + exporter.Extension()
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", res.Rows.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func newReportCmd(flags *requestFlags) *cobra.Command {
	var asHTML bool
	var out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a Markdown or HTML report of the filtered view",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := runPipeline(cmd.Context(), flags)
			if err != nil {
				return err
			}
			body := []byte(report.Markdown(view))
			if asHTML {
				body = report.HTML(view.Variant.Title, string(body))
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			return os.WriteFile(out, body, 0o644)
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "render HTML instead of Markdown")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&flags.status, "status", "", "drill into an employment status (explorer variant)")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	genConfig := testkit.DefaultGraduatesConfig()
	var out string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic graduates CSV for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := testkit.NewGraduatesGenerator(genConfig).Generate()
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			w := csv.NewWriter(f)
			if err := w.Write(raw.Headers); err != nil {
				return err
			}
			if err := w.WriteAll(raw.Rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d strata to %s\n", len(raw.Rows), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "data/raw_graduates.csv", "output file")
	cmd.Flags().IntVar(&genConfig.StartYear, "from", genConfig.StartYear, "first year")
	cmd.Flags().IntVar(&genConfig.EndYear, "to", genConfig.EndYear, "last year")
	cmd.Flags().Int64Var(&genConfig.Seed, "seed", genConfig.Seed, "random seed")
	return cmd
}

// setup builds the container and loads the dataset
func setup(ctx context.Context, flags *requestFlags) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.file != "" {
		cfg.Data.Source = "file"
		cfg.Data.File = flags.file
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), "console")
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if _, err := c.Store.Load(ctx); err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	return c, nil
}

func runPipeline(ctx context.Context, flags *requestFlags) (*app.ExplorerView, error) {
	c, err := setup(ctx, flags)
	if err != nil {
		return nil, err
	}
	defer c.Shutdown(ctx)

	req := app.ExplorerRequest{Variant: flags.variant, Criteria: flags.criteria}
	if flags.status != "" {
		req.Event = &drilldown.Event{Kind: drilldown.EventClick, Category: flags.status}
	}
	return c.Explorer.Run(ctx, req)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
