package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"erdsketch/internal/db"
	_ "erdsketch/internal/db/extractors"
	"erdsketch/internal/errclass"
	"erdsketch/internal/graph"
	"erdsketch/internal/logger"
	"erdsketch/internal/sandbox"
	"erdsketch/internal/server"
	"erdsketch/internal/sqlgen"
	"erdsketch/internal/sqlschema"
	"erdsketch/pkg/config"
)

// cli holds the flag values shared by every command.
type cli struct {
	cfgPath  string
	envFiles []string
	logLevel string

	cfg config.AppConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "erdsketch",
		Short: "Turn SQL schemas into ER diagrams and back",
		Long: `erdsketch parses CREATE TABLE scripts or live databases into the
table nodes and foreign key edges of an ER diagram, and writes diagrams back
out as SQL.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.load,
	}
	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "path to config YAML (default: built-in defaults)")
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env", []string{".env"}, "dotenv files with ERD_* overrides")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(c.serveCmd(), c.importCmd(), c.exportCmd(), dialectsCmd())
	return root
}

// load reads the config file and environment, then applies the log level.
func (c *cli) load(cmd *cobra.Command, args []string) error {
	c.cfg = config.Default()
	if c.cfgPath != "" {
		cfg, err := config.LoadFile(c.cfgPath)
		if err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		c.cfg = cfg
	}
	if err := config.ApplyEnv(&c.cfg, c.envFiles...); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cmp.Or(c.logLevel, c.cfg.Log.Level))
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	return nil
}

func (c *cli) serveCmd() *cobra.Command {
	var (
		driver, dsn, web string
		port, timeout    int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor API and web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			cfg.Server.Port = cmp.Or(port, cfg.Server.Port, 8080)
			cfg.Server.Web = cmp.Or(web, cfg.Server.Web)

			// allow CLI overrides
			if driver != "" && dsn != "" {
				cfg.Database = config.DBConfig{Type: driver, DSN: dsn}
			}
			s := server.New(cfg)
			s.SetConnectTimeout(timeout)

			srv := s.HTTPServer()
			logger.Info("listening on %s, serving %s", srv.Addr, cfg.Server.Web)
			logger.Info("registered dialects: %v", db.RegisteredDialects())
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&driver, "driver", "", "db driver override (postgres,mysql,sqlite,sqlserver,godror)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "dsn override")
	cmd.Flags().IntVar(&port, "port", 0, "http port (overrides config)")
	cmd.Flags().IntVar(&timeout, "timeout", server.DefaultConnectTimeout, "db connect timeout seconds")
	cmd.Flags().StringVar(&web, "web", "", "web ui directory (overrides config)")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file|-]",
		Short: "Parse a SQL script and print the diagram as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return runImport(string(input), c.layout(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var verify, modifiers bool
	cmd := &cobra.Command{
		Use:   "export [file|-]",
		Short: "Read diagram JSON and print CREATE TABLE statements",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			opts := exportOptions{
				Verify:           verify || c.cfg.Export.Verify,
				IncludeModifiers: modifiers || c.cfg.Export.IncludeModifiers,
			}
			return runExport(cmd.Context(), input, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "run the generated SQL in an in-memory sqlite database")
	cmd.Flags().BoolVar(&modifiers, "modifiers", false, "also write UNIQUE, DEFAULT and AUTO_INCREMENT")
	return cmd
}

func dialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the database dialects available for live import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range db.RegisteredDialects() {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}

func (c *cli) layout() graph.Layout {
	return graph.Layout{XSpacing: c.cfg.Layout.XSpacing, YSpacing: c.cfg.Layout.YSpacing}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

// printReport writes a classified error the way the editor shows it.
func printReport(w io.Writer, r errclass.Report) {
	fmt.Fprintf(w, "%s: %s\n", r.Title, r.Message)
	if r.Details != "" {
		fmt.Fprintf(w, "\n%s\n", r.Details)
	}
	if len(r.Suggestions) > 0 {
		fmt.Fprintf(w, "\nSuggestions:\n%s\n", errclass.FormatSuggestions(r.Suggestions))
	}
}

func runImport(sqlText string, layout graph.Layout, out, errOut io.Writer) error {
	imp, err := sqlschema.Parse(sqlText)
	if err != nil {
		printReport(errOut, errclass.Classify(err, errclass.ImportContext))
		return err
	}
	for _, pe := range imp.ParseErrors {
		fmt.Fprintf(errOut, "skipped %v\n", pe)
	}
	for _, w := range imp.Warnings {
		fmt.Fprintf(errOut, "warning: %s\n", w)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(graph.Convert(imp.Schema, layout))
}

type exportOptions struct {
	Verify           bool
	IncludeModifiers bool
}

func runExport(ctx context.Context, input []byte, opts exportOptions, out, errOut io.Writer) error {
	var g graph.Graph
	if err := json.Unmarshal(input, &g); err != nil {
		err = fmt.Errorf("failed to parse diagram JSON: %w", err)
		printReport(errOut, errclass.Classify(err, errclass.ExportContext))
		return err
	}

	tables := g.Tables()
	text := sqlgen.GenerateWith(tables, sqlgen.Options{IncludeModifiers: opts.IncludeModifiers})
	if text == sqlgen.NoTables {
		fmt.Fprintln(errOut, text)
		return nil
	}
	fmt.Fprint(out, text)

	if !opts.Verify {
		return nil
	}
	report, err := sandbox.Check(ctx, text, tables)
	if err != nil {
		return err
	}
	if report.Error != "" {
		err := errors.New(report.Error)
		printReport(errOut, errclass.Classify(err, errclass.ExportContext))
		return err
	}
	if !report.OK {
		return fmt.Errorf("export verification failed, missing: %s", strings.Join(report.Missing, ", "))
	}
	fmt.Fprintf(errOut, "verified: %d table(s), %d foreign key(s)\n", report.Tables, report.ForeignKeys)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
