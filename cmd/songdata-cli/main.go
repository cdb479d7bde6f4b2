package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tiger/songdata-validator/internal/config"
	"github.com/tiger/songdata-validator/internal/logging"
	"github.com/tiger/songdata-validator/internal/tooling/validation"
)

var version = "dev"

var errDiagnostics = errors.New("songdata validation reported diagnostics")

type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	dataPath   string
	format     string
	reportPath string
	verbose    bool

	cfg         *config.Config
	logger      *zap.Logger
	buildLogger func(level string, verbose bool) (*zap.Logger, error)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	return newCLI(stdout, stderr).execute(args)
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr, buildLogger: logging.New}
}

func (c *cli) execute(args []string) int {
	root := c.rootCmd()
	root.SetArgs(args)
	err := root.Execute()
	// Post-run hooks are skipped when RunE fails, so flush here.
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	stderr := c.stderr
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errDiagnostics):
		return 1
	}
	var uerr usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(stderr, "songdata-cli: %v\n", err)
		fmt.Fprintln(stderr, "run 'songdata-cli --help' for usage")
		return 2
	}
	fmt.Fprintf(stderr, "songdata validation failed to execute: %v\n", err)
	return 1
}

func (c *cli) rootCmd() *cobra.Command {
	stdout, stderr := c.stdout, c.stderr

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate songdata.json",
		Long: `Validates the song catalog in phases: document (ascii, JSON, shape),
records (fields, types, vocabularies, search keys, duplicates), ordering
(canonical keys, ties), sequence (dense song and chart ids) and titles
(altTitle first-occurrence rule). The first phase with diagnostics halts
the run.`,
		Args:    noArgs,
		PreRunE: c.setup,
		RunE:    c.validate,
	}
	c.bindValidateFlags(validateCmd)

	root := &cobra.Command{
		Use:           "songdata-cli",
		Short:         "Validator for the rhythm game song catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		PreRunE:       c.setup,
		RunE:          c.validate,
	}
	c.bindValidateFlags(root)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err: err}
	})

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the document-shape JSON schema",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := stdout.Write(validation.DocumentSchema())
			return err
		},
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the songdata-cli version",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(stdout, "songdata-cli %s\n", version)
			return nil
		},
	}

	root.AddCommand(validateCmd, schemaCmd, versionCmd)
	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err: err}
	}
	return nil
}

func (c *cli) bindValidateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.configPath, "config", "", "YAML config file (default "+config.DefaultPath+" when present)")
	flags.StringVarP(&c.dataPath, "file", "f", "", "songdata file to validate (default "+validation.DefaultDataPath+")")
	flags.StringVar(&c.format, "format", "", "stdout report format: text|json")
	flags.StringVar(&c.reportPath, "report", "", "also write the JSON report to this path")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
}

// setup resolves config and builds the logger before validation runs.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadOptional(config.DefaultPath)
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.DataPath = c.dataPath
	}
	if flags.Changed("format") {
		cfg.ReportFormat = config.ReportFormat(c.format)
	}
	if flags.Changed("report") {
		cfg.ReportPath = c.reportPath
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err: err}
	}
	c.cfg = cfg

	logger, err := c.buildLogger(cfg.LogLevel, c.verbose)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func (c *cli) validate(cmd *cobra.Command, args []string) error {
	report, err := validation.ValidateFile(c.cfg.DataPath, validation.Options{Logger: c.logger})
	if err != nil {
		return err
	}

	switch c.cfg.ReportFormat {
	case config.FormatJSON:
		out, err := validation.RenderJSON(report)
		if err != nil {
			return err
		}
		if _, err := c.stdout.Write(out); err != nil {
			return err
		}
	default:
		fmt.Fprintln(c.stdout, validation.RenderText(report))
	}

	if c.cfg.ReportPath != "" {
		if err := writeReport(c.cfg.ReportPath, report); err != nil {
			return err
		}
		c.logger.Info("report written", zap.String("path", c.cfg.ReportPath))
	}

	if !report.OK {
		return errDiagnostics
	}
	return nil
}

func writeReport(outputPath string, report validation.Report) error {
	out, err := validation.RenderJSON(report)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", outputPath, err)
	}
	return nil
}
