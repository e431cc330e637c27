// Package cli implements the keyipc command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Continuity/internal/app"
	"github.com/turtacn/KeyIP-Continuity/internal/application/lookup"
	"github.com/turtacn/KeyIP-Continuity/internal/config"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// Output formats accepted by --output.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// Backend is what subcommands need from the wired application.  *app.App
// satisfies it.
type Backend interface {
	LookupService() lookup.Service
	Run(ctx context.Context) error
	Close()
}

// BackendFactory wires a Backend from the loaded configuration.
type BackendFactory func(cfg *config.Config, logger logging.Logger) (Backend, error)

func defaultBackend(cfg *config.Config, logger logging.Logger) (Backend, error) {
	return app.New(cfg, logger)
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Backend      Backend
	OutputFormat string
	Timeout      time.Duration
}

// NewRootCommand creates the root command wired against the registries.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(defaultBackend)
}

// NewRootCommandWith creates the root command using factory for wiring.
func NewRootCommandWith(factory BackendFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "keyipc",
		Short: "KeyIP-Continuity: patent, family and trial lookups against USPTO registries",
		Long: "keyipc resolves an application, patent or publication number to its normalized\n" +
			"record, reconstructs the continuity family, and lists related PTAB trial\n" +
			"proceedings and their documents.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", app.Version, app.GitCommit, app.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts, factory)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./keyipc.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json, table)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "overall operation timeout")

	cmd.AddCommand(
		newLookupCmd(),
		newSearchCmd(),
		newProceedingCmd(),
		newFamilyCmd(),
		newServeCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions, factory BackendFactory) error {
	switch opts.OutputFormat {
	case OutputText, OutputJSON, OutputTable:
	default:
		return errors.InvalidParam(fmt.Sprintf("unknown output format %q; expected text, json or table", opts.OutputFormat))
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := initConfig(cmd, opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Logs go to stderr so that stdout carries only results.
	cfg.Log.OutputPaths = []string{"stderr"}
	cfg.Log.Format = "console"
	logger, err := app.NewLogger(cfg.Log, opts.LogLevel)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	backend, err := factory(cfg, logger)
	if err != nil {
		return err
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Backend:      backend,
		OutputFormat: opts.OutputFormat,
		Timeout:      opts.Timeout,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./keyipc.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".keyipc", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/keyipc/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no config file found, using defaults and KEYIPC_* environment")
	return config.LoadFromEnv()
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.InvalidParam("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.InvalidParam("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute runs the root command and prints any error.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

//Personal.AI order the ending
