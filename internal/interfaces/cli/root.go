// Package cli implements the clausewise command line. Every command runs the
// analysis in-process; remote collaborators are used only with --remote.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/ClauseWise/internal/application/analysis"
	"github.com/turtacn/ClauseWise/internal/config"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/ingestion"
	"github.com/turtacn/ClauseWise/internal/intelligence/remote"
	"github.com/turtacn/ClauseWise/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	RulesPath    string
	Remote       bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Engine       *analysis.Engine
	Analyzer     analysis.Service
	Extractor    *ingestion.Extractor
	OutputFormat string
	Timeout      time.Duration
}

// NewRootCommand creates the root command with its global flags and every
// subcommand attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "clausewise",
		Short: "ClauseWise: legal document analysis",
		Long: "ClauseWise segments legal documents into clauses, classifies them,\n" +
			"rewrites legal language in plain English and extracts key entities.\n" +
			"Analysis runs locally unless --remote is given.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./clausewise.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json, table)")
	pf.StringVar(&opts.RulesPath, "rules", "", "YAML rule tables overriding the built-in rules")
	pf.BoolVar(&opts.Remote, "remote", false, "use the configured remote collaborator")
	pf.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "overall operation timeout")

	cmd.AddCommand(
		newAnalyzeCmd(),
		newSegmentCmd(),
		newClassifyCmd(),
		newSimplifyCmd(),
		newEntitiesCmd(),
		newSummarizeCmd(),
		newStatsCmd(),
		newClausesCmd(),
		newRulesCmd(),
		newVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case OutputText, OutputJSON, OutputTable:
	default:
		return errors.InvalidParam(fmt.Sprintf("unknown output format %q", opts.OutputFormat))
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	engine, err := analysis.BuildEngine(cfg.Analysis.RulesPath, cfg.Analysis.SummarySentences)
	if err != nil {
		return err
	}
	collaborator, err := remote.New(cfg.Remote, &http.Client{}, logger, nil)
	if err != nil {
		return err
	}

	cliCtx := &CLIContext{
		Config: cfg,
		Logger: logger,
		Engine: engine,
		Analyzer: analysis.NewService(engine, collaborator, logger, nil, analysis.Config{
			MaxClauseLength:       cfg.Analysis.MaxClauseLength,
			ClauseLimit:           cfg.Analysis.ClauseLimit,
			ExtractionClauseLimit: cfg.Analysis.ExtractionClauseLimit,
			BatchConcurrency:      cfg.Analysis.BatchConcurrency,
		}),
		Extractor:    ingestion.New(0, logger),
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Timeout:      opts.Timeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads --config, else the first config file found on the search
// path, else defaults plus environment. Flags win over all of them.
func initConfig(opts *RootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	path := opts.ConfigPath
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	if opts.RulesPath != "" {
		cfg.Analysis.RulesPath = opts.RulesPath
	}
	cfg.Remote.Enabled = opts.Remote
	if opts.Remote {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func findConfigFile() string {
	searchPaths := []string{"./clausewise.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".clausewise", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/clausewise/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// initLogger writes console logs to stderr so stdout carries only results.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:            opts.LogLevel,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLI context not initialized")
	}
	return cliCtx, nil
}

// Execute runs the CLI with os.Args.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

//Personal.AI order the ending
