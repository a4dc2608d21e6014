package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfiorini/relhand/internal/build"
	"github.com/mfiorini/relhand/internal/config"
	"github.com/mfiorini/relhand/internal/git"
	"github.com/mfiorini/relhand/internal/logx"
	"github.com/mfiorini/relhand/internal/output"
	"github.com/mfiorini/relhand/internal/prompt"
	"github.com/mfiorini/relhand/internal/reconcile"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui     *output.UI
	loaded *config.Loaded
	runner *reconcile.Runner
	gitCLI *git.CLI

	verbose   bool
	assumeYes bool
)

var rootCmd = &cobra.Command{
	Use:   "relhand",
	Short: "Release handler - keep multi-repo release state in sync",
	Long: `relhand drives releases across a fleet of git repositories.
It rewrites version descriptors, creates and pushes release tags, and
converges every configured project onto the state the release expects.
Re-running a command repeats only the steps that are still missing.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	logx.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer every confirmation with yes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./relhand.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("relhand")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RELHAND")
	viper.AutomaticEnv()

	viper.SetDefault("log_file", "release-handler.log")
	viper.SetDefault("command_timeout", "10m")

	// Read config file if it exists; commands that need one get a clear
	// error from config.Load.
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}

// rootRun handles `relhand` with no subcommand: show usage and fail, the
// only case that exits non-zero.
func rootRun(cmd *cobra.Command) error {
	_ = cmd.Help()
	return fmt.Errorf("a subcommand is required")
}

// getRunner loads the configuration and wires the workflow runner on
// first use, so help and version never require a config file.
func getRunner() (*reconcile.Runner, error) {
	if runner != nil {
		return runner, nil
	}

	l, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	loaded = l

	if err := logx.Init(l.Raw.LogFile, newRunID()); err != nil {
		return nil, err
	}

	gitCLI = git.NewCLI(l.Raw.CommandTimeout)
	builder := build.NewRunner(l.Raw, &build.CommandExecutor{Timeout: l.Raw.CommandTimeout})

	var confirm prompt.Confirmer = prompt.NewTerminal()
	if assumeYes {
		confirm = prompt.AssumeYes{}
	}

	runner = reconcile.NewRunner(l, gitCLI, gitCLI, builder, confirm, ui, logx.Get())
	return runner, nil
}

// getLoaded returns the configuration, loading it through getRunner so
// every command shares one runner and one log file.
func getLoaded() (*config.Loaded, error) {
	if _, err := getRunner(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// newRunID generates the ULID correlating one invocation's log lines.
func newRunID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// runWorkflow is the shared shape of every release subcommand: resolve
// the runner, apply the optional project filter, render the summary.
// Per-project failures are reported in the summary and still exit zero.
func runWorkflow(args []string, fn func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary) error {
	r, err := getRunner()
	if err != nil {
		return err
	}
	only := ""
	if len(args) == 1 {
		only = args[0]
	}
	sum := fn(context.Background(), r, only)
	r.Report(sum)
	return nil
}
