// Package cli provides the command-line interface for fmlint.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/customfm/fmlint/internal/cli/commands"
	"github.com/customfm/fmlint/internal/cli/config"
	"github.com/customfm/fmlint/internal/cli/output"
	"github.com/customfm/fmlint/internal/starlark"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	info := commands.BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
	}

	rootCmd := &cobra.Command{
		Use:   "fmlint",
		Short: "fmlint - SQL layout linter",
		Long: `fmlint lints SQL files against the customfm layout conventions: blank
lines before clauses, join conditions, CASE blocks and window keywords on
their own lines, and a final select * after the CTEs of a WITH query.

Configuration is read from .sqlfluff, pyproject.toml [tool.sqlfluff] and
.fmlint.yaml, then FMLINT_* environment variables, then flags. Extra rules
can be written in Starlark and loaded with --plugin.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			ctx = commands.WithBuildInfo(ctx, info)
			cmd.SetContext(ctx)

			for _, f := range config.GetConfigFilesUsed() {
				logger.Debug("using config file", "path", f)
			}

			if len(cfg.Plugins) > 0 {
				plugins, err := starlark.NewLoader(logger).LoadAndRegister(cfg.Plugins...)
				if err != nil {
					return fmt.Errorf("failed to load plugins: %w", err)
				}
				for _, p := range plugins {
					logger.Debug("loaded plugin", "name", p.Name(), "rules", len(p.Rules()))
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .sqlfluff, pyproject.toml and .fmlint.yaml in the project root)")
	pf.String("dialect", "", "SQL dialect (ansi|duckdb|postgres)")
	pf.String("templater", "", "Templater; only raw is supported")
	pf.StringSlice("rules", nil, "Rules, groups or aliases to run (default: all)")
	pf.StringSlice("exclude-rules", nil, "Rules, groups or aliases to skip")
	pf.String("ignore-file", "", "Extra gitignore-style file of paths to skip")
	pf.IntP("processes", "p", 0, "Files linted in parallel (default: number of CPUs)")
	pf.Int("runaway-limit", 0, "Maximum fix passes per file")
	pf.StringP("output", "o", "", "Output format (auto|text|markdown|json|github)")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.StringSlice("plugin", nil, "Starlark rule file to load (repeatable)")
	pf.Bool("cache", false, "Cache lint results between runs")
	pf.String("cache-path", "", "Cache database path (default: per-user cache directory)")

	// Register completion for enumerated flags
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"ansi", "duckdb", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewLintCommand())
	rootCmd.AddCommand(commands.NewFixCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewFixturesCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(info))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, NewRootCmd(), os.Args[1:])
}

func run(ctx context.Context, rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	code := commands.ExitCode(err)
	// Findings were already rendered; only failures need a message.
	if code == commands.ExitError {
		r := output.NewRenderer(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), output.ModeAuto)
		r.Error(err.Error())
	}
	return code
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for fmlint.

To load completions:

Bash:
  $ source <(fmlint completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ fmlint completion bash > /etc/bash_completion.d/fmlint
  # macOS:
  $ fmlint completion bash > $(brew --prefix)/etc/bash_completion.d/fmlint

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ fmlint completion zsh > "${fpath[1]}/_fmlint"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ fmlint completion fish | source

  # To load completions for each session, execute once:
  $ fmlint completion fish > ~/.config/fish/completions/fmlint.fish

PowerShell:
  PS> fmlint completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> fmlint completion powershell > fmlint.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(w)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
	return cmd
}
