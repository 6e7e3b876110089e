// Package commands implements the fmlint subcommands.
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/customfm/fmlint/internal/cli/config"
	"github.com/customfm/fmlint/internal/cli/output"
)

// Exit codes returned by the CLI.
const (
	ExitOK       = 0
	ExitFindings = 1
	ExitError    = 2
)

// StdinPath is the path argument that reads SQL from standard input.
const StdinPath = "-"

// ExitCodeError ends a command with a specific exit code. Commands return it
// for outcomes that are not failures of the tool itself, such as lint
// violations.
type ExitCodeError struct {
	Code int
	Msg  string
}

func (e *ExitCodeError) Error() string { return e.Msg }

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitCodeError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitError
}

func findings(format string, args ...any) error {
	return &ExitCodeError{Code: ExitFindings, Msg: fmt.Sprintf(format, args...)}
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the context of a command from the loaded config.
// A non-empty format overrides the configured output mode.
func NewCommandContext(cmd *cobra.Command, format string) *CommandContext {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	mode := output.ParseMode(cfg.OutputFormat)
	if format != "" {
		mode = output.ParseMode(format)
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}
}

// readSource returns the content of path, reading stdin for StdinPath.
func readSource(stdin io.Reader, path string) (string, error) {
	if path == StdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// readIgnoreFile returns the patterns of a gitignore-style file, skipping
// blank lines and comments.
func readIgnoreFile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore file: %w", err)
	}
	return patterns, nil
}
