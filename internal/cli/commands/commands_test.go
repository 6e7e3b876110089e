package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/internal/cli/config"
)

// cmdRun is a command invocation under test.
type cmdRun struct {
	cfg    *config.Config
	stdin  string
	logger *slog.Logger
	build  BuildInfo
}

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func (c cmdRun) execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	cfg := c.cfg
	if cfg == nil {
		cfg = config.Default()
	}
	ctx := config.WithConfig(context.Background(), cfg)
	ctx = WithBuildInfo(ctx, c.build)
	if c.logger != nil {
		ctx = context.WithValue(ctx, config.LoggerKey(), c.logger)
	}

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(c.stdin))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewLintCommand(), "lint [paths...]", []string{"format", "watch"}},
		{NewFixCommand(), "fix [paths...]", []string{"format", "diff", "check"}},
		{NewParseCommand(), "parse <path|->", []string{"code-only"}},
		{NewRulesCommand(), "rules [rule-id]", []string{"group", "plugin", "verbose", "format"}},
		{NewFixturesCommand(), "fixtures <dir|file>...", []string{"format", "failed"}},
		{NewVersionCommand(BuildInfo{}), "version", nil},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"findings", findings("2 lint issues found"), ExitFindings},
		{"wrapped findings", errors.Join(errors.New("context"), findings("x")), ExitFindings},
		{"failure", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestReadIgnoreFile(t *testing.T) {
	patterns, err := readIgnoreFile("")
	assert.NoError(t, err)
	assert.Nil(t, patterns)

	path := t.TempDir() + "/.ignore"
	writeFile(t, path, "# build output\ntarget/\n\n  *.tmp.sql  \n")
	patterns, err = readIgnoreFile(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"target/", "*.tmp.sql"}, patterns)

	_, err = readIgnoreFile(path + ".missing")
	assert.ErrorContains(t, err, "failed to open ignore file")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
