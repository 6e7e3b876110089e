package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/internal/cli/commands"
	"github.com/customfm/fmlint/internal/cli/config"
	"github.com/customfm/fmlint/internal/testutil"
)

func execRoot(t *testing.T, dir string, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(dir)
	config.ResetConfig()

	root := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	code := run(context.Background(), root, args)
	return code, out.String(), errOut.String()
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"lint", "fix", "parse", "rules", "fixtures", "version", "completion"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	for _, flag := range []string{"config", "dialect", "rules", "exclude-rules", "processes", "output", "verbose", "plugin", "cache", "cache-path"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{
			name:     "clean",
			files:    map[string]string{"q.sql": "select *\n\nfrom a\n"},
			args:     []string{"lint", "q.sql"},
			wantCode: commands.ExitOK,
		},
		{
			name:     "findings",
			files:    map[string]string{"q.sql": "select *\nfrom a\n"},
			args:     []string{"lint", "q.sql"},
			wantCode: commands.ExitFindings,
		},
		{
			name:     "config from .sqlfluff",
			files:    map[string]string{"q.sql": "select *\nfrom a\n", ".sqlfluff": "[sqlfluff]\nexclude_rules = CustomFM_L001\n"},
			args:     []string{"lint", "q.sql"},
			wantCode: commands.ExitOK,
		},
		{
			name:       "unknown dialect flag",
			files:      map[string]string{"q.sql": "select *\nfrom a\n"},
			args:       []string{"--dialect", "oracle", "lint", "q.sql"},
			wantCode:   commands.ExitError,
			wantStderr: "error: ",
		},
		{
			name:       "missing plugin",
			files:      map[string]string{"q.sql": "select 1\n"},
			args:       []string{"--plugin", "nope.star", "lint", "q.sql"},
			wantCode:   commands.ExitError,
			wantStderr: "failed to load plugins",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.WriteFiles(t, dir, tt.files)

			code, _, stderr := execRoot(t, dir, append([]string{"--output", "json"}, tt.args...)...)
			assert.Equal(t, tt.wantCode, code, stderr)
			if tt.wantStderr != "" {
				assert.Contains(t, stderr, tt.wantStderr)
			}
		})
	}
}

func TestRun_Plugin(t *testing.T) {
	dir := t.TempDir()
	plugin := `
def check_limit(ctx):
    return [violation(ctx.segment, "LIMIT is not allowed")]

rule(
    id = "Team_L001",
    name = "no_limit",
    description = "Disallow LIMIT.",
    crawl = ["limit_clause"],
    eval = check_limit,
)
`
	testutil.WriteFiles(t, dir, map[string]string{
		"rules/team.star": plugin,
		"q.sql":           "select *\n\nfrom a\n\nlimit 1\n",
	})

	code, stdout, stderr := execRoot(t, dir, "--plugin", filepath.Join("rules", "team.star"), "--rules", "Team_L001", "lint", "--format", "json", "q.sql")
	assert.Equal(t, commands.ExitFindings, code, stderr)
	assert.Contains(t, stdout, `"Team_L001"`)
}

func TestRun_Completion(t *testing.T) {
	code, stdout, _ := execRoot(t, t.TempDir(), "completion", "bash")
	assert.Equal(t, commands.ExitOK, code)
	assert.Contains(t, stdout, "fmlint")
}

func TestMain(m *testing.M) {
	code := m.Run()
	config.ResetConfig()
	os.Exit(code)
}
