package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/internal/cli/config"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		contains   []string
		notContain []string
	}{
		{
			name:     "full tree",
			args:     []string{"-"},
			contains: []string{"select_statement:", "from_clause:", `"select"`, "whitespace:", "newline:"},
		},
		{
			name:       "code only",
			args:       []string{"--code-only", "-"},
			contains:   []string{"select_statement:", "wildcard_expression:", `"foo"`},
			notContain: []string{"whitespace:", "newline:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := cmdRun{stdin: "select *\nfrom foo\n"}.execute(t, NewParseCommand(), tt.args...)
			require.NoError(t, err)
			assert.Contains(t, stdout, "[L:  1, P:  1]")
			for _, want := range tt.contains {
				assert.Contains(t, stdout, want)
			}
			for _, unwanted := range tt.notContain {
				assert.NotContains(t, stdout, unwanted)
			}
		})
	}
}

func TestParseCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.sql")
	writeFile(t, path, "select a from b where c = 1")
	cfg := config.Default()
	cfg.Dialect = "duckdb"

	stdout, _, err := cmdRun{cfg: cfg}.execute(t, NewParseCommand(), path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "where_clause:")
}

func TestParseCommand_Errors(t *testing.T) {
	_, _, err := cmdRun{stdin: "select * from ("}.execute(t, NewParseCommand(), "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-: ")
	assert.Equal(t, ExitError, ExitCode(err))

	_, _, err = cmdRun{}.execute(t, NewParseCommand())
	assert.Error(t, err, "a path is required")

	_, _, err = cmdRun{}.execute(t, NewParseCommand(), filepath.Join(t.TempDir(), "missing.sql"))
	assert.ErrorContains(t, err, "failed to read")
}
