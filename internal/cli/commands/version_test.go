package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		info    BuildInfo
		wantOut []string
	}{
		{
			name:    "release",
			info:    BuildInfo{Version: "0.1.0", GitCommit: "abc123", BuildDate: "2026-10-01"},
			wantOut: []string{"fmlint v0.1.0", "commit abc123, built 2026-10-01"},
		},
		{
			name:    "dev version",
			info:    BuildInfo{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"},
			wantOut: []string{"fmlint vdev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := cmdRun{}.execute(t, NewVersionCommand(tt.info))
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, stdout, want)
			}
			assert.Contains(t, stdout, "dialects: ansi, duckdb, postgres")
			assert.Contains(t, stdout, "plugin customfm: 5 rules")
		})
	}
}
