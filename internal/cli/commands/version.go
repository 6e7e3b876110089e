package commands

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/lint"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

type buildInfoKey struct{}

// WithBuildInfo returns a context carrying info. Cached lint results are
// keyed by it, so a new binary never reuses an old binary's verdicts.
func WithBuildInfo(ctx context.Context, info BuildInfo) context.Context {
	return context.WithValue(ctx, buildInfoKey{}, info)
}

// GetBuildInfo returns the build info stored in ctx, or the zero value.
func GetBuildInfo(ctx context.Context) BuildInfo {
	info, _ := ctx.Value(buildInfoKey{}).(BuildInfo)
	return info
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display fmlint version and build information, with the bundled dialects and rule plugins.`,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "fmlint v%s\n", info.Version)
			_, _ = fmt.Fprintf(w, "commit %s, built %s, %s\n", info.GitCommit, info.BuildDate, runtime.Version())
			_, _ = fmt.Fprintf(w, "dialects: %s\n", strings.Join(dialect.List(), ", "))
			for _, p := range lint.Plugins() {
				_, _ = fmt.Fprintf(w, "plugin %s: %d rules\n", p.Name(), len(p.Rules()))
			}
		},
	}
}
