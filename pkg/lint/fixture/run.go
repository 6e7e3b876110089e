package fixture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run evaluates each corpus as a subtest per rule, and each case as a
// subtest of it.
func Run(t *testing.T, corpora ...*Corpus) {
	t.Helper()
	for _, corpus := range corpora {
		t.Run(corpus.Rule, func(t *testing.T) {
			for _, c := range corpus.Cases {
				t.Run(c.Name, func(t *testing.T) {
					res, err := Evaluate(context.Background(), c)
					require.NoError(t, err)
					if res.Passed {
						return
					}
					if c.FixStr != nil && res.Fixed != "" {
						assert.Equal(t, *c.FixStr, res.Fixed, "%s: %s", c.Location(), res.Reason)
						return
					}
					t.Errorf("%s: %s", c.Location(), res.Reason)
				})
			}
		})
	}
}

// RunDir loads every fixture file of dir and runs it.
func RunDir(t *testing.T, dir string) {
	t.Helper()
	corpora, err := LoadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, corpora, "no fixtures in %s", dir)
	Run(t, corpora...)
}
