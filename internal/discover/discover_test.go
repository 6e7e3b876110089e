package discover

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customfm/fmlint/internal/testutil"
)

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"a.sql":                      "select 1",
		"B.SQL":                      "select 1",
		"notes.md":                   "# notes",
		"models/stg/orders.sql":      "select 1",
		"models/stg/tmp_orders.sql":  "select 1",
		"models/.sqlfluffignore":     "tmp_*.sql\n# comment\n",
		"target/compiled.sql":        "select 1",
		"vendor/lib.sql":             "select 1",
		".fmlintignore":              "target/\n",
		".git/hooks/x.sql":           "select 1",
		"models/marts/revenue.sql":   "select 1",
		"models/marts/.fmlintignore": "revenue.sql\n",
	})

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "ignore files apply below their directory",
			want: []string{"B.SQL", "a.sql", "models/stg/orders.sql", "vendor/lib.sql"},
		},
		{
			name: "extra patterns",
			opts: Options{IgnorePatterns: []string{"vendor"}},
			want: []string{"B.SQL", "a.sql", "models/stg/orders.sql"},
		},
		{
			name: "extensions",
			opts: Options{Extensions: []string{".md"}},
			want: []string{"notes.md"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = testutil.NewTestLogger(t)
			got, err := Files([]string{root}, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel(t, root, got))
		})
	}
}

func TestFiles_ExplicitPaths(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"q.sql":         "select 1",
		"q.txt":         "select 1",
		"sub/r.sql":     "select 1",
		".fmlintignore": "q.sql\n",
	})

	got, err := Files([]string{
		filepath.Join(root, "q.txt"),
		filepath.Join(root, "q.sql"),
		filepath.Join(root, "sub"),
		filepath.Join(root, "sub", "r.sql"),
		"-",
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"-", filepath.Join(root, "q.sql"), filepath.Join(root, "q.txt"), filepath.Join(root, "sub", "r.sql")}, got)
}

func TestFiles_Missing(t *testing.T) {
	_, err := Files([]string{filepath.Join(t.TempDir(), "nope")}, Options{})
	assert.ErrorContains(t, err, "discover")
}

func TestMatcher(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{".sqlfluffignore": "build/\n*.tmp.sql\n!keep.tmp.sql\n"})
	ms, err := loadIgnoreFiles(root)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	m := ms[0]

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{path: "build", isDir: true, want: true},
		{path: "build", isDir: false, want: false},
		{path: "x.tmp.sql", want: true},
		{path: "deep/y.tmp.sql", want: true},
		{path: "keep.tmp.sql", want: false},
		{path: "x.sql", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.matches(filepath.Join(root, tt.path), tt.isDir))
		})
	}

	assert.False(t, m.matches(filepath.Join(filepath.Dir(root), "x.tmp.sql"), false), "outside the directory")
}
