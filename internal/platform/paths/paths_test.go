package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWorkDir(t *testing.T) {
	t.Setenv("MX_WORKDIR", "")
	assert.Equal(t, DefaultWorkDir, ResolveWorkDir(""))

	t.Setenv("MX_WORKDIR", "/srv/backups")
	assert.Equal(t, "/srv/backups", ResolveWorkDir(""))
	assert.Equal(t, "/tmp/x", ResolveWorkDir("/tmp/x"))
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("MX_CONFIG", "/etc/mxtools.yaml")
	assert.Equal(t, "/etc/mxtools.yaml", ResolveConfigPath(""))
	assert.Equal(t, "custom.yaml", ResolveConfigPath("custom.yaml"))
}

func TestSafeJoin(t *testing.T) {
	base := t.TempDir()

	cases := []struct {
		name     string
		elements []string
		valid    bool
	}{
		{"normal", []string{"10-0-0-1_240101-1200.cfg"}, true},
		{"nested", []string{"site", "cam.cfg"}, true},
		{"parent", []string{"..", "other"}, false},
		{"nested_parent", []string{"site", "..", "..", "secrets"}, false},
		{"absolute", []string{"/etc/passwd"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := SafeJoin(base, tc.elements...)
			if tc.valid {
				assert.NoError(t, err)
				assert.Contains(t, res, base)
			} else {
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), "traversal")
				}
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWritable(t *testing.T) {
	dir := t.TempDir()

	fresh := filepath.Join(dir, "new.cfg")
	require.NoError(t, Writable(fresh))
	assert.NoFileExists(t, fresh)

	existing := filepath.Join(dir, "old.cfg")
	require.NoError(t, os.WriteFile(existing, []byte("keep"), 0o600))
	require.NoError(t, Writable(existing))
	b, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(b))

	assert.Error(t, Writable(filepath.Join(dir, "missing", "x.cfg")))
}
