package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAuditLog_Stdout(t *testing.T) {
	for _, p := range []string{"", "-"} {
		w, err := openAuditLog(p)
		require.NoError(t, err)
		assert.IsType(t, nopCloser{}, w)
		assert.NoError(t, w.Close())
	}
}

func TestOpenAuditLog_FileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	w, err := openAuditLog(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(b))
}

func TestOpenAuditLog_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "audit.log")

	w, err := openAuditLog(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
