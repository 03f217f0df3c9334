package dirs

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigAndCacheFollowXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG variables are only honoured on linux")
	}
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))

	dir, err := Config()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "config", AppName), dir)

	dir, err = Cache()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "cache", AppName), dir)
}

func TestConfigNotFound(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("relies on linux lookup rules")
	}
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")

	_, err := Config()
	assert.Error(t, err)
}
