package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchbot/benchbot/internal/model"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0644))
}

func mkdirs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0755))
	}
}

func TestLoad(t *testing.T) {
	t.Run("expands glob members sorted", func(t *testing.T) {
		dir := t.TempDir()
		mkdirs(t, dir, "hello-world/go_std", "hello-world/axum", "json/serde")
		writeManifest(t, dir, "members:\n  - hello-world/*\n  - json/serde\n")

		targets, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, targets, 3)

		assert.Equal(t, "hello-world/axum", targets[0].Key())
		assert.Equal(t, "hello-world/go_std", targets[1].Key())
		assert.Equal(t, "json/serde", targets[2].Key())
		assert.Equal(t, filepath.Join(dir, "hello-world", "axum"), targets[0].Dir)
	})

	t.Run("assigns toolchain tags", func(t *testing.T) {
		dir := t.TempDir()
		mkdirs(t, dir, "hello-world/go_nethttp", "hello-world/actix")
		writeManifest(t, dir, "members:\n  - hello-world/*\n")

		targets, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, targets, 2)

		assert.Equal(t, model.TagCargo, targets[0].Toolchain) // actix
		assert.Equal(t, model.TagGo, targets[1].Toolchain)    // go_nethttp
	})

	t.Run("glob skips plain files", func(t *testing.T) {
		dir := t.TempDir()
		mkdirs(t, dir, "hello-world/axum")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "hello-world", "README.md"), []byte("x"), 0644))
		writeManifest(t, dir, "members:\n  - hello-world/*\n")

		targets, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.Equal(t, "axum", targets[0].Name)
	})

	t.Run("missing manifest is fatal", func(t *testing.T) {
		_, err := Load(t.TempDir())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "manifest")
	})

	t.Run("malformed manifest is fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "members: {not a list")
		_, err := Load(dir)
		assert.Error(t, err)
	})

	t.Run("glob over missing directory is fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "members:\n  - nowhere/*\n")
		_, err := Load(dir)
		assert.Error(t, err)
	})
}
