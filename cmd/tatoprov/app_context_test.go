package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tatoeba/tatoprov/internal/config"
	"github.com/tatoeba/tatoprov/internal/logger"
)

func TestCollaboratorsPatchWithConfiguredOptions(t *testing.T) {
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	descriptor := filepath.Join(dir, "CMakeLists.txt")
	require.NoError(t, os.WriteFile(descriptor, []byte("project(cppcms)\r\nenable_testing()\r\n"), 0o644))

	cfg := config.Default()
	cfg.Framework.PatchCommentPrefix = "//"
	cfg.Framework.PatchBackup = true
	cfg.Framework.PatchBackupDir = backups

	app := &AppContext{Config: cfg, Log: logger.Nop()}
	collab, err := app.collaborators()
	require.NoError(t, err)

	changed, err := collab.Patcher.CommentOut(context.Background(), descriptor, cfg.Framework.PatchLine)
	require.NoError(t, err)
	require.True(t, changed)

	data, err := os.ReadFile(descriptor)
	require.NoError(t, err)
	require.Equal(t, "project(cppcms)\r\n//enable_testing()\r\n", string(data))

	entries, err := os.ReadDir(backups)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCollaboratorsRejectUnknownPatchEncoding(t *testing.T) {
	cfg := config.Default()
	cfg.Framework.PatchEncoding = "ebcdic"

	_, err := (&AppContext{Config: cfg, Log: logger.Nop()}).collaborators()
	require.ErrorContains(t, err, "cppcms patch settings")
}
