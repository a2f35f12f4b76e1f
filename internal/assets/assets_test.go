package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	b, err := Load("")
	require.NoError(t, err)
	require.Contains(t, string(b.Unit), "ExecStart={{ .Binary }}")
	require.Contains(t, string(b.Config), `"port": {{ .Port }}`)
	require.Contains(t, string(b.Defaults), "TATODETECT_OPTS")
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(`{"port": {{ .Port }}}`), 0o644))

	b, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, `{"port": {{ .Port }}}`, string(b.Config))
	require.Contains(t, string(b.Unit), "[Service]", "files missing from the override keep the embedded copy")
}

func TestLoadOverrideUnreadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, UnitFile), 0o755))

	_, err := Load(dir)
	require.ErrorContains(t, err, "read template override")
}
