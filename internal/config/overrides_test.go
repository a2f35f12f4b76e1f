package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tatoeba/tatoprov/internal/model"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Parallel()

	o, err := EnvOverrides(envMap(map[string]string{
		EnvForceInstall: "true",
		EnvCreateMode:   " Generate ",
		EnvDBFile:       "/data/ngrams.db",
	}))
	require.NoError(t, err)
	require.True(t, *o.ForceInstall)
	require.Equal(t, "generate", *o.Mode)
	require.Equal(t, "/data/ngrams.db", *o.DBFile)
	require.Nil(t, o.DownloadURL)
}

func TestEnvOverridesRejectsBadBool(t *testing.T) {
	t.Parallel()

	_, err := EnvOverrides(envMap(map[string]string{EnvForceInstall: "sometimes"}))
	require.ErrorContains(t, err, EnvForceInstall)
}

func TestResolveExplicitOverridesWinOverEnv(t *testing.T) {
	t.Parallel()

	force := false
	url := "https://mirror.example.org/ngrams.db"
	cfg, err := Resolve("", envMap(map[string]string{
		EnvForceInstall: "1",
		EnvDownloadURL:  "https://env.example.org/ngrams.db",
	}), Overrides{ForceInstall: &force, DownloadURL: &url})
	require.NoError(t, err)

	require.False(t, cfg.Settings.ForceInstall)
	require.Equal(t, url, cfg.Data.DownloadURL)
	require.Equal(t, model.AcquireDownload, cfg.Data.Mode)
}

func TestResolveValidatesAfterOverrides(t *testing.T) {
	t.Parallel()

	mode := "generate"
	cfg, err := Resolve("", nil, Overrides{Mode: &mode})
	require.NoError(t, err)
	require.Equal(t, model.AcquireGenerate, cfg.Data.Mode)

	_, err = Resolve("", nil, Overrides{})
	require.Error(t, err, "download mode without a URL must fail")
}
