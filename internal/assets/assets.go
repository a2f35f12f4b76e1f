// Package assets embeds the templates deployed with the daemon.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Template file names, both embedded and in an override directory.
const (
	UnitFile     = "tatodetect.service.tmpl"
	ConfigFile   = "config.js.tmpl"
	DefaultsFile = "tatodetect.default.tmpl"
)

//go:embed files/*.tmpl
var embedded embed.FS

// Bundle holds the raw templates for one run.
type Bundle struct {
	Unit     []byte
	Config   []byte
	Defaults []byte
}

// Load returns the embedded templates. When overrideDir is set, any of the
// three files present there replaces its embedded counterpart.
func Load(overrideDir string) (Bundle, error) {
	base, err := fs.Sub(embedded, "files")
	if err != nil {
		return Bundle{}, err
	}
	var override fs.FS
	if overrideDir != "" {
		override = os.DirFS(overrideDir)
	}

	var b Bundle
	for name, dst := range map[string]*[]byte{
		UnitFile:     &b.Unit,
		ConfigFile:   &b.Config,
		DefaultsFile: &b.Defaults,
	} {
		data, err := read(base, override, name)
		if err != nil {
			return Bundle{}, err
		}
		*dst = data
	}
	return b, nil
}

func read(base, override fs.FS, name string) ([]byte, error) {
	if override != nil {
		data, err := fs.ReadFile(override, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template override %s: %w", name, err)
		}
	}
	data, err := fs.ReadFile(base, name)
	if err != nil {
		return nil, fmt.Errorf("read embedded template %s: %w", name, err)
	}
	return data, nil
}
