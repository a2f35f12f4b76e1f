package archiveplugin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tatoeba/tatoprov/internal/ports"
)

// DataDownloader installs a single file from a URL, decoding it when the URL
// names a compressed artifact, and leaves an identical file untouched.
type DataDownloader struct {
	fetcher *Fetcher
}

var _ ports.DataDownloader = (*DataDownloader)(nil)

// NewDataDownloader reuses f's HTTP client and logger.
func NewDataDownloader(f *Fetcher) *DataDownloader {
	return &DataDownloader{fetcher: f}
}

// Fetch implements ports.DataDownloader.
func (d *DataDownloader) Fetch(ctx context.Context, url, dest string, mode os.FileMode) (bool, error) {
	var wrap func(io.Reader) (io.ReadCloser, error)
	if kind := FromName(url); kind != CompressionNone {
		wrap = func(r io.Reader) (io.ReadCloser, error) { return NewReader(r, kind) }
	}

	tmp, _, err := d.fetcher.fetchToTemp(ctx, url, filepath.Dir(dest), wrap)
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp)

	same, err := sameContent(tmp, dest, mode)
	if err != nil {
		return false, err
	}
	if same {
		d.fetcher.log.Debug(ctx, "data file unchanged", "path", dest)
		return false, nil
	}

	if err := os.Chmod(tmp, mode); err != nil {
		return false, fmt.Errorf("failed to set mode on %s: %w", dest, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return false, fmt.Errorf("failed to move data file into place: %w", err)
	}
	d.fetcher.log.Info(ctx, "data file updated", "url", url, "path", dest)
	return true, nil
}

func sameContent(candidate, dest string, mode os.FileMode) (bool, error) {
	info, err := os.Stat(dest)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.Mode().Perm() != mode.Perm() {
		return false, nil
	}
	want, err := HashFile(candidate)
	if err != nil {
		return false, err
	}
	have, err := HashFile(dest)
	if err != nil {
		return false, err
	}
	return want == have, nil
}

// HashFile returns the hex SHA-256 of path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
