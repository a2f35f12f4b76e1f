package archiveplugin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tatoeba/tatoprov/internal/logger"
	"github.com/tatoeba/tatoprov/internal/ports"
)

const defaultTimeout = 30 * time.Minute

// Fetcher downloads release archives and unpacks them.
type Fetcher struct {
	client *http.Client
	log    ports.Logger
}

var _ ports.ArchiveFetcher = (*Fetcher)(nil)

// New creates a Fetcher. A nil client gets a default with a generous timeout.
func New(client *http.Client, log ports.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Fetcher{client: client, log: log}
}

// Download stores url at dest. The file is written next to dest and renamed
// into place so an interrupted transfer never leaves a partial archive.
func (f *Fetcher) Download(ctx context.Context, url, dest string) error {
	tmp, n, err := f.fetchToTemp(ctx, url, filepath.Dir(dest), nil)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	f.log.Info(ctx, "archive downloaded", "url", url, "path", dest, "bytes", n)
	return nil
}

// fetchToTemp streams url into a temporary file inside dir. wrap, when set,
// decodes the body before it is written.
func (f *Fetcher) fetchToTemp(ctx context.Context, url, dir string, wrap func(io.Reader) (io.ReadCloser, error)) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("invalid download url %q: %w", url, err)
	}
	req.Header.Set("User-Agent", "tatoprov")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", 0, fmt.Errorf("failed to download %s: %s: %s", url, resp.Status, body)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create download directory: %w", err)
	}
	out, err := os.CreateTemp(dir, ".tatoprov-download-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := out.Name()

	var body io.Reader = resp.Body
	if wrap != nil {
		rc, err := wrap(resp.Body)
		if err != nil {
			out.Close()
			_ = os.Remove(tmp)
			return "", 0, fmt.Errorf("failed to decode %s: %w", url, err)
		}
		defer rc.Close()
		body = rc
	}

	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", 0, fmt.Errorf("failed to write %s: %w", url, err)
	}
	return tmp, n, nil
}
