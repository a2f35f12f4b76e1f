package archiveplugin

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks a tar archive, compressed with any supported codec, into
// dir and returns the archive's top-level directory.
func (f *Fetcher) Extract(ctx context.Context, archive, dir string) (string, error) {
	file, err := os.Open(archive)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	stream, err := Decompress(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", archive, err)
	}
	defer stream.Close()

	top, err := extractTar(ctx, stream, dir)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", archive, err)
	}
	if top == "" {
		return "", fmt.Errorf("archive %s is empty", archive)
	}
	f.log.Debug(ctx, "archive extracted", "archive", archive, "root", top)
	return filepath.Join(dir, top), nil
}

func extractTar(ctx context.Context, r io.Reader, dir string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}

	tr := tar.NewReader(r)
	top := ""
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		parts, err := resolveEntry(root, nil, hdr.Name)
		if err != nil {
			return "", err
		}
		if len(parts) == 0 {
			continue
		}
		target := filepath.Join(append([]string{root}, parts...)...)
		if top == "" {
			top = parts[0]
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode(hdr)); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return "", err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return "", fmt.Errorf("absolute symlink %s -> %s", hdr.Name, hdr.Linkname)
			}
			if _, err := resolveEntry(root, parts[:len(parts)-1], hdr.Linkname); err != nil {
				return "", fmt.Errorf("symlink %s: %w", hdr.Name, err)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return "", err
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return "", err
			}
		case tar.TypeLink:
			src, err := resolveEntry(root, nil, hdr.Linkname)
			if err != nil {
				return "", fmt.Errorf("hard link %s: %w", hdr.Name, err)
			}
			_ = os.Remove(target)
			if err := os.Link(filepath.Join(append([]string{root}, src...)...), target); err != nil {
				return "", err
			}
		default:
			// pax headers and device nodes carry nothing a source tree needs
		}
	}
	return top, nil
}

// resolveEntry walks name one component at a time starting at base, both
// relative to root. ".." may not climb above root and no component before
// the last may be a symlink already on disk, so the returned path stays
// inside root when the filesystem follows it.
func resolveEntry(root string, base []string, name string) ([]string, error) {
	path := append([]string(nil), base...)
	components := strings.Split(filepath.ToSlash(name), "/")
	for i, c := range components {
		switch c {
		case "", ".":
			continue
		case "..":
			if len(path) == 0 {
				return nil, fmt.Errorf("entry %q escapes extraction directory", name)
			}
			path = path[:len(path)-1]
			continue
		}
		path = append(path, c)
		if i == len(components)-1 {
			break
		}
		info, err := os.Lstat(filepath.Join(append([]string{root}, path...)...))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil, fmt.Errorf("entry %q passes through symlink %s", name, strings.Join(path, "/"))
		}
	}
	return path, nil
}

func dirMode(hdr *tar.Header) os.FileMode {
	mode := hdr.FileInfo().Mode().Perm()
	if mode == 0 {
		return 0o755
	}
	return mode | 0o700
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return err
		}
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
