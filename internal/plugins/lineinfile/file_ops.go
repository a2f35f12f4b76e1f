package lineinfileplugin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// encodings maps accepted option values to their codec. A nil codec means
// the bytes are already UTF-8.
var encodings = map[string]encoding.Encoding{
	"":             nil,
	"utf-8":        nil,
	"utf8":         nil,
	"ascii":        charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM),
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

func lookupEncoding(name string) (encoding.Encoding, bool) {
	enc, ok := encodings[strings.ToLower(strings.TrimSpace(name))]
	return enc, ok
}

// SupportedEncodings lists the accepted encoding names.
func SupportedEncodings() []string {
	names := make([]string, 0, len(encodings))
	for name := range encodings {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Descriptor is a build descriptor as read from disk, decoded to UTF-8 and
// split into lines. Path is the symlink-resolved file that gets rewritten.
type Descriptor struct {
	Path     string
	Mode     os.FileMode
	Original []byte
	Lines    []string
	// CRLF is set when every line ended in "\r\n"; it is restored on write.
	CRLF            bool
	TrailingNewline bool
}

func readDescriptor(path string, enc encoding.Encoding) (*Descriptor, error) {
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("build descriptor path %q is not absolute", path)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("build descriptor %s does not exist", path)
		}
		return nil, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("build descriptor %s is a directory", path)
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return nil, err
	}
	text, err := decode(raw, enc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	d := &Descriptor{Path: resolved, Mode: info.Mode().Perm(), Original: raw}
	d.Lines, d.TrailingNewline = splitLines(text)
	d.CRLF = allCRLF(d.Lines, d.TrailingNewline)
	if d.CRLF {
		for i, l := range d.Lines {
			d.Lines[i] = strings.TrimSuffix(l, "\r")
		}
	}
	return d, nil
}

// render encodes lines back into the descriptor's original line endings and
// encoding.
func (d *Descriptor) render(lines []string, enc encoding.Encoding) ([]byte, error) {
	sep := "\n"
	if d.CRLF {
		sep = "\r\n"
	}
	text := strings.Join(lines, sep)
	if d.TrailingNewline && len(lines) > 0 {
		text += sep
	}
	return encode(text, enc)
}

func splitLines(content string) ([]string, bool) {
	if content == "" {
		return []string{}, false
	}
	trailing := strings.HasSuffix(content, "\n")
	trimmed := strings.TrimSuffix(content, "\n")
	if trimmed == "" {
		return []string{}, trailing
	}
	return strings.Split(trimmed, "\n"), trailing
}

// allCRLF reports whether every terminated line carries "\r".
func allCRLF(lines []string, trailing bool) bool {
	terminated := len(lines)
	if !trailing {
		terminated--
	}
	if terminated <= 0 {
		return false
	}
	for _, l := range lines[:terminated] {
		if !strings.HasSuffix(l, "\r") {
			return false
		}
	}
	return true
}

func decode(data []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		return string(data), nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func encode(content string, enc encoding.Encoding) ([]byte, error) {
	if enc == nil {
		return []byte(content), nil
	}
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, enc.NewEncoder())
	if _, err := io.WriteString(w, content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// replaceFile swaps path for data through a temp file in the same directory,
// keeping mode.
func replaceFile(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".patch-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// writeBackup stores the untouched bytes of d as
// <dir>/<name>.<UTC timestamp>.bak; dir defaults to the descriptor's own.
func writeBackup(d *Descriptor, dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = filepath.Dir(d.Path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s.%s.bak", filepath.Base(d.Path), now.UTC().Format("20060102T150405"))
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, d.Original, d.Mode); err != nil {
		return "", err
	}
	return target, nil
}
