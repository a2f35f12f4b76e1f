package lineinfileplugin

import (
	"fmt"
	"regexp"
	"strings"

	provErrors "github.com/tatoeba/tatoprov/pkg/errors"
)

const defaultCommentPrefix = "#"

// Options tunes a Patcher.
type Options struct {
	// CommentPrefix is written in front of disabled lines. Defaults to "#".
	CommentPrefix string
	// Encoding of patched files, one of SupportedEncodings. Empty means UTF-8.
	Encoding string
	// Backup keeps a timestamped copy of every modified file.
	Backup bool
	// BackupDir holds backups. Empty keeps them next to the patched file.
	BackupDir string
}

func (o Options) normalize() (Options, error) {
	o.CommentPrefix = strings.TrimSpace(o.CommentPrefix)
	if o.CommentPrefix == "" {
		o.CommentPrefix = defaultCommentPrefix
	}
	o.Encoding = strings.TrimSpace(strings.ToLower(o.Encoding))
	o.BackupDir = strings.TrimSpace(o.BackupDir)
	if _, ok := lookupEncoding(o.Encoding); !ok {
		return o, provErrors.NewValidationError("encoding", fmt.Sprintf("unsupported encoding: %s", o.Encoding), nil)
	}
	return o, nil
}

// linePattern matches line as a whole statement, ignoring surrounding
// whitespace. Commented occurrences do not match.
func linePattern(line string) (*regexp.Regexp, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, provErrors.NewValidationError("line", "line is required", nil)
	}
	return regexp.Compile(`^\s*` + regexp.QuoteMeta(trimmed) + `\s*$`)
}
