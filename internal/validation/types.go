package validation

import "context"

// Kind names a verification rule.
type Kind string

const (
	KindCommandExists Kind = "command_exists"
	KindFileExists    Kind = "file_exists"
	KindPathContains  Kind = "path_contains"
	KindService       Kind = "service"
	KindShell         Kind = "shell"
)

// Check is a single post-provision rule. Target is the command, path, unit
// or shell line the rule inspects; Text is the pattern for path_contains.
type Check struct {
	Kind   Kind
	Target string
	Text   string
}

// String renders the check for reports.
func (c Check) String() string {
	if c.Text != "" {
		return string(c.Kind) + " " + c.Target + " =~ " + c.Text
	}
	return string(c.Kind) + " " + c.Target
}

// Result captures the outcome of executing a single check.
type Result struct {
	Check   Check
	Passed  bool
	Message string
	Error   error
}

// ShellCheck runs a shell line and reports whether it exited 0.
type ShellCheck func(ctx context.Context, command string) (ok bool, output string, err error)
