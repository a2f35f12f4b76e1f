package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("tatoprov.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "tatoprov.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Equal(t, "parse error: tatoprov.yaml:12: unexpected token", err.Error())
}

func TestParseErrorWithoutLine(t *testing.T) {
	t.Parallel()

	err := NewParseError("tatoprov.yaml", 0, stdErrors.New("empty document"))
	require.Equal(t, "parse error: tatoprov.yaml: empty document", err.Error())
}

func TestValidationErrorIncludesField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("data.download_url", "required when mode is download", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "data.download_url", validationErr.Field)
	require.Contains(t, err.Error(), "required when mode is download")
}

func TestStageErrorNamesStageAndStep(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("exit status 2")
	err := NewStageError("build", "compile cppcms", underlying)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, "build", stageErr.Stage)
	require.Equal(t, "compile cppcms", stageErr.Step)
	require.True(t, stdErrors.Is(err, underlying))
	require.Equal(t, "stage build failed at compile cppcms: exit status 2", err.Error())

	require.Equal(t, "stage fetch failed: boom", NewStageError("fetch", "", stdErrors.New("boom")).Error())
}

func TestLockErrorWrapsCause(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("resource temporarily unavailable")
	err := NewLockError("/run/lock/tatoprov.lock", underlying)

	var lockErr *LockError
	require.ErrorAs(t, err, &lockErr)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "/run/lock/tatoprov.lock")
}

func TestNilReceiversAreSafe(t *testing.T) {
	t.Parallel()

	var parseErr *ParseError
	var stageErr *StageError
	require.Empty(t, parseErr.Error())
	require.Nil(t, stageErr.Unwrap())
}
