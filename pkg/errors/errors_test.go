// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "book not found",
			wantStr: "[NOT_FOUND] book not found",
		},
		{
			name:    "validation_error",
			code:    errors.ErrValidation,
			message: "poet reported errors",
			wantStr: "[VALIDATION] poet reported errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details, "details should be initialized")
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrBookMeta, "expected one but found %d", 3)
	assert.Equal(t, "expected one but found 3", err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("exit status 128")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrGitExec, "git failed")

		assert.Equal(t, errors.ErrGitExec, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[GIT_EXEC] git failed: exit status 128", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrGitExec, "git failed"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrGitExec, "git %s", "failed"))
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrGitRepo, "not a repository").
		WithDetail("path", "/books/osbooks-physics").
		WithDetail("remote", "openstax/osbooks-physics")

	assert.Equal(t, "/books/osbooks-physics", err.Details["path"])
	assert.Equal(t, "openstax/osbooks-physics", err.Details["remote"])
	assert.Equal(t, err.Details, errors.GetErrorDetails(err))
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrNotFound, "error 1")
	err2 := errors.New(errors.ErrNotFound, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	assert.True(t, err1.Is(err2), "same code should match")
	assert.False(t, err1.Is(err3), "different codes should not match")
	assert.True(t, stderrors.Is(err1, err2), "errors.Is should work with BookopsError")
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{"matching_code", errors.New(errors.ErrNotFound, "x"), errors.ErrNotFound, true},
		{"different_code", errors.New(errors.ErrNotFound, "x"), errors.ErrInternal, false},
		{"wrapped_error", errors.Wrap(stderrors.New("base"), errors.ErrFileAccess, "denied"), errors.ErrFileAccess, true},
		{"standard_error", stderrors.New("standard"), errors.ErrNotFound, false},
		{"nil_error", nil, errors.ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrMember, errors.GetErrorCode(errors.New(errors.ErrMember, "x")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("standard")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("standard")))
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	fileErr := errors.Wrap(rootCause, errors.ErrFileAccess, "cannot read books.xml")
	metaErr := errors.Wrap(fileErr, errors.ErrBookMeta, "failed to read book metadata")

	assert.True(t, errors.IsErrorCode(metaErr, errors.ErrBookMeta))

	var middle *errors.BookopsError
	require.True(t, stderrors.As(metaErr.Unwrap(), &middle))
	assert.Equal(t, errors.ErrFileAccess, middle.Code)

	assert.True(t, stderrors.Is(metaErr, rootCause))
}
