package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewParsingError("failed to parse row", cause)

	assert.Equal(t, "[PARSING] failed to parse row: boom", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestAppErrorWithoutCause(t *testing.T) {
	err := NewSchemaError("column sets differ", nil)
	assert.Equal(t, "[SCHEMA] column sets differ", err.Error())
}

func TestIsSchemaMismatch(t *testing.T) {
	schemaErr := NewSchemaError("column sets differ", nil)
	assert.True(t, IsSchemaMismatch(schemaErr))
	assert.False(t, IsSchemaMismatch(NewStorageError("disk full", nil)))
	assert.False(t, IsSchemaMismatch(stderrors.New("plain")))
}

func TestIsSchemaMismatchWrapped(t *testing.T) {
	wrapped := stderrors.Join(stderrors.New("outer"), NewSchemaError("inner", nil))
	assert.True(t, IsSchemaMismatch(wrapped))
}

func TestWithContext(t *testing.T) {
	err := NewStorageError("write failed", nil).WithContext("path", "/tmp/out.csv")
	assert.Equal(t, "/tmp/out.csv", err.Context["path"])
}
