package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	base := New(CodeOverCollection, "collected exceeds total owed")
	assert.Equal(t, CodeOverCollection, CodeOf(base))

	// The code survives wrapping with fmt.Errorf %w.
	wrapped := fmt.Errorf("settling delivery 42: %w", base)
	assert.Equal(t, CodeOverCollection, CodeOf(wrapped))

	// Chains of coded errors report the outermost code.
	outer := Wrap(CodePersistenceFailure, "tx failed", base)
	assert.Equal(t, CodePersistenceFailure, CodeOf(outer))

	assert.Equal(t, CodePersistenceFailure, CodeOf(errors.New("plain error")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeTransactionConflict, "retry exhausted", cause)

	assert.True(t, errors.Is(err, cause))

	var ae *Error
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &ae))
	assert.Equal(t, CodeTransactionConflict, ae.Code)
}

func TestRetriable(t *testing.T) {
	assert.True(t, Retriable(New(CodeTransactionConflict, "serialization failure")))
	assert.False(t, Retriable(New(CodeOverCollection, "too much cash")))
	assert.False(t, Retriable(errors.New("unknown")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: delivery 7 not found",
		Newf(CodeNotFound, "delivery %d not found", 7).Error())

	withCause := Wrap(CodePersistenceFailure, "insert failed", errors.New("boom"))
	assert.Equal(t, "PERSISTENCE_FAILURE: insert failed: boom", withCause.Error())
}
