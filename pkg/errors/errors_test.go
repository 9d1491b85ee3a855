package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without wrapped error", func(t *testing.T) {
		err := NewConfigError("duplicate condition anemia")
		assert.Equal(t, "CONFIG: duplicate condition anemia", err.Error())
	})

	t.Run("with wrapped error", func(t *testing.T) {
		err := NewPersistenceError("failed to save symptom log", fmt.Errorf("connection reset"))
		assert.Equal(t, "PERSISTENCE: failed to save symptom log: connection reset", err.Error())
	})
}

func TestIsType(t *testing.T) {
	cause := stderrors.New("upstream 502")
	err := fmt.Errorf("assess: %w", NewAnalysisUnavailableError("scorer unavailable", cause))

	assert.True(t, IsType(err, ErrorTypeAnalysisUnavailable))
	assert.False(t, IsType(err, ErrorTypePersistence))
	assert.True(t, stderrors.Is(err, cause))
	assert.False(t, IsType(cause, ErrorTypeInternal))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeConflict, TypeOf(NewConflictError("busy")))
	assert.Equal(t, ErrorTypeInternal, TypeOf(stderrors.New("plain")))
}
