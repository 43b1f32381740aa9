package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("encode: %w", Invalid("crossfade", 1.5, "[0, 1]"))

	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.False(t, errors.Is(err, ErrDimensionMismatch))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "crossfade", e.Field)
	assert.Equal(t, 1.5, e.Value)
}

func TestErrorMessage(t *testing.T) {
	err := New(ErrResolutionExceedsBandwidth, "rows", 300, "<= 85")
	assert.Equal(t, "resolution exceeds bandwidth: rows=300, expected <= 85", err.Error())

	err = Mismatch("segments", 3, "")
	assert.Equal(t, "dimension mismatch: segments=3", err.Error())
}
