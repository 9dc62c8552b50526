package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs_MatchesSentinelByCode(t *testing.T) {
	derived := ErrInvalidInput.WithMessage("matchAll requires a non-empty tag set")

	assert.True(t, errors.Is(derived, ErrInvalidInput))
	assert.False(t, errors.Is(derived, ErrNotFound))
}

func TestErrorIs_SurvivesWrapping(t *testing.T) {
	derived := ErrNotFound.WithMessage("document not found")
	wrapped := fmt.Errorf("get document: %w", derived)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestErrorIs_WithCause(t *testing.T) {
	cause := errors.New("disk full")
	derived := ErrAlreadyExists.WithCause(cause)

	assert.True(t, errors.Is(derived, ErrAlreadyExists))
	assert.True(t, errors.Is(derived, cause))
}
