package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsSentinel(t *testing.T) {
	err := NewValidationError("missing required fields", "title", "password")

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.False(t, errors.Is(err, ErrorNotFound))
	assert.Equal(t, "missing required fields: title, password", err.Error())

	wrapped := fmt.Errorf("error creating credential: %w", err)
	assert.True(t, errors.Is(wrapped, ErrorValidation))

	var ve *ValidationError
	if assert.True(t, errors.As(wrapped, &ve)) {
		assert.Equal(t, []string{"title", "password"}, ve.Fields)
	}
}

func TestValidationError_NoFields(t *testing.T) {
	err := NewValidationError("passphrase is required")
	assert.Equal(t, "passphrase is required", err.Error())
}
