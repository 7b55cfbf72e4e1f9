package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNoSlotAvailable, "no slot after 2024-01-05"))

	appErr := FromError(wrapped)

	assert.Equal(t, ErrNoSlotAvailable.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "no slot after 2024-01-05", appErr.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(stderrors.New("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.EqualError(t, appErr, "internal server error: boom")
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	clone := Clone(ErrConfiguration, "no semester saved")

	assert.ErrorIs(t, clone, ErrConfiguration)
	assert.NotErrorIs(t, clone, ErrNoFutureClass)
	assert.Equal(t, "semester configuration is incomplete or invalid", ErrConfiguration.Message, "clone must not mutate the original")
}
