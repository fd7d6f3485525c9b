package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapAndClassify(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("get task: %w", NewDatabase("get task", cause))

	assert.True(t, HasCode(err, CodeDatabase))
	assert.False(t, IsNotFound(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAppError_NotFoundDetails(t *testing.T) {
	err := NewNotFound("capture_task", "42")

	assert.True(t, IsNotFound(err))
	assert.Equal(t, "capture_task not found", err.Message)
	assert.Equal(t, "42", err.Details["id"])
}

func TestAppError_DuplicateAutoOrder(t *testing.T) {
	err := NewDuplicateAutoOrder("p-1", "too soon", 12).WithDetail("interval_minutes", 30)

	appErr, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, CodeDuplicateAutoOrder, appErr.Code)
	assert.Equal(t, 12, appErr.Details["remaining_minutes"])
	assert.Equal(t, 30, appErr.Details["interval_minutes"])
}
