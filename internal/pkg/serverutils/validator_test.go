package serverutils

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Message string `validate:"required,min=1,max=20"`
	Mode    string `validate:"omitempty,oneof=recruiter engineer ama"`
}

func TestValidateRequestPasses(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Message: "hello", Mode: "ama"}))
	assert.NoError(t, ValidateRequest(sampleRequest{Message: "hello"}))
}

func TestValidateRequestRejectsMissingField(t *testing.T) {
	err := ValidateRequest(sampleRequest{Mode: "ama"})
	require.Error(t, err)

	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr))
	assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)
	assert.Contains(t, fiberErr.Message, "Message")
}

func TestValidateRequestRejectsInvalidEnum(t *testing.T) {
	err := ValidateRequest(sampleRequest{Message: "hello", Mode: "pirate"})
	require.Error(t, err)

	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr))
	assert.Contains(t, fiberErr.Message, "Mode (oneof)")
}
