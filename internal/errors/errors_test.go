package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	assert.Equal(t, "Invalid request format", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
}

func TestUploadFailedErrorCarriesCause(t *testing.T) {
	cause := fmt.Errorf("range rejected")
	err := UploadFailedError(cause)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "range rejected", err.Details)
}

func TestAppErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("no such file")
	err := NewParsingError("read module", cause)
	assert.Equal(t, "[PARSING] read module: no such file", err.Error())
	assert.True(t, errors.Is(err, cause), "Unwrap exposes the cause")

	bare := NewNotFoundError("scan folder missing", nil)
	assert.Equal(t, "[NOT_FOUND] scan folder missing", bare.Error())
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewUploadError("batch rejected", nil).WithContext("batch", "profiles")
	assert.Equal(t, "profiles", err.Context["batch"])
}
