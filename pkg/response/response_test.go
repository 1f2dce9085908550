package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"reqflow/internal/workflow"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{workflow.ErrValidation, http.StatusBadRequest},
		{workflow.ErrAuthorization, http.StatusForbidden},
		{workflow.ErrNotFound, http.StatusNotFound},
		{workflow.ErrInvalidState, http.StatusConflict},
		{workflow.ErrConflict, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), "error: %v", tc.err)
	}

	// Wrapped sentinels still resolve through errors.Is.
	wrapped := fmt.Errorf("request req-007: %w", workflow.ErrConflict)
	assert.Equal(t, http.StatusConflict, StatusFor(wrapped))
}

func TestFromError(t *testing.T) {
	code, body := FromError(fmt.Errorf("%w: reason required", workflow.ErrValidation))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	assert.NotEmpty(t, body.Error)
}
