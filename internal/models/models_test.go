package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageTotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		total    int
		pageSize int
		want     int
	}{
		{"exact multiple", 20, 10, 2},
		{"partial last page", 25, 10, 3},
		{"single page", 3, 10, 1},
		{"empty", 0, 10, 0},
		{"zero page size", 25, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Page[Meme]{Total: tt.total, PageSize: tt.pageSize}
			assert.Equal(t, tt.want, p.TotalPages())
		})
	}
}

func TestPageNextPage(t *testing.T) {
	t.Parallel()

	p := Page[Comment]{Total: 25, PageSize: 10}
	assert.Equal(t, 2, p.NextPage(1))
	assert.Equal(t, 3, p.NextPage(2))
	assert.Equal(t, 0, p.NextPage(3))
}

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewTransportError(cause)
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("fetching page 2: %w", NewUnauthorizedError("token rejected"))
	assert.True(t, IsUnauthorized(wrapped))
	assert.False(t, IsNotFound(wrapped))
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(NewNotFoundError("meme not found")))
	assert.True(t, IsValidation(NewValidationError("content required")))
	assert.False(t, IsUnauthorized(errors.New("plain error")))
	assert.False(t, IsUnauthorized(nil))

	reqErr := NewRequestFailedError(503, "meme listing failed")
	var appErr *AppError
	assert.ErrorAs(t, reqErr, &appErr)
	assert.Equal(t, 503, appErr.Status)
}
