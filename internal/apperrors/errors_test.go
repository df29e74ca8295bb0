package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("load share: %w", NotFound("Shared expense not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unique constraint failed")
	err := Wrap(KindDuplicate, "Email already exists", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "Email already exists")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindDuplicate, http.StatusConflict},
		{KindReferentialConflict, http.StatusConflict},
		{KindInvalidTransition, http.StatusConflict},
		{KindForbidden, http.StatusForbidden},
		{KindInvalidSplit, http.StatusBadRequest},
		{KindInvalidRecipient, http.StatusBadRequest},
		{KindValidation, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}
