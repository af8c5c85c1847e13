package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "conflict", err: Conflict("Email already in use"), want: KindConflict},
		{name: "wrapped not found", err: fmt.Errorf("verify: %w", NotFound("User not found")), want: KindNotFound},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
		{name: "internal", err: Internal(errors.New("db down")), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("login: %w", Unauthorized("Email or password is wrong"))

	assert.True(t, errors.Is(err, Unauthorized("")))
	assert.False(t, errors.Is(err, NotFound("")))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	assert.Equal(t, "Server error", err.Message)
	assert.ErrorIs(t, err, cause)
}
