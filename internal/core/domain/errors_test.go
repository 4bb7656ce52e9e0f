package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrInvalidArgument", ErrInvalidArgument},
		{"ErrNotFound", ErrNotFound},
		{"ErrConflict", ErrConflict},
		{"ErrInvalidState", ErrInvalidState},
		{"ErrNotImplemented", ErrNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_AreDistinct(t *testing.T) {
	all := []error{ErrInvalidArgument, ErrNotFound, ErrConflict, ErrInvalidState, ErrNotImplemented}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"invalid argument", ErrInvalidArgument, CodeValidation},
		{"wrapped not found", fmt.Errorf("listing abc: %w", ErrNotFound), CodeNotFound},
		{"conflict", fmt.Errorf("change c1: %w", ErrConflict), CodeConflict},
		{"invalid state", ErrInvalidState, CodeInvalidState},
		{"unknown", errors.New("disk on fire"), CodeInternal},
		{"not implemented", ErrNotImplemented, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorCode(tt.err))
		})
	}
}
