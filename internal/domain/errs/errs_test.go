package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeepsMessageAndKind(t *testing.T) {
	err := Validation("Quantity for product ID %s must be greater than zero.", "p-1")

	assert.Equal(t, "Quantity for product ID p-1 must be greater than zero.", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewWithoutArgsDoesNotFormat(t *testing.T) {
	msg := "100% missing"
	notFound := NotFound
	err := notFound(msg)
	assert.Equal(t, msg, err.Error())
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "OK"},
		{"validation", Validation("bad"), "VALIDATION"},
		{"wrapped not found", fmt.Errorf("store: %w", NotFound("gone")), "NOT_FOUND"},
		{"insufficient", New(ErrInsufficientQuantity, "low"), "INSUFFICIENT_QUANTITY"},
		{"concurrent", ErrConcurrentUpdate, "CONCURRENT_UPDATE"},
		{"unknown", errors.New("boom"), "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}
