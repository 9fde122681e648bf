package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/librarium/librarium/core"
)

func Test_Kind_MapsEverySentinel(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "validation", err: core.ErrValidation, expected: "validation_error"},
		{name: "not found", err: core.ErrNotFound, expected: "not_found"},
		{name: "out of stock", err: core.ErrOutOfStock, expected: "out_of_stock"},
		{name: "conflict", err: core.ErrConflict, expected: "conflict"},
		{name: "already returned", err: core.ErrAlreadyReturned, expected: "already_returned"},
		{name: "unauthorized", err: core.ErrUnauthorized, expected: "unauthorized"},
		{name: "forbidden", err: core.ErrForbidden, expected: "forbidden"},
		{name: "unavailable", err: core.ErrUnavailable, expected: "unavailable"},
		{name: "unknown", err: errors.New("boom"), expected: "internal"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, core.Kind(tc.err))
		})
	}
}

func Test_Kind_SeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("closing loan %q: %w", "some-id", core.ErrAlreadyReturned)

	assert.Equal(t, "already_returned", core.Kind(err))
	assert.True(t, errors.Is(err, core.ErrConflict),
		"already-returned should still satisfy generic conflict handling")
}
