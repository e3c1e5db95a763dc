package scanner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{
			name: "invalid input",
			err:  NewScanErrorf(KindInvalidInput, "url is required"),
			kind: KindInvalidInput,
		},
		{
			name: "navigation timeout",
			err:  NewScanError(KindNavigationTimeout, errors.New("deadline exceeded")),
			kind: KindNavigationTimeout,
		},
		{
			name: "wrapped scan error keeps its kind",
			err:  fmt.Errorf("handling request: %w", NewScanError(KindEngineFailure, errors.New("boom"))),
			kind: KindEngineFailure,
		},
		{
			name: "plain error is internal",
			err:  errors.New("something else"),
			kind: KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestScanErrorHelpers(t *testing.T) {
	assert.True(t, IsInvalidInput(NewScanErrorf(KindInvalidInput, "bad")))
	assert.True(t, IsNavigationTimeout(NewScanError(KindNavigationTimeout, errors.New("slow"))))
	assert.True(t, IsNavigationError(NewScanError(KindNavigationError, errors.New("dns"))))
	assert.True(t, IsEngineFailure(NewScanError(KindEngineFailure, errors.New("crash"))))

	plain := errors.New("plain")
	assert.False(t, IsInvalidInput(plain))
	assert.False(t, IsNavigationTimeout(plain))
	assert.False(t, IsNavigationError(plain))
	assert.False(t, IsEngineFailure(plain))
}

func TestScanErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewScanError(KindNavigationError, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "navigation_error")
	assert.Contains(t, err.Error(), "connection refused")
}
