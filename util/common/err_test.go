package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("sentinel")

func TestNewErrorfWraps(t *testing.T) {
	err := NewErrorf("save inventory %d: %w", 7, errSentinel)

	assert.EqualError(t, err, "save inventory 7: sentinel")
	assert.ErrorIs(t, err, errSentinel)
}

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine(nil, nil))

	other := errors.New("other")
	err := Combine(nil, errSentinel, other)
	assert.ErrorIs(t, err, errSentinel)
	assert.ErrorIs(t, err, other)
}

func TestRecover(t *testing.T) {
	var got any
	func() {
		defer func() { got = recover() }()
		func() {
			defer Recover("test")
			panic("boom")
		}()
	}()
	assert.Nil(t, got, "panic must not escape Recover")
}
