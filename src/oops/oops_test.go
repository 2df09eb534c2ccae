package oops

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

func TestNew(t *testing.T) {
	t.Run("wrapped", func(t *testing.T) {
		err := New(errNotFound, "failed to fetch news %d", 3)
		assert.Equal(t, "failed to fetch news 3: not found", err.Error())
		assert.True(t, errors.Is(err, errNotFound))
	})
	t.Run("no wrapped error", func(t *testing.T) {
		err := New(nil, "backend returned garbage")
		assert.Equal(t, "backend returned garbage", err.Error())
	})
	t.Run("stack starts at caller", func(t *testing.T) {
		err := New(nil, "boom").(*Error)
		if assert.NotEmpty(t, err.Stack) {
			assert.True(t, strings.HasSuffix(err.Stack[0].Function, "TestNew.func3"), err.Stack[0].Function)
		}
	})
}

func TestZerologStackMarshaler(t *testing.T) {
	inner := New(nil, "inner")
	outer := errors.Join(errors.New("context"), inner)
	assert.Equal(t, inner.(*Error).Stack, ZerologStackMarshaler(outer))
	assert.Nil(t, ZerologStackMarshaler(errNotFound))
}
