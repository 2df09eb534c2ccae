package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"kohchanghospital.go.th/admin/src/oops"
	"github.com/stretchr/testify/assert"
)

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 10, OrDefault(0, 10))
	assert.Equal(t, 20, OrDefault(20, 10))
	assert.Equal(t, "th", OrDefault("", "th"))
}

func TestNumPages(t *testing.T) {
	items := []struct {
		name            string
		things, perPage int
		pages           int
	}{
		{"empty", 0, 10, 1},
		{"exact", 20, 10, 2},
		{"remainder", 21, 10, 3},
		{"show all", 3, 9999, 1},
		{"bad page size", 3, 0, 1},
	}

	for _, item := range items {
		t.Run(item.name, func(t *testing.T) {
			assert.Equal(t, item.pages, NumPages(item.things, item.perPage))
		})
	}
}

func TestIntClamp(t *testing.T) {
	assert.Equal(t, 1, IntClamp(1, -4, 9))
	assert.Equal(t, 9, IntClamp(1, 40, 9))
	assert.Equal(t, 5, IntClamp(1, 5, 9))
}

func TestMust1(t *testing.T) {
	assert.Equal(t, 3, Must1(3, nil))
	assert.Panics(t, func() { Must1(3, errors.New("nope")) })
}

var sentinelError = errors.New("sentinel")

func TestRecoverPanicAsError(t *testing.T) {
	t.Run("no panic, no error", func(t *testing.T) {
		f := func() (err error) {
			defer RecoverPanicAsError(&err)
			return nil
		}
		err := f()
		assert.Nil(t, err)
	})
	t.Run("no panic, error", func(t *testing.T) {
		f := func() (err error) {
			defer RecoverPanicAsError(&err)
			return sentinelError
		}
		err := f()
		assert.True(t, errors.Is(err, sentinelError))
	})
	t.Run("panic, no error", func(t *testing.T) {
		f := func() (err error) {
			defer RecoverPanicAsError(&err)
			panic("blerp")
		}
		err := f()
		var asOops *oops.Error
		assert.ErrorContains(t, err, "blerp")
		assert.True(t, errors.As(err, &asOops))
	})
	t.Run("panic, error", func(t *testing.T) {
		f := func() (err error) {
			defer RecoverPanicAsError(&err)
			err = sentinelError
			panic("blerp")
		}
		err := f()
		assert.ErrorContains(t, err, "blerp")
		assert.True(t, errors.Is(err, sentinelError))
	})
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, ErrSleepInterrupted, SleepContext(ctx, time.Hour))
	assert.Nil(t, SleepContext(context.Background(), time.Millisecond))
}
