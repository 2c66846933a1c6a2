package pkg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloserAggregatesIndependentErrors(t *testing.T) {
	errA := errors.New("subsystem a failed")
	errB := errors.New("subsystem b failed")

	c := NewCloser(
		func() error { return errA },
		func() error { return nil },
		func() error { return errB },
	)

	err := c.Close()
	require.Error(t, err)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
}

func TestCloserRunsEachFuncOnce(t *testing.T) {
	calls := 0
	c := NewCloser(func() error {
		calls++
		return nil
	})

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.Equal(t, 1, calls)
}

func TestCloserWithNoErrorsReturnsNil(t *testing.T) {
	c := NewCloser(func() error { return nil }, func() error { return nil })
	require.NoError(t, c.Close())
}
