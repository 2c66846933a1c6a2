package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPolicyDoublesUpToCap(t *testing.T) {
	var p Policy
	prev := p.Duration()
	require.Equal(t, Base, prev)

	for i := 0; i < 10; i++ {
		next := p.Duration()
		require.GreaterOrEqual(t, next, prev)
		require.LessOrEqual(t, next, Base*MaxMultiplier)
		prev = next
	}
}

func TestPolicyReset(t *testing.T) {
	var p Policy
	p.Duration()
	p.Duration()
	p.Reset()
	require.Equal(t, Base, p.Duration())
}

func TestSleepHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Sleep(ctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepZeroDurationIsNoop(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), 0))
}
