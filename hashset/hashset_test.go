package hashset

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"lockfree/internal/order"
	"lockfree/pkg"
)

func TestAddContainsRemove(t *testing.T) {
	s := New[int](order.IntHash)

	require.True(t, s.Add(1))
	require.False(t, s.Add(1))
	require.True(t, s.Contains(1))
	require.False(t, s.Contains(2))

	require.True(t, s.Remove(1))
	require.False(t, s.Contains(1))
	require.False(t, s.Remove(1))
}

func TestFourThreadsAddDisjointRanges(t *testing.T) {
	s := New[int](order.IntHash)

	var wg sync.WaitGroup
	for tid := 0; tid < 4; tid++ {
		tid := tid
		wg.Add(1)
		go func() {
			defer wg.Done()
			base := tid * 1000
			for i := base; i < base+1000; i++ {
				s.Add(i)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 4000, s.Size())
	for tid := 0; tid < 4; tid++ {
		base := tid * 1000
		for i := base; i < base+1000; i += 137 {
			require.True(t, s.Contains(i))
		}
	}
}

func TestGrowthAcrossLoadThreshold(t *testing.T) {
	s := New[int](order.IntHash, WithInitialBucketBits(2), WithLoadFactor(0.75))
	for i := 0; i < 500; i++ {
		require.True(t, s.Add(i))
	}
	require.Equal(t, 500, s.Size())
	for i := 0; i < 500; i++ {
		require.True(t, s.Contains(i))
	}
}

func TestBucketDummyMaterialisationUnderConcurrentAdd(t *testing.T) {
	s := New[int](order.IntHash, WithInitialBucketBits(10))

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(i)
		}()
	}
	wg.Wait()

	for i := 0; i < 64; i++ {
		require.True(t, s.Contains(i))
	}
}

func TestRangeSkipsDummies(t *testing.T) {
	s := New[int](order.IntHash)
	for i := 0; i < 20; i++ {
		s.Add(i)
	}
	seen := make(map[int]bool)
	s.Range(func(k int) bool {
		seen[k] = true
		return true
	})
	require.Len(t, seen, 20)
}

func TestInsertAndDeleteReportSentinelErrors(t *testing.T) {
	s := New[int](order.IntHash)

	require.NoError(t, s.Insert(1))
	require.ErrorIs(t, s.Insert(1), pkg.ErrAlreadyPresent)

	require.NoError(t, s.Delete(1))
	require.ErrorIs(t, s.Delete(1), pkg.ErrNotFound)
}
