package bst

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"lockfree/internal/arena"
	"lockfree/internal/order"
	"lockfree/pkg"
)

func TestUpdateThenFind(t *testing.T) {
	tr := New[int, string](order.Ordered[int]())
	tr.Update(5, "five")
	tr.Update(3, "three")
	tr.Update(8, "eight")

	v, ok := tr.Find(5)
	require.True(t, ok)
	require.Equal(t, "five", v)

	_, ok = tr.Find(42)
	require.False(t, ok)
}

func TestUpdateOverwritesExistingValue(t *testing.T) {
	tr := New[int, string](order.Ordered[int]())
	tr.Update(1, "a")
	tr.Update(1, "b")

	v, ok := tr.Find(1)
	require.True(t, ok)
	require.Equal(t, "b", v)
}

func TestRangeVisitsKeysInOrder(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	for _, k := range []int{5, 2, 8, 1, 9, 3} {
		tr.Update(k, k*10)
	}

	var seen []int
	tr.Range(func(k, v int) bool {
		seen = append(seen, k)
		require.Equal(t, k*10, v)
		return true
	})
	require.Equal(t, []int{1, 2, 3, 5, 8, 9}, seen)
}

func TestRangeCanStopEarly(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	for i := 0; i < 10; i++ {
		tr.Update(i, i)
	}
	count := 0
	tr.Range(func(k, v int) bool {
		count++
		return count < 3
	})
	require.Equal(t, 3, count)
}

func TestRemoveLeafCase(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	tr.Update(5, 5)
	tr.Update(3, 3)
	tr.Update(8, 8)

	require.True(t, tr.Remove(3))
	require.False(t, tr.Contains(3))
	require.True(t, tr.Contains(5))
	require.True(t, tr.Contains(8))

	var seen []int
	tr.Range(func(k, v int) bool { seen = append(seen, k); return true })
	require.Equal(t, []int{5, 8}, seen)
}

func TestRemoveSingleRealChildCases(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	// 5 has only a real right child (7): case 2.
	tr.Update(5, 5)
	tr.Update(7, 7)
	require.True(t, tr.Remove(5))
	require.False(t, tr.Contains(5))
	require.True(t, tr.Contains(7))

	// 20 has only a real left child (10): case 3.
	tr.Update(20, 20)
	tr.Update(10, 10)
	require.True(t, tr.Remove(20))
	require.False(t, tr.Contains(20))
	require.True(t, tr.Contains(10))
}

func TestRemoveTwoChildrenImmediateSuccessor(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	tr.Update(5, 5)
	tr.Update(2, 2)
	tr.Update(8, 8) // immediate right child of 5, and 5's in-order successor

	require.True(t, tr.Remove(5))
	require.False(t, tr.Contains(5))

	var seen []int
	tr.Range(func(k, v int) bool { seen = append(seen, k); return true })
	require.Equal(t, []int{2, 8}, seen)
}

func TestRemoveTwoChildrenDeepSuccessor(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	for _, k := range []int{50, 20, 80, 10, 30, 70, 90, 60, 75} {
		tr.Update(k, k)
	}
	// 50's successor is 60, several levels down inside the right subtree
	// (50 -> 80 -> 70 -> 60).
	require.True(t, tr.Remove(50))
	require.False(t, tr.Contains(50))

	var seen []int
	tr.Range(func(k, v int) bool { seen = append(seen, k); return true })
	require.Equal(t, []int{10, 20, 30, 60, 70, 75, 80, 90}, seen)

	for _, k := range seen {
		_, ok := tr.Find(k)
		require.True(t, ok, "key %d should still be findable", k)
	}
}

func TestRemoveAbsentKeyReturnsFalse(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	tr.Update(1, 1)
	require.False(t, tr.Remove(2))
}

func TestRemoveThenReinsertSameKey(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	tr.Update(1, 1)
	tr.Update(2, 2)
	require.True(t, tr.Remove(1))
	tr.Update(1, 99)

	v, ok := tr.Find(1)
	require.True(t, ok)
	require.Equal(t, 99, v)
}

func TestConcurrentUpdatesAndRemovesPreserveInvariants(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			tr.Update(k, k)
		}(i)
	}
	wg.Wait()

	var seen []int
	tr.Range(func(k, v int) bool {
		seen = append(seen, k)
		require.Equal(t, k, v)
		return true
	})
	require.Len(t, seen, n)
	for i := 1; i < len(seen); i++ {
		require.Less(t, seen[i-1], seen[i])
	}

	var wg2 sync.WaitGroup
	for i := 0; i < n; i += 2 {
		wg2.Add(1)
		go func(k int) {
			defer wg2.Done()
			tr.Remove(k)
		}(i)
	}
	wg2.Wait()

	for i := 0; i < n; i++ {
		_, ok := tr.Find(i)
		if i%2 == 0 {
			require.False(t, ok)
		} else {
			require.True(t, ok)
		}
	}
}

func TestWithArenaCopiesByteValues(t *testing.T) {
	a := arena.New(4096)
	tr := New[int, []byte](order.Ordered[int](), WithArena[int, []byte](a))

	want := []byte("hello")
	tr.Update(1, want)

	got, ok := tr.Find(1)
	require.True(t, ok)
	require.Equal(t, want, got)

	// Mutating the caller's original slice must not affect the stored copy.
	want[0] = 'X'
	got2, _ := tr.Find(1)
	require.Equal(t, byte('h'), got2[0])
}

func TestGetReturnsSentinelErrorWhenAbsent(t *testing.T) {
	tr := New[int, string](order.Ordered[int]())
	tr.Update(1, "one")

	v, err := tr.Get(1)
	require.NoError(t, err)
	require.Equal(t, "one", v)

	_, err = tr.Get(2)
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestCloseReleasesArenaAndIsIdempotent(t *testing.T) {
	a := arena.New(4096)
	tr := New[int, []byte](order.Ordered[int](), WithArena[int, []byte](a))
	tr.Update(1, []byte("hello"))

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
}

func TestCloseWithoutArenaIsNoop(t *testing.T) {
	tr := New[int, int](order.Ordered[int]())
	require.NoError(t, tr.Close())
}
