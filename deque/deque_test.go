package deque

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyPopReturnsFalse(t *testing.T) {
	d := New[int]()
	_, ok := d.PopLeft()
	require.False(t, ok)
	_, ok = d.PopRight()
	require.False(t, ok)
}

func TestSingleElementTransitions(t *testing.T) {
	d := New[int]()
	d.PushLeft(1)
	require.Equal(t, 1, d.Len())

	v, ok := d.PopRight()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 0, d.Len())
}

func TestPushLeftThenPopRightPreservesOrder(t *testing.T) {
	d := New[int]()
	for i := 1; i <= 5; i++ {
		d.PushLeft(i)
	}
	// 5 4 3 2 1 pushed left-to-right means leftmost is 5, rightmost is 1.
	var out []int
	for {
		v, ok := d.PopRight()
		if !ok {
			break
		}
		out = append(out, v)
	}
	require.Equal(t, []int{1, 2, 3, 4, 5}, out)
}

func TestPushRightThenPopLeftPreservesOrder(t *testing.T) {
	d := New[int]()
	for i := 1; i <= 5; i++ {
		d.PushRight(i)
	}
	var out []int
	for {
		v, ok := d.PopLeft()
		if !ok {
			break
		}
		out = append(out, v)
	}
	require.Equal(t, []int{1, 2, 3, 4, 5}, out)
}

func TestConcurrentPushPopPreservesCount(t *testing.T) {
	d := New[int]()
	const perWorker = 500
	const workers = 8

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				d.PushLeft(i)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, perWorker*workers, d.Len())

	popped := make(chan bool, perWorker*workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, ok := d.PopLeft()
				popped <- ok
			}
		}()
	}
	wg.Wait()
	close(popped)

	count := 0
	for ok := range popped {
		if ok {
			count++
		}
	}
	require.Equal(t, perWorker*workers, count)
	require.Equal(t, 0, d.Len())
}

func TestRandomWorkloadNeverUnderflowsLen(t *testing.T) {
	d := New[int]()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(w)))
			for i := 0; i < 1000; i++ {
				switch r.Intn(4) {
				case 0:
					d.PushLeft(i)
				case 1:
					d.PushRight(i)
				case 2:
					d.PopLeft()
				case 3:
					d.PopRight()
				}
			}
		}()
	}
	wg.Wait()
	require.GreaterOrEqual(t, d.Len(), 0)
}
