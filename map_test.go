package batches_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/batches"
)

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

func double(_ context.Context, x int) (int, error) { return x * 2, nil }

// jitter makes later items finish before earlier ones.
func jitter(_ context.Context, x int) (int, error) {
	time.Sleep(time.Duration((7-x%7)%7) * time.Millisecond)
	return x * 10, nil
}

// closeCounter is a Source over a slice that records Close calls.
type closeCounter struct {
	batches.Source[int]
	closed atomic.Int32
	err    error
}

func newCloseCounter(items []int) *closeCounter {
	return &closeCounter{Source: batches.FromSlice(items)}
}

func (c *closeCounter) Close() error {
	c.closed.Add(1)
	return c.err
}

func TestMap_Sequential_KeepsOrder(t *testing.T) {
	res, err := batches.Map(context.Background(), batches.FromSlice(seq(10)), double, batches.WithMaxConcurrency(1))
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}, res)
}

func TestMap_OrderedBatches_MatchSequential(t *testing.T) {
	res, err := batches.Map(context.Background(), batches.FromSlice(seq(10)), double, batches.WithMaxConcurrency(4))
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}, res)
}

func TestMap_Unordered_SharedCounter(t *testing.T) {
	var counter atomic.Int64
	op := func(_ context.Context, x int) (int64, error) {
		return int64(x) + counter.Add(1), nil
	}

	res, err := batches.Map(
		context.Background(),
		batches.FromSlice(seq(100)),
		op,
		batches.WithMaxConcurrency(9),
		batches.WithOutOfOrder(true),
	)
	require.NoError(t, err)
	require.Len(t, res, 100)
	require.EqualValues(t, 100, counter.Load())
}

func TestMap_OrderedCompleteness(t *testing.T) {
	const L = 17
	items := seq(L)
	want := make([]int, L)
	for i, x := range items {
		want[i] = x * 10
	}

	for _, size := range []int{1, 2, L, L + 1} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			res, err := batches.Map(context.Background(), batches.FromSlice(items), jitter, batches.WithMaxConcurrency(size))
			require.NoError(t, err)
			require.Equal(t, want, res)
		})
	}
}

func TestMap_UnorderedIsPermutation(t *testing.T) {
	const L = 17
	items := seq(L)
	want := make([]int, L)
	for i, x := range items {
		want[i] = x * 10
	}

	for _, size := range []int{1, 2, L} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			res, err := batches.Map(
				context.Background(),
				batches.FromSlice(items),
				jitter,
				batches.WithMaxConcurrency(size),
				batches.WithOutOfOrder(true),
			)
			require.NoError(t, err)
			require.ElementsMatch(t, want, res)
		})
	}
}

func TestMap_UnorderedSlowItemDoesNotHoldBackOthers(t *testing.T) {
	op := func(_ context.Context, x int) (int, error) {
		if x == 0 {
			time.Sleep(60 * time.Millisecond)
		}
		return x, nil
	}

	res, err := batches.Map(
		context.Background(),
		batches.FromSlice([]int{0, 1, 2, 3, 4, 5}),
		op,
		batches.WithMaxConcurrency(3),
		batches.WithOutOfOrder(true),
	)
	require.NoError(t, err)
	require.Len(t, res, 6)
	require.Equal(t, 0, res[5], "expected the slow item to be harvested last")
}

func TestMap_EachItemInvokedOnce(t *testing.T) {
	const L = 23
	modes := []struct {
		name string
		opts []batches.Option
	}{
		{"sequential", []batches.Option{batches.WithMaxConcurrency(1)}},
		{"ordered", []batches.Option{batches.WithMaxConcurrency(4)}},
		{"ordered oversized", []batches.Option{batches.WithMaxConcurrency(L + 5)}},
		{"unordered", []batches.Option{batches.WithMaxConcurrency(4), batches.WithOutOfOrder(true)}},
		{"default concurrency", nil},
	}

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			calls := make([]atomic.Int32, L)
			op := func(_ context.Context, i int) (int, error) {
				calls[i].Add(1)
				return i, nil
			}
			items := make([]int, L)
			for i := range items {
				items[i] = i
			}

			res, err := batches.Map(context.Background(), batches.FromSlice(items), op, m.opts...)
			require.NoError(t, err)
			require.Len(t, res, L)
			for i := range calls {
				require.EqualValues(t, 1, calls[i].Load(), "item %d", i)
			}
		})
	}
}

func TestMap_MaxInFlightBounded(t *testing.T) {
	for _, outOfOrder := range []bool{false, true} {
		t.Run(fmt.Sprintf("outOfOrder=%v", outOfOrder), func(t *testing.T) {
			var cur, peak atomic.Int32
			op := func(_ context.Context, x int) (int, error) {
				n := cur.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				cur.Add(-1)
				return x, nil
			}

			_, err := batches.Map(
				context.Background(),
				batches.FromSlice(seq(40)),
				op,
				batches.WithMaxConcurrency(3),
				batches.WithOutOfOrder(outOfOrder),
			)
			require.NoError(t, err)
			require.LessOrEqual(t, peak.Load(), int32(3))
		})
	}
}

func TestMap_EmptySource(t *testing.T) {
	for _, size := range []int{1, 3} {
		for _, outOfOrder := range []bool{false, true} {
			src := newCloseCounter(nil)
			res, err := batches.Map(context.Background(), batches.Source[int](src), double,
				batches.WithMaxConcurrency(size), batches.WithOutOfOrder(outOfOrder))
			require.NoError(t, err)
			require.Empty(t, res)
			require.EqualValues(t, 1, src.closed.Load())
		}
	}
}

func TestMap_NilAndInvalidArguments(t *testing.T) {
	var called atomic.Int32
	op := func(_ context.Context, x int) (int, error) {
		called.Add(1)
		return x, nil
	}

	_, err := batches.Map[int, int](context.Background(), nil, op)
	require.ErrorIs(t, err, batches.ErrNilArgument)
	require.ErrorIs(t, err, batches.ErrNilSource)

	_, err = batches.Map[int, int](context.Background(), batches.FromSlice([]int{1}), nil)
	require.ErrorIs(t, err, batches.ErrNilArgument)
	require.ErrorIs(t, err, batches.ErrNilOperation)

	_, err = batches.Map(context.Background(), batches.FromSlice([]int{1}), op, batches.WithMaxConcurrency(-1))
	require.ErrorIs(t, err, batches.ErrInvalidArgument)

	_, err = batches.Map(context.Background(), batches.FromSlice([]int{1}), op, batches.WithEstimatedResultSize(-1))
	require.ErrorIs(t, err, batches.ErrInvalidArgument)

	require.Zero(t, called.Load())
}

func TestMap_FailureSequential(t *testing.T) {
	boom := errors.New("boom")
	var called atomic.Int32
	op := func(_ context.Context, x int) (int, error) {
		called.Add(1)
		if x == 4 {
			return 0, boom
		}
		return x, nil
	}

	src := newCloseCounter([]int{0, 1, 2, 3, 4, 5, 6})
	res, err := batches.Map(context.Background(), batches.Source[int](src), op, batches.WithMaxConcurrency(1))
	require.ErrorIs(t, err, boom)
	idx, ok := batches.ExtractItemIndex(err)
	require.True(t, ok)
	require.Equal(t, 4, idx)
	require.Equal(t, []int{0, 1, 2, 3}, res)
	require.EqualValues(t, 5, called.Load(), "no item is pulled after the failure")
	require.EqualValues(t, 1, src.closed.Load())
}

func TestMap_FailureOrdered(t *testing.T) {
	boom := errors.New("boom")
	var called atomic.Int32
	op := func(_ context.Context, x int) (int, error) {
		called.Add(1)
		if x == 4 {
			return 0, boom
		}
		return x, nil
	}

	res, err := batches.Map(context.Background(), batches.FromSlice([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}), op,
		batches.WithMaxConcurrency(3))
	require.ErrorIs(t, err, boom)
	idx, ok := batches.ExtractItemIndex(err)
	require.True(t, ok)
	require.Equal(t, 4, idx)
	// The failing batch is joined in full; its other results are kept in order.
	require.Equal(t, []int{0, 1, 2, 3, 5}, res)
	require.EqualValues(t, 6, called.Load())
}

func TestMap_FailureOrdered_JoinsBatchFailuresInInputOrder(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	op := func(_ context.Context, x int) (int, error) {
		switch x {
		case 1:
			time.Sleep(10 * time.Millisecond)
			return 0, errA
		case 3:
			return 0, errB
		}
		return x, nil
	}

	res, err := batches.Map(context.Background(), batches.FromSlice([]int{0, 1, 2, 3, 4}), op,
		batches.WithMaxConcurrency(4))
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	idx, ok := batches.ExtractItemIndex(err)
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Equal(t, []int{0, 2}, res)
}

func TestMap_FailureUnordered(t *testing.T) {
	boom := errors.New("boom")
	op := func(ctx context.Context, x int) (int, error) {
		if x == 4 {
			return 0, boom
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Millisecond):
			return x, nil
		}
	}

	res, err := batches.Map(context.Background(), batches.FromSlice(seq(50)), op,
		batches.WithMaxConcurrency(4), batches.WithOutOfOrder(true))
	require.ErrorIs(t, err, boom)
	idx, ok := batches.ExtractItemIndex(err)
	require.True(t, ok)
	require.Equal(t, 3, idx)
	require.NotContains(t, res, 0)
	require.Less(t, len(res), 50)
}

func TestMap_PanicIsFailure(t *testing.T) {
	op := func(_ context.Context, x int) (int, error) {
		if x == 2 {
			panic("bad item")
		}
		return x, nil
	}

	for _, opts := range [][]batches.Option{
		{batches.WithMaxConcurrency(1)},
		{batches.WithMaxConcurrency(3)},
		{batches.WithMaxConcurrency(3), batches.WithOutOfOrder(true)},
	} {
		_, err := batches.Map(context.Background(), batches.FromSlice([]int{0, 1, 2, 3}), op, opts...)
		require.ErrorIs(t, err, batches.ErrOperationPanicked)
		idx, ok := batches.ExtractItemIndex(err)
		require.True(t, ok)
		require.Equal(t, 2, idx)
	}
}

func TestMap_SourceError(t *testing.T) {
	disk := errors.New("disk gone")
	newSrc := func() batches.Source[int] {
		n := 0
		return batches.FromFunc(func(context.Context) (int, bool, error) {
			if n == 3 {
				return 0, false, disk
			}
			n++
			return n, true, nil
		}, nil)
	}

	for _, opts := range [][]batches.Option{
		{batches.WithMaxConcurrency(1)},
		{batches.WithMaxConcurrency(2)},
		{batches.WithMaxConcurrency(2), batches.WithOutOfOrder(true)},
	} {
		res, err := batches.Map(context.Background(), newSrc(), double, opts...)
		require.ErrorIs(t, err, batches.ErrSource)
		require.ErrorIs(t, err, disk)
		_, ok := batches.ExtractItemIndex(err)
		require.False(t, ok)
		sort.Ints(res)
		require.Equal(t, []int{2, 4, 6}, res, "operations launched before the source failed are kept")
	}
}

func TestMap_CloseError(t *testing.T) {
	src := newCloseCounter(seq(5))
	src.err = errors.New("close failed")

	res, err := batches.Map(context.Background(), batches.Source[int](src), double, batches.WithMaxConcurrency(2))
	require.ErrorIs(t, err, batches.ErrSource)
	require.ErrorIs(t, err, src.err)
	require.Equal(t, []int{2, 4, 6, 8, 10}, res)
	require.EqualValues(t, 1, src.closed.Load())
}

func TestMap_ClosesSourceOnFailure(t *testing.T) {
	src := newCloseCounter(seq(10))
	_, err := batches.Map(context.Background(), batches.Source[int](src), func(context.Context, int) (int, error) {
		return 0, errors.New("nope")
	}, batches.WithMaxConcurrency(3), batches.WithOutOfOrder(true))
	require.Error(t, err)
	require.EqualValues(t, 1, src.closed.Load())
}

func TestMap_Adapters(t *testing.T) {
	res, err := batches.Map(context.Background(), batches.FromSlice([]int{1, 2, 3}),
		batches.Func(func(x int) (string, error) { return fmt.Sprint(x), nil }),
		batches.WithMaxConcurrency(2))
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, res)

	res2, err := batches.Map(context.Background(), batches.FromSlice([]int{1, 2, 3}),
		batches.Value(func(_ context.Context, x int) int { return -x }))
	require.NoError(t, err)
	require.Equal(t, []int{-1, -2, -3}, res2)

	require.Nil(t, batches.Func[int, int](nil))
	require.Nil(t, batches.Value[int, int](nil))
	require.Nil(t, batches.ActionFunc[int](nil))
}

func TestMap_WithPlan(t *testing.T) {
	plan := batches.NewPlan().WithMaxConcurrency(3).WithOutOfOrder(true)
	res, err := batches.Map(context.Background(), batches.FromSlice(seq(9)), double, plan.Option())
	require.NoError(t, err)
	require.ElementsMatch(t, []int{2, 4, 6, 8, 10, 12, 14, 16, 18}, res)

	_, err = batches.Map(context.Background(), batches.FromSlice(seq(9)), double,
		plan.WithMaxConcurrency(-2).Option())
	require.ErrorIs(t, err, batches.ErrInvalidArgument)
}
