package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEach(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	out := make([]int, len(items))
	err := ForEach(context.Background(), items, 0, func(_ context.Context, i, v int) error {
		out[i] = v * v
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16, 25}, out)
}

func TestForEachLimit(t *testing.T) {
	var running, peak atomic.Int32
	err := ForEach(context.Background(), make([]struct{}, 16), 2, func(context.Context, int, struct{}) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestForEachCancelsOnError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach(context.Background(), []int{0, 1}, 0, func(ctx context.Context, i, _ int) error {
		if i == 0 {
			return boom
		}
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, boom)
}
