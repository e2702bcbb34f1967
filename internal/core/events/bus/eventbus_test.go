package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	mu             sync.Mutex
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.mu.Lock()
	o.publishCount++
	o.mu.Unlock()
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.mu.Lock()
	o.deliveredCount += handlers
	o.lastErr = err
	o.mu.Unlock()
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	sub, err := b.Subscribe("bt.node.entered", func(e Event) error {
		got = e
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID())
	assert.True(t, sub.IsActive())

	require.NoError(t, b.Publish(NewEvent("bt.node.entered", "tree-1", 123, map[string]any{"k": "v"})))
	require.NotNil(t, got)
	assert.Equal(t, "tree-1", got.Source())
	assert.Equal(t, 123, got.Data())
	assert.Equal(t, "v", got.Metadata()["k"])
	assert.False(t, got.Timestamp().IsZero())
}

func TestSubscribeValidation(t *testing.T) {
	b := New()
	_, err := b.Subscribe("", func(Event) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyEventType)
	_, err = b.Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	assert.ErrorIs(t, b.Publish(nil), ErrNilEvent)
}

func TestDeliveryOrder(t *testing.T) {
	b := New()
	var order []string
	_, _ = b.Subscribe(Wildcard, func(Event) error { order = append(order, "wild"); return nil })
	_, _ = b.Subscribe("ev", func(Event) error { order = append(order, "first"); return nil })
	_, _ = b.Subscribe("ev", func(Event) error { order = append(order, "second"); return nil })
	_, _ = b.Subscribe("other", func(Event) error { order = append(order, "other"); return nil })

	require.NoError(t, b.Publish(NewEvent("ev", "src", nil, nil)))
	assert.Equal(t, []string{"first", "second", "wild"}, order)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe("ev", func(Event) error { count++; return nil })
	require.NoError(t, err)

	_ = b.Publish(NewEvent("ev", "src", nil, nil))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	_ = b.Publish(NewEvent("ev", "src", nil, nil))

	assert.Equal(t, 1, count)
	assert.False(t, sub.IsActive())
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("ev", func(Event) error { return errA })
	_, _ = b.Subscribe("ev", func(Event) error { return errB })

	err := b.Publish(NewEvent("ev", "src", nil, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	err = b.PublishBatch(NewEvent("ev", "src", nil, nil), NewEvent("none", "src", nil, nil))
	assert.ErrorIs(t, err, errA)
}

func TestPublishWithFilters(t *testing.T) {
	b := New()
	count := 0
	_, _ = b.Subscribe("ev", func(Event) error { count++; return nil })
	obs := &testObserver{}
	b.AddObserver(obs)

	onlyTree := func(e Event) bool { return e.Source() == "tree-1" }
	require.NoError(t, b.PublishWithFilters(NewEvent("ev", "tree-2", nil, nil), onlyTree))
	require.NoError(t, b.PublishWithFilters(NewEvent("ev", "tree-1", nil, nil), onlyTree))

	assert.Equal(t, 1, count)
	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.DroppedByFilters)
	assert.Equal(t, uint64(1), m.Published)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	assert.Zero(t, b.GetMetrics().Published)

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(1), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	assert.Equal(t, 1, obs.publishCount)
}

func TestConcurrentPublish(t *testing.T) {
	b := New()
	var mu sync.Mutex
	count := 0
	_, _ = b.Subscribe(Wildcard, func(Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.Publish(NewEvent("ev", "src", j, nil))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, count)
}
