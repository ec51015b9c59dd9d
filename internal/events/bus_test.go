package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinged struct{ n int }

type ponged struct{ s string }

func TestPublishRoutesByType(t *testing.T) {
	b := New()
	var pings []int
	var pongs []string

	Subscribe(b, func(e pinged) { pings = append(pings, e.n) })
	Subscribe(b, func(e ponged) { pongs = append(pongs, e.s) })

	Publish(b, pinged{n: 1})
	Publish(b, ponged{s: "a"})
	Publish(b, pinged{n: 2})

	assert.Equal(t, []int{1, 2}, pings)
	assert.Equal(t, []string{"a"}, pongs)
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	b := New()
	var order []string
	Subscribe(b, func(pinged) { order = append(order, "first") })
	Subscribe(b, func(pinged) { order = append(order, "second") })

	Publish(b, pinged{})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	stop := Subscribe(b, func(pinged) { calls++ })
	require.Equal(t, 1, Subscribers[pinged](b))

	Publish(b, pinged{})
	stop()
	Publish(b, pinged{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, Subscribers[pinged](b))

	// second call is harmless
	stop()
}

func TestNilBusIsNoop(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() {
		stop := Subscribe(b, func(pinged) {})
		Publish(b, pinged{n: 1})
		stop()
	})
	assert.Equal(t, 0, Subscribers[pinged](b))
}

func TestZeroValueBus(t *testing.T) {
	var b Bus
	got := 0
	Subscribe(&b, func(e pinged) { got = e.n })
	Publish(&b, pinged{n: 7})
	assert.Equal(t, 7, got)
}

func TestHandlerMayPublish(t *testing.T) {
	b := New()
	var got string
	Subscribe(b, func(e pinged) { Publish(b, ponged{s: "from ping"}) })
	Subscribe(b, func(e ponged) { got = e.s })

	Publish(b, pinged{})

	assert.Equal(t, "from ping", got)
}

func TestConcurrentPublish(t *testing.T) {
	b := New()
	var mu sync.Mutex
	total := 0
	Subscribe(b, func(e pinged) {
		mu.Lock()
		total += e.n
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Publish(b, pinged{n: 1})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, total)
}

func TestNotifyAndFocus(t *testing.T) {
	b := New()
	var notices []Notice
	var focus []Pane
	Subscribe(b, func(n Notice) { notices = append(notices, n) })
	Subscribe(b, func(f Focus) { focus = append(focus, f.Pane) })

	Notify(b, Warning, "careful")
	RequestFocus(b, PaneSecrets)

	require.Len(t, notices, 1)
	assert.Equal(t, Warning, notices[0].Kind)
	assert.Equal(t, "careful", notices[0].Message)
	assert.Equal(t, []Pane{PaneSecrets}, focus)
}

func TestKindAndPaneStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{Info.String(), "info"},
		{Success.String(), "success"},
		{Warning.String(), "warning"},
		{Error.String(), "error"},
		{PaneFilter.String(), "filter"},
		{PaneSecrets.String(), "secrets"},
		{PaneVersions.String(), "versions"},
		{PaneProperties.String(), "properties"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
}
