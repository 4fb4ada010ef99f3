package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lanchat/internal/types"
)

func TestBusDeliversInPublishOrder(t *testing.T) {
	b := NewBus()
	defer b.Close()

	b.Publish(ErrorEvent("first"))
	b.Publish(ErrorEvent("second"))
	b.Publish(ErrorEvent("third"))

	var got []string
	for i := 0; i < 3; i++ {
		ev := <-b.Events()
		got = append(got, ev.Error)
	}
	require.Equal(t, []string{"first", "second", "third"}, got)
}

func TestBusHandlesConcurrentPublishers(t *testing.T) {
	b := NewBus()
	defer b.Close()

	const producers = 10
	const perProducer = 50

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				b.Publish(NetworkStatusChangedEvent(true))
			}
		}()
	}

	done := make(chan struct{})
	count := 0
	go func() {
		for range b.Events() {
			count++
			if count == producers*perProducer {
				close(done)
				return
			}
		}
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for all events")
	}
	require.Equal(t, producers*perProducer, count)
}

func TestBusCloseDrainsThenClosesChannel(t *testing.T) {
	b := NewBus()
	b.Publish(PeerDisconnected(types.NewID()))
	b.Close()

	ev, ok := <-b.Events()
	require.True(t, ok)
	require.Equal(t, KindPeerDisconnected, ev.Kind)

	_, ok = <-b.Events()
	require.False(t, ok)
}

func TestBusPublishAfterCloseIsNoop(t *testing.T) {
	b := NewBus()
	b.Close()
	<-b.Events() // drains to closed

	require.NotPanics(t, func() {
		b.Publish(ErrorEvent("dropped"))
	})
}
