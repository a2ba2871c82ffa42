package ws

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxOrdering(t *testing.T) {
	o := newOutbox()
	for i := 0; i < 100; i++ {
		o.Push([]byte(fmt.Sprintf("msg-%d", i)))
	}
	o.Close()

	for i := 0; i < 100; i++ {
		msg, ok := o.Pop()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("msg-%d", i), string(msg))
	}
	_, ok := o.Pop()
	assert.False(t, ok)
}

func TestOutboxDrainsBeforeReportingClosed(t *testing.T) {
	o := newOutbox()
	o.Push([]byte("queued"))
	o.Close()

	msg, ok := o.Pop()
	require.True(t, ok, "queued messages must survive Close")
	assert.Equal(t, "queued", string(msg))

	_, ok = o.Pop()
	assert.False(t, ok)
}

func TestOutboxPushAfterCloseDropped(t *testing.T) {
	o := newOutbox()
	o.Close()
	o.Push([]byte("late"))

	_, ok := o.Pop()
	assert.False(t, ok)
}

func TestOutboxCloseIdempotent(t *testing.T) {
	o := newOutbox()
	o.Close()
	o.Close()

	_, ok := o.Pop()
	assert.False(t, ok)
}

func TestOutboxPopBlocksUntilPush(t *testing.T) {
	o := newOutbox()

	got := make(chan []byte, 1)
	go func() {
		msg, ok := o.Pop()
		require.True(t, ok)
		got <- msg
	}()

	time.Sleep(10 * time.Millisecond)
	o.Push([]byte("released"))

	select {
	case msg := <-got:
		assert.Equal(t, "released", string(msg))
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake after Push")
	}
}

func TestOutboxConcurrentProducers(t *testing.T) {
	o := newOutbox()

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				o.Push([]byte(fmt.Sprintf("p%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()
	o.Close()

	count := 0
	for {
		_, ok := o.Pop()
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, producers*perProducer, count, "no pushed message may be dropped")
}
