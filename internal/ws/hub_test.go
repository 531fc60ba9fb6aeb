package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *fakeConn) last() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s Snapshot
	_ = json.Unmarshal(c.messages[len(c.messages)-1], &s)
	return s
}

func startHub(t *testing.T) (*Hub, *int, *sync.Mutex) {
	t.Helper()
	h := NewHub()
	var mu sync.Mutex
	version := 0
	h.SetLoader(Products, func() (interface{}, error) {
		mu.Lock()
		defer mu.Unlock()
		return []int{version}, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h, &version, &mu
}

func TestParseCollection(t *testing.T) {
	c, ok := ParseCollection("invoices")
	assert.True(t, ok)
	assert.Equal(t, Invoices, c)

	_, ok = ParseCollection("users")
	assert.False(t, ok)
}

func TestHub_WatchReceivesInitialAndChanges(t *testing.T) {
	h, version, mu := startHub(t)

	var got []Snapshot
	var gotMu sync.Mutex
	unsubscribe, err := h.Watch(Products, func(s Snapshot) {
		gotMu.Lock()
		got = append(got, s)
		gotMu.Unlock()
	})
	require.NoError(t, err)

	mu.Lock()
	*version = 1
	mu.Unlock()
	h.Publish(Products)

	assert.Eventually(t, func() bool {
		gotMu.Lock()
		defer gotMu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)

	gotMu.Lock()
	assert.Equal(t, []int{0}, got[0].Data)
	assert.Equal(t, []int{1}, got[1].Data)
	gotMu.Unlock()

	unsubscribe()
	h.Publish(Products)
	time.Sleep(50 * time.Millisecond)
	gotMu.Lock()
	assert.Len(t, got, 2)
	gotMu.Unlock()
}

func TestHub_WatchUnknownCollection(t *testing.T) {
	h := NewHub()
	_, err := h.Watch(Suppliers, func(Snapshot) {})
	assert.Error(t, err)
}

func TestHub_StreamsOnlySubscribedCollections(t *testing.T) {
	h, _, _ := startHub(t)
	h.SetLoader(Invoices, func() (interface{}, error) { return []string{}, nil })

	conn := &fakeConn{}
	h.Register <- conn
	h.Subscribe(conn, Products)

	assert.Eventually(t, func() bool { return conn.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, Products, conn.last().Collection)

	h.Publish(Invoices)
	h.Publish(Products)
	assert.Eventually(t, func() bool { return conn.count() == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, Products, conn.last().Collection)

	h.Unregister <- conn
	assert.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.closed
	}, time.Second, 10*time.Millisecond)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	// not running: nothing drains the queue
	h := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Publish(Products, Invoices)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	assert.Equal(t, cap(h.changes), len(h.changes))
}
