package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"agristock/internal/logger"
)

// Collection names a live view clients can subscribe to
type Collection string

const (
	Products  Collection = "products"
	Invoices  Collection = "invoices"
	Purchases Collection = "purchases"
	Customers Collection = "customers"
	Suppliers Collection = "suppliers"
)

// ParseCollection validates a collection name sent by a client
func ParseCollection(s string) (Collection, bool) {
	switch c := Collection(s); c {
	case Products, Invoices, Purchases, Customers, Suppliers:
		return c, true
	}
	return "", false
}

// Snapshot is the full committed state of one collection
type Snapshot struct {
	Collection Collection  `json:"collection"`
	Data       interface{} `json:"data"`
}

// Loader reads the committed state of a collection
type Loader func() (interface{}, error)

// Conn is the part of a websocket connection the hub writes to
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type subscription struct {
	conn       Conn
	collection Collection
}

type Hub struct {
	Register   chan Conn
	Unregister chan Conn
	subscribe  chan subscription
	changes    chan Collection

	// clients is only touched by Run
	clients map[Conn]map[Collection]bool

	mu        sync.RWMutex
	loaders   map[Collection]Loader
	listeners map[Collection]map[uint64]func(Snapshot)
	nextID    uint64

	log zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan Conn),
		Unregister: make(chan Conn),
		subscribe:  make(chan subscription),
		changes:    make(chan Collection, 256),
		clients:    make(map[Conn]map[Collection]bool),
		loaders:    make(map[Collection]Loader),
		listeners:  make(map[Collection]map[uint64]func(Snapshot)),
		log:        logger.WithComponent("ws"),
	}
}

// SetLoader installs the reader used to build snapshots of c
func (h *Hub) SetLoader(c Collection, l Loader) {
	h.mu.Lock()
	h.loaders[c] = l
	h.mu.Unlock()
}

// Publish queues a refresh of each collection. Call it only after the
// transaction that changed them has committed. It never blocks; when the
// queue is full the refresh is dropped and logged.
func (h *Hub) Publish(collections ...Collection) {
	for _, c := range collections {
		select {
		case h.changes <- c:
		default:
			h.log.Warn().Str("collection", string(c)).Msg("refresh queue full, change dropped")
		}
	}
}

// Watch registers an in-process listener. onChange is called once with the
// current snapshot, then after every published change. The returned func
// removes the listener.
func (h *Hub) Watch(c Collection, onChange func(Snapshot)) (func(), error) {
	snap, err := h.load(c)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.listeners[c] == nil {
		h.listeners[c] = make(map[uint64]func(Snapshot))
	}
	h.listeners[c][id] = onChange
	h.mu.Unlock()

	onChange(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners[c], id)
			h.mu.Unlock()
		})
	}, nil
}

// Subscribe asks the hub to stream c to a connected client
func (h *Hub) Subscribe(conn Conn, c Collection) {
	h.subscribe <- subscription{conn: conn, collection: c}
}

func (h *Hub) load(c Collection) (Snapshot, error) {
	h.mu.RLock()
	l, ok := h.loaders[c]
	h.mu.RUnlock()
	if !ok {
		return Snapshot{}, fmt.Errorf("no loader for collection %q", c)
	}
	data, err := l()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Collection: c, Data: data}, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			return

		case conn := <-h.Register:
			h.clients[conn] = make(map[Collection]bool)
			h.log.Debug().Int("clients", len(h.clients)).Msg("websocket client connected")

		case conn := <-h.Unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}

		case sub := <-h.subscribe:
			subs, ok := h.clients[sub.conn]
			if !ok {
				continue
			}
			subs[sub.collection] = true
			snap, err := h.load(sub.collection)
			if err != nil {
				h.log.Error().Err(err).Str("collection", string(sub.collection)).Msg("snapshot load failed")
				continue
			}
			h.send(sub.conn, snap)

		case c := <-h.changes:
			snap, err := h.load(c)
			if err != nil {
				h.log.Error().Err(err).Str("collection", string(c)).Msg("snapshot load failed")
				continue
			}
			h.notify(snap)
			for conn, subs := range h.clients {
				if subs[c] {
					h.send(conn, snap)
				}
			}
		}
	}
}

func (h *Hub) notify(snap Snapshot) {
	h.mu.RLock()
	fns := make([]func(Snapshot), 0, len(h.listeners[snap.Collection]))
	for _, fn := range h.listeners[snap.Collection] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (h *Hub) send(conn Conn, snap Snapshot) {
	msg, err := json.Marshal(snap)
	if err != nil {
		h.log.Error().Err(err).Msg("snapshot encode failed")
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		conn.Close()
		delete(h.clients, conn)
	}
}
