package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// EventError is the topic pipeline failures are published on, and the
	// event name clients use to report their own errors.
	EventError = "error"
	// EventDisplayError is what subscribers receive.
	EventDisplayError = "display-error"

	// DefaultWriteTimeout bounds a single write to one subscriber.
	DefaultWriteTimeout = 5 * time.Second
)

// Event is the JSON frame exchanged with subscribers.
type Event struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Conn is the subset of a websocket connection the hub needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type subscriber struct {
	conn Conn
	mu   sync.Mutex
}

func (s *subscriber) send(ev Event, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(ev)
}

// Hub fans published errors out to every connected subscriber. Nothing is
// buffered: a subscriber only sees events published while it is connected.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	logger zerolog.Logger

	// WriteTimeout bounds each write so a stalled viewer is dropped instead
	// of holding up the publisher.
	WriteTimeout time.Duration

	// OnCountChange, when set, is called with the subscriber count after
	// every join and leave.
	OnCountChange func(int)
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:         make(map[*subscriber]struct{}),
		logger:       logger.With().Str("component", "notify").Logger(),
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Publish sends msg as a display-error event to all current subscribers.
// Subscribers whose write fails are dropped.
func (h *Hub) Publish(msg string) {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	ev := Event{Event: EventDisplayError, Data: msg}
	for _, s := range targets {
		if err := s.send(ev, h.WriteTimeout); err != nil {
			h.logger.Warn().Err(err).Msg("dropping subscriber after failed write")
			h.remove(s)
			_ = s.conn.Close()
		}
	}
}

// Len reports the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Serve registers conn and reads from it until it closes. An inbound error
// event is echoed back to the same connection only.
func (h *Hub) Serve(conn Conn) {
	s := &subscriber{conn: conn}
	h.add(s)
	defer h.remove(s)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			h.logger.Debug().Err(err).Msg("subscriber disconnected")
			return
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			h.logger.Debug().Err(err).Msg("ignoring malformed frame")
			continue
		}
		if ev.Event != EventError {
			continue
		}
		if err := s.send(Event{Event: EventDisplayError, Data: ev.Data}, h.WriteTimeout); err != nil {
			h.logger.Warn().Err(err).Msg("echo write failed")
			return
		}
	}
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	h.notifyCount(n)
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, s)
	n := len(h.subs)
	h.mu.Unlock()
	h.notifyCount(n)
}

func (h *Hub) notifyCount(n int) {
	if h.OnCountChange != nil {
		h.OnCountChange(n)
	}
}
