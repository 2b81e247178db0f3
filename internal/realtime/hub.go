package realtime

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anonto42/effisocial/backend/pkg/log"
	"github.com/anonto42/effisocial/backend/pkg/metrics"
)

// Event names carried in the "event" field of a frame.
const (
	EventJoin            = "join"
	EventLeave           = "leave"
	EventUserOnline      = "user:online"
	EventMessageNew      = "message:new"
	EventNotificationNew = "notification:new"
	EventError           = "error"
)

const sendBufferSize = 64

// Frame is the JSON envelope exchanged with clients.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Envelope is a targeted event travelling between instances.
type Envelope struct {
	UserID uint            `json:"userId"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// Relay fans targeted events out to every API instance, including the one
// that published them.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(ctx context.Context, deliver func(Envelope)) error
}

// Session is one connected client. A user may hold several.
type Session struct {
	ID     string
	UserID uint
	send   chan []byte
}

// Send exposes the outbound queue to the connection writer.
func (s *Session) Send() <-chan []byte {
	return s.send
}

// Hub tracks connected sessions and which users are present.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	presence map[uint]map[string]*Session
	relay    Relay
	logger   zerolog.Logger
}

func NewHub(relay Relay) *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		presence: make(map[uint]map[string]*Session),
		relay:    relay,
		logger:   log.WithComponent("realtime"),
	}
}

// Run consumes the relay until ctx is cancelled. It returns immediately when
// no relay is configured.
func (h *Hub) Run(ctx context.Context) error {
	if h.relay == nil {
		return nil
	}
	return h.relay.Subscribe(ctx, func(env Envelope) {
		h.deliver(env.UserID, encodeFrame(env.Event, env.Data))
	})
}

// Register creates a connected session for an authenticated user. The user
// is not present until the session joins.
func (h *Hub) Register(userID uint) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
	h.mu.Lock()
	h.sessions[s.ID] = s
	metrics.RealtimeSessions.Set(float64(len(h.sessions)))
	h.mu.Unlock()

	h.logger.Debug().Str("session", s.ID).Uint("user_id", userID).Msg("session registered")
	return s
}

// Join marks the session's user present and broadcasts the online list.
func (h *Hub) Join(s *Session) {
	var slow []*Session
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; ok {
		byUser, ok := h.presence[s.UserID]
		if !ok {
			byUser = make(map[string]*Session)
			h.presence[s.UserID] = byUser
		}
		byUser[s.ID] = s
		slow = h.broadcastOnlineLocked()
	}
	h.mu.Unlock()
	h.drop(slow)
}

// Leave removes the session from presence. The user stays online while any
// other session of theirs is joined.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	slow := h.leaveLocked(s)
	h.mu.Unlock()
	h.drop(slow)
}

// Unregister leaves and closes the session. Safe to call more than once.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.ID)
	slow := h.leaveLocked(s)
	close(s.send)
	metrics.RealtimeSessions.Set(float64(len(h.sessions)))
	h.mu.Unlock()

	h.logger.Debug().Str("session", s.ID).Uint("user_id", s.UserID).Msg("session closed")
	h.drop(slow)
}

func (h *Hub) leaveLocked(s *Session) []*Session {
	byUser, ok := h.presence[s.UserID]
	if !ok {
		return nil
	}
	if _, ok := byUser[s.ID]; !ok {
		return nil
	}
	delete(byUser, s.ID)
	if len(byUser) > 0 {
		return nil
	}
	delete(h.presence, s.UserID)
	return h.broadcastOnlineLocked()
}

// broadcastOnlineLocked queues user:online on every connected session and
// returns the sessions that could not keep up.
func (h *Hub) broadcastOnlineLocked() []*Session {
	metrics.OnlineUsers.Set(float64(len(h.presence)))
	data, _ := json.Marshal(h.onlineLocked())
	frame := encodeFrame(EventUserOnline, data)

	var slow []*Session
	for _, s := range h.sessions {
		if !trySend(s, frame) {
			slow = append(slow, s)
		}
	}
	return slow
}

func (h *Hub) onlineLocked() []uint {
	ids := make([]uint, 0, len(h.presence))
	for id := range h.presence {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Online returns the ids of present users in ascending order.
func (h *Hub) Online() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineLocked()
}

func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.presence[userID]
	return ok
}

// Notify pushes an event to every joined session of the user. With a relay
// the event goes through it so sessions on other instances receive it too.
// Absent users are skipped.
func (h *Hub) Notify(userID uint, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("failed to encode payload")
		return
	}

	if h.relay != nil {
		err := h.relay.Publish(context.Background(), Envelope{UserID: userID, Event: event, Data: data})
		if err == nil {
			return
		}
		h.logger.Warn().Err(err).Str("event", event).Msg("relay publish failed, delivering locally")
	}
	h.deliver(userID, encodeFrame(event, data))
}

func (h *Hub) deliver(userID uint, frame []byte) {
	var slow []*Session
	h.mu.RLock()
	for _, s := range h.presence[userID] {
		if !trySend(s, frame) {
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()
	h.drop(slow)
}

// SendError queues an error frame on a single session.
func (h *Hub) SendError(s *Session, message string) {
	data, _ := json.Marshal(map[string]string{"message": message})
	h.mu.RLock()
	ok := true
	if _, registered := h.sessions[s.ID]; registered {
		ok = trySend(s, encodeFrame(EventError, data))
	}
	h.mu.RUnlock()
	if !ok {
		h.drop([]*Session{s})
	}
}

func (h *Hub) drop(slow []*Session) {
	for _, s := range slow {
		h.logger.Warn().Str("session", s.ID).Uint("user_id", s.UserID).Msg("dropping slow session")
		metrics.RealtimeDroppedSessions.Inc()
		h.Unregister(s)
	}
}

// trySend must be called with the hub lock held so the channel cannot be
// closed concurrently.
func trySend(s *Session, frame []byte) bool {
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func encodeFrame(event string, data json.RawMessage) []byte {
	b, _ := json.Marshal(Frame{Event: event, Data: data})
	metrics.RealtimeEventsTotal.WithLabelValues(event).Inc()
	return b
}
