package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
)

// MessageStore is an in-memory MessageRepository. Messages are kept in
// insertion order.
type MessageStore struct {
	mu       sync.Mutex
	messages []models.Message
	Now      func() time.Time
}

func NewMessageStore() *MessageStore {
	return &MessageStore{Now: time.Now}
}

var _ repositories.MessageRepository = (*MessageStore)(nil)

func (s *MessageStore) CreateMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = s.Now().UTC()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *MessageStore) index(id string) (int, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, repositories.ErrInvalidID
	}
	for i := range s.messages {
		if s.messages[i].ID == objID {
			return i, nil
		}
	}
	return 0, repositories.ErrNotFound
}

func (s *MessageStore) GetMessageByID(_ context.Context, id string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.index(id)
	if err != nil {
		return nil, err
	}
	msg := s.messages[i]
	return &msg, nil
}

func between(m *models.Message, a, b uint) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func (s *MessageStore) ListConversation(_ context.Context, userID, otherID uint, skip, limit int64) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Message{}
	var seen int64
	for i := range s.messages {
		if !between(&s.messages[i], userID, otherID) {
			continue
		}
		seen++
		if seen <= skip {
			continue
		}
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		out = append(out, s.messages[i])
	}
	return out, nil
}

func (s *MessageStore) MarkConversationRead(_ context.Context, receiverID, senderID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (s *MessageStore) ListConversations(_ context.Context, userID uint) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser := make(map[uint]*models.Conversation)
	order := make(map[uint]int)
	for i := range s.messages {
		m := s.messages[i]
		var other uint
		switch userID {
		case m.SenderID:
			other = m.ReceiverID
		case m.ReceiverID:
			other = m.SenderID
		default:
			continue
		}
		c, ok := byUser[other]
		if !ok {
			c = &models.Conversation{UserID: other}
			byUser[other] = c
		}
		c.LastMessage = m
		order[other] = i
		if m.ReceiverID == userID && !m.Read {
			c.UnreadCount++
		}
	}
	out := make([]models.Conversation, 0, len(byUser))
	for _, c := range byUser {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].UserID] > order[out[j].UserID] })
	return out, nil
}

func (s *MessageStore) DeleteMessage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.index(id)
	if err != nil {
		return err
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	return nil
}

func (s *MessageStore) CountMessages(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.messages)), nil
}

func (s *MessageStore) CountSentBy(_ context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.messages {
		if s.messages[i].SenderID == userID {
			n++
		}
	}
	return n, nil
}
