package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
)

type MessageService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	media    MediaStore
	notifier Notifier
}

func NewMessageService(messages repositories.MessageRepository, users repositories.UserRepository, media MediaStore, notifier Notifier) *MessageService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MessageService{
		messages: messages,
		users:    users,
		media:    media,
		notifier: notifier,
	}
}

// Send stores a direct message and pushes it to the receiver's sessions.
func (s *MessageService) Send(ctx context.Context, actor Actor, req models.SendMessageRequest, media *multipart.FileHeader) (*models.Message, error) {
	if req.ReceiverID == actor.ID {
		return nil, Validation("cannot send a message to yourself")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" && media == nil {
		return nil, Validation("message needs content or media")
	}
	if _, err := s.users.GetUserByID(ctx, req.ReceiverID); err != nil {
		return nil, notFoundOr(err, "receiver not found", "get receiver")
	}

	saved, err := saveMedia(s.media, media, true)
	if err != nil {
		return nil, err
	}
	msg := &models.Message{
		SenderID:   actor.ID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	}
	if saved != nil {
		msg.Media = saved.URL
		msg.MediaType = models.MediaType(saved.Kind)
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		if saved != nil {
			removeMedia(s.media, saved.URL)
		}
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.notifier.Notify(msg.ReceiverID, EventMessageNew, msg)
	return msg, nil
}

// Conversation returns the exchange with another user, oldest first, and
// marks what the caller received as read.
func (s *MessageService) Conversation(ctx context.Context, actor Actor, otherID uint, page, limit int64) ([]models.Message, error) {
	if _, err := s.users.GetUserByID(ctx, otherID); err != nil {
		return nil, notFoundOr(err, "user not found", "get user")
	}
	if limit < 1 || limit > maxPageSize {
		limit = 0
	}
	var skip int64
	if page > 1 && limit > 0 {
		skip = (page - 1) * limit
	}

	messages, err := s.messages.ListConversation(ctx, actor.ID, otherID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	if _, err := s.messages.MarkConversationRead(ctx, actor.ID, otherID); err != nil {
		return nil, fmt.Errorf("mark conversation read: %w", err)
	}
	for i := range messages {
		if messages[i].ReceiverID == actor.ID {
			messages[i].Read = true
		}
	}
	return messages, nil
}

// Conversations lists the latest message per counterpart.
func (s *MessageService) Conversations(ctx context.Context, actor Actor) ([]models.Conversation, error) {
	conversations, err := s.messages.ListConversations(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	ids := make([]uint, len(conversations))
	for i := range conversations {
		ids[i] = conversations[i].UserID
	}
	summaries, err := summariesByID(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	for i := range conversations {
		conversations[i].User = summaries[conversations[i].UserID]
	}
	return conversations, nil
}

func (s *MessageService) Delete(ctx context.Context, actor Actor, id string) error {
	msg, err := s.messages.GetMessageByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "message not found", "get message")
	}
	if msg.SenderID != actor.ID {
		return Forbidden("only the sender can delete this message")
	}
	if err := s.messages.DeleteMessage(ctx, id); err != nil {
		return notFoundOr(err, "message not found", "delete message")
	}
	removeMedia(s.media, msg.Media)
	return nil
}
