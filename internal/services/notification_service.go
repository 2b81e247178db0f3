package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
	"github.com/anonto42/effisocial/backend/pkg/log"
)

// Realtime event names pushed by the services.
const (
	EventMessageNew      = "message:new"
	EventNotificationNew = "notification:new"
)

// Notifier pushes an event to a user's live sessions. Delivery is best
// effort: absent users simply miss the push.
type Notifier interface {
	Notify(userID uint, event string, payload interface{})
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Notify(uint, string, interface{}) {}

// NotificationPage is one page of a user's inbox.
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Unread        int64                 `json:"unread"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

type NotificationService struct {
	repo     repositories.NotificationRepository
	notifier Notifier
	logger   zerolog.Logger
}

func NewNotificationService(repo repositories.NotificationRepository, notifier Notifier) *NotificationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &NotificationService{
		repo:     repo,
		notifier: notifier,
		logger:   log.WithComponent("notifications"),
	}
}

// Record stores the notification and pushes it to the recipient. Failures
// are logged and never fail the operation that triggered them.
func (s *NotificationService) Record(ctx context.Context, n *models.Notification) {
	if n.RecipientID == 0 || n.RecipientID == n.ActorID {
		return
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Error().Err(err).
			Str("type", string(n.Type)).
			Uint("recipient_id", n.RecipientID).
			Msg("failed to store notification")
		return
	}
	s.notifier.Notify(n.RecipientID, EventNotificationNew, n)
}

func (s *NotificationService) List(ctx context.Context, userID uint, page, limit int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := s.repo.GetByRecipientID(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}
	return &NotificationPage{
		Notifications: items,
		Total:         total,
		Unread:        unread,
		Page:          page,
		Limit:         limit,
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	err := s.repo.MarkAsRead(ctx, id, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("notification not found")
	}
	return err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
