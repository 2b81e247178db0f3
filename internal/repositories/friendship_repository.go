package repositories

import (
	"context"
	"time"

	"github.com/anonto42/effisocial/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error
	GetFriendRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	FindPendingRequest(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error)
	ListPendingIncoming(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	ListPendingOutgoing(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	ListPendingTouching(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, id uint) error
	UpdateFriendRequestStatus(ctx context.Context, id uint, status models.RequestStatus) error
	DeleteFriendRequest(ctx context.Context, id uint) error
	GetFriendIDs(ctx context.Context, userID uint) ([]uint, error)
	AreFriends(ctx context.Context, userID, otherID uint) (bool, error)
	RemoveFriendship(ctx context.Context, userID, otherID uint) error
	CountFriendships(ctx context.Context) (int64, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// CreateFriendRequest inserts a pending request. A second pending request for
// the same ordered pair is rejected by the partial unique index.
func (r *PostgresFriendshipRepository) CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	req.Status = models.StatusPending
	return translate(r.db.WithContext(ctx).Create(req).Error)
}

func (r *PostgresFriendshipRepository) GetFriendRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *PostgresFriendshipRepository) FindPendingRequest(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.StatusPending).
		First(&req).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *PostgresFriendshipRepository) ListPendingIncoming(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return r.listPending(ctx, "receiver_id = ?", userID)
}

func (r *PostgresFriendshipRepository) ListPendingOutgoing(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return r.listPending(ctx, "sender_id = ?", userID)
}

func (r *PostgresFriendshipRepository) ListPendingTouching(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return r.listPending(ctx, "(sender_id = ? OR receiver_id = ?)", userID, userID)
}

func (r *PostgresFriendshipRepository) listPending(ctx context.Context, cond string, args ...interface{}) ([]models.FriendRequest, error) {
	requests := []models.FriendRequest{}
	err := r.db.WithContext(ctx).
		Where(cond, args...).
		Where("status = ?", models.StatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// AcceptFriendRequest marks the request accepted and appends each user to
// the other's friend list in one transaction. Appending is idempotent. A
// pending request in the opposite direction is accepted along with it.
func (r *PostgresFriendshipRepository) AcceptFriendRequest(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.FriendRequest
		if err := tx.First(&req, id).Error; err != nil {
			return translate(err)
		}
		err := tx.Model(&models.FriendRequest{}).
			Where("id = ? OR (sender_id = ? AND receiver_id = ? AND status = ?)",
				req.ID, req.ReceiverID, req.SenderID, models.StatusPending).
			Update("status", models.StatusAccepted).Error
		if err != nil {
			return err
		}
		now := time.Now()
		rows := []models.Friendship{
			{UserID: req.SenderID, FriendID: req.ReceiverID, CreatedAt: now},
			{UserID: req.ReceiverID, FriendID: req.SenderID, CreatedAt: now},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

func (r *PostgresFriendshipRepository) UpdateFriendRequestStatus(ctx context.Context, id uint, status models.RequestStatus) error {
	res := r.db.WithContext(ctx).Model(&models.FriendRequest{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFriendshipRepository) DeleteFriendRequest(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.FriendRequest{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFriendshipRepository) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ?", userID).Order("friend_id").Pluck("friend_id", &ids).Error
	return ids, err
}

func (r *PostgresFriendshipRepository) AreFriends(ctx context.Context, userID, otherID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, otherID).Count(&count).Error
	return count > 0, err
}

// RemoveFriendship deletes both directions of a friendship.
func (r *PostgresFriendshipRepository) RemoveFriendship(ctx context.Context, userID, otherID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, otherID, otherID, userID).Delete(&models.Friendship{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountFriendships counts symmetric friendships, not directed rows.
func (r *PostgresFriendshipRepository) CountFriendships(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).Count(&count).Error
	return count / 2, err
}
