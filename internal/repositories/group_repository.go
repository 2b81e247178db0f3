package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/effisocial/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository defines the interface for group, membership and join
// request operations
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id uint) (*models.Group, error)
	ListGroups(ctx context.Context, filter models.GroupFilter) ([]models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, id uint) error
	AddMember(ctx context.Context, groupID, userID uint) error
	RemoveMember(ctx context.Context, groupID, userID uint) error
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	SetAdmin(ctx context.Context, groupID, userID uint) error
	GetGroupIDsForUser(ctx context.Context, userID uint) ([]uint, error)
	GetPublicGroupIDs(ctx context.Context) ([]uint, error)
	CountGroups(ctx context.Context) (int64, error)

	CreateJoinRequest(ctx context.Context, req *models.GroupJoinRequest) error
	GetJoinRequestByID(ctx context.Context, id uint) (*models.GroupJoinRequest, error)
	FindPendingJoinRequest(ctx context.Context, groupID, userID uint) (*models.GroupJoinRequest, error)
	ListJoinRequests(ctx context.Context, groupID uint, status models.RequestStatus) ([]models.GroupJoinRequest, error)
	AcceptJoinRequest(ctx context.Context, id uint) error
	UpdateJoinRequestStatus(ctx context.Context, id uint, status models.RequestStatus) error
}

// PostgresGroupRepository implements GroupRepository for PostgreSQL
type PostgresGroupRepository struct {
	db *gorm.DB
}

// NewPostgresGroupRepository creates a new PostgresGroupRepository
func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

// CreateGroup stores the group and makes its admin the first member.
func (r *PostgresGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.Privacy == "" {
		group.Privacy = models.PrivacyPublic
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return translate(err)
		}
		if err := tx.Create(&models.GroupMember{GroupID: group.ID, UserID: group.AdminID}).Error; err != nil {
			return translate(err)
		}
		group.Members = []uint{group.AdminID}
		return nil
	})
}

func (r *PostgresGroupRepository) GetGroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, translate(err)
	}
	groups := []models.Group{group}
	if err := r.loadMembers(ctx, groups); err != nil {
		return nil, err
	}
	return &groups[0], nil
}

func (r *PostgresGroupRepository) ListGroups(ctx context.Context, filter models.GroupFilter) ([]models.Group, error) {
	groups := []models.Group{}
	q := r.db.WithContext(ctx).Model(&models.Group{})
	if filter.MemberID != 0 {
		q = q.Where("id IN (?)", r.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", filter.MemberID))
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if err := q.Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// loadMembers fills Members for every group with a single query.
func (r *PostgresGroupRepository) loadMembers(ctx context.Context, groups []models.Group) error {
	if len(groups) == 0 {
		return nil
	}
	ids := make([]uint, len(groups))
	for i := range groups {
		ids[i] = groups[i].ID
		groups[i].Members = []uint{}
	}
	var rows []models.GroupMember
	if err := r.db.WithContext(ctx).Where("group_id IN ?", ids).
		Order("joined_at, user_id").Find(&rows).Error; err != nil {
		return err
	}
	index := make(map[uint]int, len(groups))
	for i := range groups {
		index[groups[i].ID] = i
	}
	for _, row := range rows {
		g := &groups[index[row.GroupID]]
		g.Members = append(g.Members, row.UserID)
	}
	return nil
}

func (r *PostgresGroupRepository) UpdateGroup(ctx context.Context, group *models.Group) error {
	return translate(r.db.WithContext(ctx).Model(group).Select("name", "description", "privacy", "cover_image", "admin_id").Updates(group).Error)
}

// DeleteGroup removes join requests, memberships and the group itself in
// one transaction. Posts live in the document store and are removed by the
// caller beforehand.
func (r *PostgresGroupRepository) DeleteGroup(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupJoinRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresGroupRepository) AddMember(ctx context.Context, groupID, userID uint) error {
	return translate(r.db.WithContext(ctx).Create(&models.GroupMember{GroupID: groupID, UserID: userID}).Error)
}

func (r *PostgresGroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	res := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresGroupRepository) SetAdmin(ctx context.Context, groupID, userID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", groupID).Update("admin_id", userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) GetGroupIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("user_id = ?", userID).Order("group_id").Pluck("group_id", &ids).Error
	return ids, err
}

func (r *PostgresGroupRepository) GetPublicGroupIDs(ctx context.Context) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).Model(&models.Group{}).
		Where("privacy = ?", models.PrivacyPublic).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresGroupRepository) CountGroups(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Group{}).Count(&count).Error
	return count, err
}

func (r *PostgresGroupRepository) CreateJoinRequest(ctx context.Context, req *models.GroupJoinRequest) error {
	req.Status = models.StatusPending
	return translate(r.db.WithContext(ctx).Create(req).Error)
}

func (r *PostgresGroupRepository) GetJoinRequestByID(ctx context.Context, id uint) (*models.GroupJoinRequest, error) {
	var req models.GroupJoinRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *PostgresGroupRepository) FindPendingJoinRequest(ctx context.Context, groupID, userID uint) (*models.GroupJoinRequest, error) {
	var req models.GroupJoinRequest
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, models.StatusPending).
		First(&req).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *PostgresGroupRepository) ListJoinRequests(ctx context.Context, groupID uint, status models.RequestStatus) ([]models.GroupJoinRequest, error) {
	requests := []models.GroupJoinRequest{}
	q := r.db.WithContext(ctx).Where("group_id = ?", groupID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// AcceptJoinRequest marks the request accepted and adds the requester to
// the group in one transaction.
func (r *PostgresGroupRepository) AcceptJoinRequest(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.GroupJoinRequest
		if err := tx.First(&req, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&req).Update("status", models.StatusAccepted).Error; err != nil {
			return err
		}
		member := models.GroupMember{GroupID: req.GroupID, UserID: req.UserID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	})
}

func (r *PostgresGroupRepository) UpdateJoinRequestStatus(ctx context.Context, id uint, status models.RequestStatus) error {
	res := r.db.WithContext(ctx).Model(&models.GroupJoinRequest{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
