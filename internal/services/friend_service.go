package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
)

const searchLimit = 20

// FriendService runs the friend-request state machine:
// pending -> accepted | rejected | cancelled (deleted).
type FriendService struct {
	users         repositories.UserRepository
	friendships   repositories.FriendshipRepository
	notifications *NotificationService
}

func NewFriendService(users repositories.UserRepository, friendships repositories.FriendshipRepository, notifications *NotificationService) *FriendService {
	return &FriendService{
		users:         users,
		friendships:   friendships,
		notifications: notifications,
	}
}

func (s *FriendService) SendFriendRequest(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, Validation("cannot send a friend request to yourself")
	}
	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "get sender")
	}
	if _, err := s.users.GetUserByID(ctx, receiverID); err != nil {
		return nil, notFoundOr(err, "user not found", "get receiver")
	}

	friends, err := s.friendships.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if friends {
		return nil, Conflict("already friends")
	}

	if _, err := s.friendships.FindPendingRequest(ctx, senderID, receiverID); err == nil {
		return nil, Conflict("friend request already sent")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("check pending request: %w", err)
	}

	req := &models.FriendRequest{SenderID: senderID, ReceiverID: receiverID}
	if err := s.friendships.CreateFriendRequest(ctx, req); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Conflict("friend request already sent")
		}
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	s.notifications.Record(ctx, &models.Notification{
		Type:        models.NotifyFriendRequest,
		ActorID:     senderID,
		RecipientID: receiverID,
		TargetID:    req.ID,
		TargetType:  "friend_request",
		Message:     sender.Username + " sent you a friend request",
	})
	return req, nil
}

// AcceptFriendRequest makes sender and receiver friends. Accepting an
// already accepted request repeats the idempotent append and succeeds.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, userID, requestID uint) (*models.FriendRequest, error) {
	req, err := s.friendships.GetFriendRequestByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "friend request not found", "get friend request")
	}
	if req.ReceiverID != userID {
		return nil, Forbidden("only the receiver can accept this friend request")
	}
	if req.Status == models.StatusRejected {
		return nil, Conflict("friend request has already been rejected")
	}

	wasPending := req.Status == models.StatusPending
	if err := s.friendships.AcceptFriendRequest(ctx, req.ID); err != nil {
		return nil, notFoundOr(err, "friend request not found", "accept friend request")
	}
	req.Status = models.StatusAccepted

	if wasPending {
		receiver, err := s.users.GetUserByID(ctx, userID)
		if err == nil {
			s.notifications.Record(ctx, &models.Notification{
				Type:        models.NotifyFriendAccepted,
				ActorID:     userID,
				RecipientID: req.SenderID,
				TargetID:    req.ID,
				TargetType:  "friend_request",
				Message:     receiver.Username + " accepted your friend request",
			})
		}
	}
	return req, nil
}

func (s *FriendService) RejectFriendRequest(ctx context.Context, userID, requestID uint) (*models.FriendRequest, error) {
	req, err := s.friendships.GetFriendRequestByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "friend request not found", "get friend request")
	}
	if req.ReceiverID != userID {
		return nil, Forbidden("only the receiver can reject this friend request")
	}
	if req.Status != models.StatusPending {
		return nil, Conflict("friend request is no longer pending")
	}
	if err := s.friendships.UpdateFriendRequestStatus(ctx, req.ID, models.StatusRejected); err != nil {
		return nil, notFoundOr(err, "friend request not found", "reject friend request")
	}
	req.Status = models.StatusRejected
	return req, nil
}

// CancelFriendRequest withdraws a pending request by deleting it.
func (s *FriendService) CancelFriendRequest(ctx context.Context, userID, requestID uint) error {
	req, err := s.friendships.GetFriendRequestByID(ctx, requestID)
	if err != nil {
		return notFoundOr(err, "friend request not found", "get friend request")
	}
	if req.SenderID != userID {
		return Forbidden("only the sender can cancel this friend request")
	}
	if req.Status != models.StatusPending {
		return Conflict("friend request is no longer pending")
	}
	return notFoundOr(s.friendships.DeleteFriendRequest(ctx, req.ID), "friend request not found", "delete friend request")
}

func (s *FriendService) ListIncoming(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	requests, err := s.friendships.ListPendingIncoming(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return s.views(ctx, requests)
}

func (s *FriendService) ListOutgoing(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	requests, err := s.friendships.ListPendingOutgoing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list outgoing requests: %w", err)
	}
	return s.views(ctx, requests)
}

func (s *FriendService) views(ctx context.Context, requests []models.FriendRequest) ([]models.FriendRequestView, error) {
	ids := make([]uint, 0, len(requests)*2)
	for _, r := range requests {
		ids = append(ids, r.SenderID, r.ReceiverID)
	}
	summaries, err := summariesByID(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.FriendRequestView, len(requests))
	for i, r := range requests {
		views[i] = models.FriendRequestView{
			FriendRequest: r,
			SenderUser:    summaries[r.SenderID],
			ReceiverUser:  summaries[r.ReceiverID],
		}
	}
	return views, nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	ids, err := s.friendships.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friend ids: %w", err)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load friends: %w", err)
	}
	friends := make([]models.UserSummary, 0, len(users))
	for i := range users {
		friends = append(friends, users[i].Summary())
	}
	return friends, nil
}

func (s *FriendService) Unfriend(ctx context.Context, userID, otherID uint) error {
	return notFoundOr(s.friendships.RemoveFriendship(ctx, userID, otherID), "not friends", "remove friendship")
}

// Search finds other users and annotates each with its current relation to
// the caller. Rejected requests are ignored.
func (s *FriendService) Search(ctx context.Context, userID uint, query string) ([]models.UserSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, Validation("search query is required")
	}

	users, err := s.users.SearchUsers(ctx, query, userID, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	friendIDs, err := s.friendships.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friend ids: %w", err)
	}
	pending, err := s.friendships.ListPendingTouching(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	friends := make(map[uint]bool, len(friendIDs))
	for _, id := range friendIDs {
		friends[id] = true
	}
	outgoing := make(map[uint]uint)
	incoming := make(map[uint]uint)
	for _, r := range pending {
		if r.SenderID == userID {
			outgoing[r.ReceiverID] = r.ID
		} else {
			incoming[r.SenderID] = r.ID
		}
	}

	results := make([]models.UserSearchResult, 0, len(users))
	for _, u := range users {
		res := models.UserSearchResult{
			ID:             u.ID,
			Username:       u.Username,
			Email:          u.Email,
			Bio:            u.Bio,
			ProfilePicture: u.ProfilePicture,
			IsFriend:       friends[u.ID],
		}
		if id, ok := outgoing[u.ID]; ok {
			id := id
			res.OutgoingFriendRequestID = &id
		}
		if id, ok := incoming[u.ID]; ok {
			id := id
			res.IncomingFriendRequestID = &id
		}
		results = append(results, res)
	}
	return results, nil
}

// summariesByID loads users once and indexes their summaries.
func summariesByID(ctx context.Context, users repositories.UserRepository, ids []uint) (map[uint]*models.UserSummary, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id != 0 && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	loaded, err := users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	out := make(map[uint]*models.UserSummary, len(loaded))
	for i := range loaded {
		summary := loaded[i].Summary()
		out[loaded[i].ID] = &summary
	}
	return out, nil
}
