package service

import (
	"context"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService emits and reads in-app notifications. A nil user id
// addresses every admin.
type NotificationService interface {
	NotifyTx(tx *gorm.DB, userID *uuid.UUID, notifType, message string, referenceID *uuid.UUID) error
	ListForUser(ctx context.Context, actor Actor, unreadOnly bool) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, actor Actor) (int64, error)
	MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor Actor) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) NotifyTx(tx *gorm.DB, userID *uuid.UUID, notifType, message string, referenceID *uuid.UUID) error {
	return s.repo.CreateTx(tx, &model.Notification{
		UserID:      userID,
		Type:        notifType,
		Message:     message,
		ReferenceID: referenceID,
	})
}

func (s *notificationService) ListForUser(ctx context.Context, actor Actor, unreadOnly bool) ([]dto.NotificationResponse, error) {
	list, err := s.repo.ListForUser(ctx, actor.UserID, actor.IsAdmin(), unreadOnly)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, notificationToResponse(n))
	}
	return resp, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	return s.repo.CountUnread(ctx, actor.UserID, actor.IsAdmin())
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	n, err := s.repo.MarkRead(ctx, id, actor.UserID, actor.IsAdmin())
	if err != nil {
		return err
	}
	if n == 0 {
		return newError(ErrNotFound, "Notification not found")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor Actor) error {
	return s.repo.MarkAllRead(ctx, actor.UserID, actor.IsAdmin())
}

func notificationToResponse(n model.Notification) dto.NotificationResponse {
	r := dto.NotificationResponse{
		ID:        n.ID.String(),
		Type:      n.Type,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.UserID != nil {
		uid := n.UserID.String()
		r.UserID = &uid
	}
	if n.ReferenceID != nil {
		ref := n.ReferenceID.String()
		r.ReferenceID = &ref
	}
	return r
}
