package repository

import (
	"context"

	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository stores in-app notifications. A NULL user_id row is a
// broadcast visible to every admin.
type NotificationRepository interface {
	CreateTx(tx *gorm.DB, n *model.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, includeBroadcast, unreadOnly bool) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID, includeBroadcast bool) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID, includeBroadcast bool) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, includeBroadcast bool) error
	HasUnread(ctx context.Context, notifType string, referenceID uuid.UUID) (bool, error)
	DB() *gorm.DB
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) DB() *gorm.DB { return r.db }

func (r *notificationRepo) CreateTx(tx *gorm.DB, n *model.Notification) error {
	return TranslateError(tx.Create(n).Error)
}

// visibleTo scopes a query to the rows userID may see.
func visibleTo(q *gorm.DB, userID uuid.UUID, includeBroadcast bool) *gorm.DB {
	if includeBroadcast {
		return q.Where("(user_id = ? OR user_id IS NULL)", userID)
	}
	return q.Where("user_id = ?", userID)
}

func (r *notificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, includeBroadcast, unreadOnly bool) ([]model.Notification, error) {
	var list []model.Notification
	q := visibleTo(r.db.WithContext(ctx).Model(&model.Notification{}), userID, includeBroadcast)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at DESC").Limit(200).Find(&list).Error
	return list, err
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID uuid.UUID, includeBroadcast bool) (int64, error) {
	var n int64
	q := visibleTo(r.db.WithContext(ctx).Model(&model.Notification{}), userID, includeBroadcast)
	err := q.Where("is_read = ?", false).Count(&n).Error
	return n, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID, includeBroadcast bool) (int64, error) {
	q := visibleTo(r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id), userID, includeBroadcast)
	res := q.Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, includeBroadcast bool) error {
	q := visibleTo(r.db.WithContext(ctx).Model(&model.Notification{}), userID, includeBroadcast)
	return q.Where("is_read = ?", false).Update("is_read", true).Error
}

func (r *notificationRepo) HasUnread(ctx context.Context, notifType string, referenceID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("type = ? AND reference_id = ? AND is_read = ?", notifType, referenceID, false).
		Count(&n).Error
	return n > 0, err
}
