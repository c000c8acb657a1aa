package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"
	"github.com/TheYates/bernat-medical-sub000/internal/worker"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StockAlertService raises low_stock notifications for active drugs at or
// below their minimum stock. A drug that still has an unread low_stock
// notification is skipped.
type StockAlertService interface {
	Sweep(ctx context.Context) (int, error)
}

type stockAlertService struct {
	drugs         repository.DrugRepository
	users         repository.UserRepository
	notifRepo     repository.NotificationRepository
	notifications NotificationService
	emails        EmailEnqueuer
}

func NewStockAlertService(
	drugs repository.DrugRepository,
	users repository.UserRepository,
	notifRepo repository.NotificationRepository,
	notifications NotificationService,
	emails EmailEnqueuer,
) StockAlertService {
	return &stockAlertService{
		drugs:         drugs,
		users:         users,
		notifRepo:     notifRepo,
		notifications: notifications,
		emails:        emails,
	}
}

// Sweep returns the number of new notifications created.
func (s *stockAlertService) Sweep(ctx context.Context) (int, error) {
	low, err := s.drugs.ListLowStock(ctx)
	if err != nil {
		return 0, err
	}

	var raised []model.Drug
	for _, d := range low {
		seen, err := s.notifRepo.HasUnread(ctx, model.NotificationLowStock, d.ID)
		if err != nil {
			return len(raised), err
		}
		if seen {
			continue
		}
		id := d.ID
		msg := fmt.Sprintf("Low stock: %s has %d %s left (minimum %d)", d.Name, d.Stock, d.SaleForm, d.MinStock)
		err = runTx(ctx, s.notifRepo.DB(), func(tx *gorm.DB) error {
			return s.notifications.NotifyTx(tx, nil, model.NotificationLowStock, msg, &id)
		})
		if err != nil {
			return len(raised), err
		}
		raised = append(raised, d)
	}

	if len(raised) > 0 {
		s.emailAdmins(ctx, raised)
	}
	return len(raised), nil
}

func (s *stockAlertService) emailAdmins(ctx context.Context, drugs []model.Drug) {
	if s.emails == nil {
		return
	}
	to, err := s.users.ListAdminEmails(ctx)
	if err != nil || len(to) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString("The following drugs are at or below their minimum stock:\n")
	for _, d := range drugs {
		fmt.Fprintf(&b, "- %s: %d %s (minimum %d)\n", d.Name, d.Stock, d.SaleForm, d.MinStock)
	}
	payload := worker.EmailPayload{
		To:      to,
		Subject: fmt.Sprintf("Low stock alert: %d drug(s)", len(drugs)),
		Body:    b.String(),
	}
	if err := s.emails.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Msg("stock alert: failed to enqueue email")
	}
}
