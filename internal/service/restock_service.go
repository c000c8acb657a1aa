package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/config"
	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/pricing"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"
	"github.com/TheYates/bernat-medical-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxRestockHistory = 100

// Response messages.
const (
	MsgRestockRecorded  = "Restock recorded and stock updated"
	MsgRestockSubmitted = "Restock request submitted for approval"
	MsgRestockApproved  = "Restock approved successfully"
	MsgRestockRejected  = "Restock rejected successfully"
)

// EmailEnqueuer queues an outgoing email. *worker.Dispatcher implements it.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailPayload) error
}

// RestockService runs the restock lifecycle: pending → approved | rejected.
type RestockService interface {
	CreateBatch(ctx context.Context, actor Actor, req dto.CreateRestockBatchRequest) (*dto.RestockBatchResponse, error)
	CreateSingle(ctx context.Context, actor Actor, drugID uuid.UUID, req dto.CreateSingleRestockRequest) (*dto.RestockBatchResponse, error)
	Resolve(ctx context.Context, actor Actor, id uuid.UUID, decision string) (*dto.MessageResponse, error)
	ListPending(ctx context.Context) ([]dto.RestockTransactionView, error)
	PendingCount(ctx context.Context) (*dto.PendingCountResponse, error)
	ListHistory(ctx context.Context) ([]dto.RestockTransactionView, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.RestockTransactionView, error)
}

type restockService struct {
	drugs         repository.DrugRepository
	vendors       repository.VendorRepository
	transactions  repository.StockTransactionRepository
	query         repository.RestockQuery
	ledger        LedgerService
	notifications NotificationService
	audit         AuditService
	policy        InitialStatusPolicy
	emails        EmailEnqueuer
	cfg           *config.Config
}

// NewRestockService wires the restock manager. A nil policy means
// DecideInitialStatus; a nil emails disables admin email alerts.
func NewRestockService(
	drugs repository.DrugRepository,
	vendors repository.VendorRepository,
	transactions repository.StockTransactionRepository,
	query repository.RestockQuery,
	ledger LedgerService,
	notifications NotificationService,
	audit AuditService,
	policy InitialStatusPolicy,
	emails EmailEnqueuer,
	cfg *config.Config,
) RestockService {
	if policy == nil {
		policy = DecideInitialStatus
	}
	return &restockService{
		drugs:         drugs,
		vendors:       vendors,
		transactions:  transactions,
		query:         query,
		ledger:        ledger,
		notifications: notifications,
		audit:         audit,
		policy:        policy,
		emails:        emails,
		cfg:           cfg,
	}
}

// restockLine is a validated request item.
type restockLine struct {
	drugID             uuid.UUID
	unit               pricing.Unit
	quantity           int
	batchNumber        *string
	expiryDate         *time.Time
	price              *decimal.Decimal // per entered unit
	posMarkup          *decimal.Decimal
	prescriptionMarkup *decimal.Decimal
}

// parseLine checks everything that can be checked without the database.
func parseLine(n int, item dto.RestockItemRequest) (restockLine, error) {
	drugID, err := uuid.Parse(item.DrugID)
	if err != nil {
		return restockLine{}, newError(ErrInvalidInput, "Item %d: invalid drug id", n)
	}
	unit, err := pricing.ParseUnit(item.PurchaseUnit)
	if err != nil {
		return restockLine{}, newError(ErrInvalidInput, "Item %d: purchase unit must be purchase or sale", n)
	}
	if item.Quantity <= 0 {
		return restockLine{}, newError(ErrInvalidInput, "Item %d: quantity must be greater than zero", n)
	}
	if item.Quantity > pricing.MaxQuantity {
		return restockLine{}, newError(ErrInvalidInput, "Item %d: quantity must not exceed %d", n, pricing.MaxQuantity)
	}
	for _, d := range []*decimal.Decimal{item.PurchasePrice, item.PosMarkup, item.PrescriptionMarkup} {
		if d != nil && d.IsNegative() {
			return restockLine{}, newError(ErrInvalidInput, "Item %d: prices and markups cannot be negative", n)
		}
	}

	line := restockLine{
		drugID:             drugID,
		unit:               unit,
		quantity:           item.Quantity,
		batchNumber:        item.BatchNumber,
		price:              item.PurchasePrice,
		posMarkup:          item.PosMarkup,
		prescriptionMarkup: item.PrescriptionMarkup,
	}
	if item.ExpiryDate != nil && *item.ExpiryDate != "" {
		t, err := time.Parse("2006-01-02", *item.ExpiryDate)
		if err != nil {
			return restockLine{}, newError(ErrInvalidInput, "Item %d: expiry date must be YYYY-MM-DD", n)
		}
		line.expiryDate = &t
	}
	return line, nil
}

func parseVendorID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, newError(ErrInvalidInput, "Invalid vendor id")
	}
	return &id, nil
}

// ── CreateBatch ───────────────────────────────────────────────────────────────
// All-or-nothing:
//   1. Validate every item (no writes)
//   2. BEGIN TX: check vendor, then per item lock drug, convert, insert line,
//      apply stock + pricing when auto-approved
//   3. Broadcast restock_pending when lines await approval
//   4. COMMIT, then audit and admin email (best-effort)

func (s *restockService) CreateBatch(ctx context.Context, actor Actor, req dto.CreateRestockBatchRequest) (*dto.RestockBatchResponse, error) {
	if len(req.Items) == 0 {
		return nil, newError(ErrInvalidInput, "At least one item is required")
	}
	vendorID, err := parseVendorID(&req.VendorID)
	if err != nil {
		return nil, err
	}
	if vendorID == nil {
		return nil, newError(ErrInvalidInput, "Vendor is required")
	}
	lines := make([]restockLine, 0, len(req.Items))
	for i, item := range req.Items {
		line, err := parseLine(i+1, item)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return s.create(ctx, actor, vendorID, req.ReferenceNumber, lines, false)
}

// CreateSingle is the one-drug restock path. Unlike the batch path it always
// notifies admins, including when the restock was auto-approved.
func (s *restockService) CreateSingle(ctx context.Context, actor Actor, drugID uuid.UUID, req dto.CreateSingleRestockRequest) (*dto.RestockBatchResponse, error) {
	vendorID, err := parseVendorID(req.VendorID)
	if err != nil {
		return nil, err
	}
	line, err := parseLine(1, req.Item(drugID.String()))
	if err != nil {
		return nil, err
	}
	return s.create(ctx, actor, vendorID, req.ReferenceNumber, []restockLine{line}, true)
}

type createdLine struct {
	tx   *model.StockTransaction
	drug *model.Drug
}

func (s *restockService) create(ctx context.Context, actor Actor, vendorID *uuid.UUID, reference *string, lines []restockLine, alwaysNotify bool) (*dto.RestockBatchResponse, error) {
	status := s.policy(actor.Role)
	created := make([]createdLine, 0, len(lines))

	err := runTx(ctx, s.transactions.DB(), func(tx *gorm.DB) error {
		if vendorID != nil {
			if _, err := s.vendors.FindActiveTx(tx, *vendorID); err != nil {
				return classify(err, "Vendor")
			}
		}

		for i, line := range lines {
			st, drug, err := s.insertLineTx(tx, actor, status, vendorID, reference, line)
			if err != nil {
				var domainErr *Error
				if len(lines) > 1 && errors.As(err, &domainErr) {
					return &Error{Kind: domainErr.Kind, Message: fmt.Sprintf("Item %d: %s", i+1, domainErr.Message)}
				}
				return err
			}
			created = append(created, createdLine{tx: st, drug: drug})
		}

		if status == model.RestockPending || alwaysNotify {
			notifType, msg := restockCreatedNotice(status, created)
			var ref *uuid.UUID
			if len(created) == 1 {
				ref = &created[0].tx.ID
			}
			if err := s.notifications.NotifyTx(tx, nil, notifType, msg, ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(created))
	for _, c := range created {
		id := c.tx.ID
		ids = append(ids, id.String())
		s.audit.Record(ctx, actor, AuditRestockCreated, "stock_transaction", &id, map[string]interface{}{
			"drugId":       c.tx.DrugID,
			"status":       c.tx.Status,
			"saleQuantity": c.tx.SaleQuantity,
		})
	}

	resp := &dto.RestockBatchResponse{Status: string(status), TransactionIDs: ids}
	if status == model.RestockApproved {
		resp.Message = MsgRestockRecorded
	} else {
		resp.Message = MsgRestockSubmitted
		s.emailPendingAlert(ctx, created)
	}
	return resp, nil
}

// insertLineTx locks the drug, converts the quantity and inserts one line.
// Auto-approved lines are applied immediately.
func (s *restockService) insertLineTx(tx *gorm.DB, actor Actor, status model.RestockStatus, vendorID *uuid.UUID, reference *string, line restockLine) (*model.StockTransaction, *model.Drug, error) {
	drug, err := s.drugs.FindForUpdateTx(tx, line.drugID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, newError(ErrNotFound, "Drug %s not found", line.drugID)
		}
		return nil, nil, err
	}
	if !drug.Active {
		return nil, nil, newError(ErrInvalidState, "Drug %s is inactive", drug.Name)
	}

	conv := pricing.ConverterFor(drug.PurchaseForm, drug.SaleForm, drug.UnitsPerPurchase)
	purchaseQty, saleQty, err := conv.Quantities(line.quantity, line.unit)
	if err != nil {
		return nil, nil, fromPricing(err)
	}

	st := &model.StockTransaction{
		DrugID:             drug.ID,
		VendorID:           vendorID,
		Type:               model.StockTransactionIn,
		PurchaseQuantity:   purchaseQty,
		SaleQuantity:       saleQty,
		BatchNumber:        line.batchNumber,
		ExpiryDate:         line.expiryDate,
		ReferenceNumber:    reference,
		CreatedBy:          actor.UserID,
		Status:             status,
		PosMarkup:          line.posMarkup,
		PrescriptionMarkup: line.prescriptionMarkup,
	}
	if line.price != nil {
		pp, err := conv.PurchasePrice(*line.price, line.unit)
		if err != nil {
			return nil, nil, fromPricing(err)
		}
		st.PurchasePrice = &pp
	}
	if st.HasPricingEdit() {
		// reject an unusable edit now rather than at approval time
		probe := *drug
		if err := repriceDrug(&probe, pricingEditOf(st)); err != nil {
			return nil, nil, err
		}
	}
	if status == model.RestockApproved {
		now := time.Now().UTC()
		approver := actor.UserID
		st.ApprovedBy = &approver
		st.ApprovedAt = &now
	}

	if err := s.transactions.CreateTx(tx, st); err != nil {
		return nil, nil, classify(err, "Restock")
	}
	if status == model.RestockApproved {
		if err := s.applyApprovedTx(tx, st, actor.UserID); err != nil {
			return nil, nil, err
		}
	}
	return st, drug, nil
}

func pricingEditOf(st *model.StockTransaction) pricingChange {
	return pricingChange{
		PurchasePrice:      st.PurchasePrice,
		PosMarkup:          st.PosMarkup,
		PrescriptionMarkup: st.PrescriptionMarkup,
	}
}

// applyApprovedTx adds the line's sale quantity to stock and applies any
// inline pricing edit. Called exactly once per line, on approval.
func (s *restockService) applyApprovedTx(tx *gorm.DB, st *model.StockTransaction, actorID uuid.UUID) error {
	reason := "Restock"
	if st.ReferenceNumber != nil && *st.ReferenceNumber != "" {
		reason = "Restock " + *st.ReferenceNumber
	}
	ref := st.ID
	if _, err := s.ledger.ApplyTx(tx, LedgerEntry{
		DrugID:      st.DrugID,
		Delta:       st.SaleQuantity,
		Kind:        model.MovementRestock,
		Reason:      reason,
		ReferenceID: &ref,
		ActorID:     actorID,
	}); err != nil {
		return err
	}

	if !st.HasPricingEdit() {
		return nil
	}
	drug, err := s.drugs.FindForUpdateTx(tx, st.DrugID)
	if err != nil {
		return classify(err, "Drug")
	}
	if err := repriceDrug(drug, pricingEditOf(st)); err != nil {
		return err
	}
	return s.drugs.UpdatePricingTx(tx, drug)
}

func restockCreatedNotice(status model.RestockStatus, created []createdLine) (string, string) {
	subject := fmt.Sprintf("%d restock items", len(created))
	if len(created) == 1 {
		c := created[0]
		subject = fmt.Sprintf("%s (%d %s)", c.drug.Name, c.tx.SaleQuantity, c.drug.SaleForm)
	}
	if status == model.RestockApproved {
		return model.NotificationRestockApproved, "Restock recorded: " + subject
	}
	return model.NotificationRestockPending, "Restock awaiting approval: " + subject
}

func (s *restockService) emailPendingAlert(ctx context.Context, created []createdLine) {
	if s.emails == nil || s.cfg == nil || s.cfg.AdminAlertEmail == "" {
		return
	}
	body := "The following restock lines are awaiting approval:\n"
	for _, c := range created {
		body += fmt.Sprintf("- %s: %d %s\n", c.drug.Name, c.tx.SaleQuantity, c.drug.SaleForm)
	}
	payload := worker.EmailPayload{
		To:      []string{s.cfg.AdminAlertEmail},
		Subject: fmt.Sprintf("%d restock line(s) pending approval", len(created)),
		Body:    body,
	}
	if err := s.emails.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Msg("restock: failed to enqueue pending alert email")
	}
}

// ── Resolve ───────────────────────────────────────────────────────────────────
// One transaction: lock row → check pending → guarded status flip →
// stock + pricing (approved only) → notify requester. Audit after commit.

func (s *restockService) Resolve(ctx context.Context, actor Actor, id uuid.UUID, decision string) (*dto.MessageResponse, error) {
	status := model.RestockStatus(decision)
	if status != model.RestockApproved && status != model.RestockRejected {
		return nil, newError(ErrInvalidInput, "Status must be approved or rejected")
	}
	if !actor.IsAdmin() {
		return nil, newError(ErrForbidden, "Only admins can approve or reject restocks")
	}

	var st *model.StockTransaction
	err := runTx(ctx, s.transactions.DB(), func(tx *gorm.DB) error {
		var err error
		st, err = s.transactions.FindForUpdateTx(tx, id)
		if err != nil {
			return classify(err, "Restock")
		}
		if st.Status != model.RestockPending {
			return newError(ErrInvalidState, "Restock has already been %s", st.Status)
		}

		now := time.Now().UTC()
		n, err := s.transactions.ResolveTx(tx, id, status, actor.UserID, now)
		if err != nil {
			return err
		}
		if n == 0 {
			// lost the race to a concurrent resolver
			current, err := s.transactions.FindForUpdateTx(tx, id)
			if err != nil {
				return err
			}
			return newError(ErrInvalidState, "Restock has already been %s", current.Status)
		}
		st.Status, st.ApprovedBy, st.ApprovedAt = status, &actor.UserID, &now

		if status == model.RestockApproved {
			if err := s.applyApprovedTx(tx, st, actor.UserID); err != nil {
				return err
			}
		}

		drug, err := s.drugs.FindForUpdateTx(tx, st.DrugID)
		if err != nil {
			return classify(err, "Drug")
		}
		requester := st.CreatedBy
		notifType := model.NotificationRestockRejected
		if status == model.RestockApproved {
			notifType = model.NotificationRestockApproved
		}
		msg := fmt.Sprintf("Your restock of %s (%d %s) was %s", drug.Name, st.SaleQuantity, drug.SaleForm, status)
		return s.notifications.NotifyTx(tx, &requester, notifType, msg, &st.ID)
	})
	if err != nil {
		return nil, err
	}

	action := AuditRestockRejected
	message := MsgRestockRejected
	if status == model.RestockApproved {
		action = AuditRestockApproved
		message = MsgRestockApproved
	}
	s.audit.Record(ctx, actor, action, "stock_transaction", &id, map[string]interface{}{
		"drugId":       st.DrugID,
		"saleQuantity": st.SaleQuantity,
		"requestedBy":  st.CreatedBy,
	})
	return &dto.MessageResponse{Message: message}, nil
}

// ── Projections ───────────────────────────────────────────────────────────────

func (s *restockService) ListPending(ctx context.Context) ([]dto.RestockTransactionView, error) {
	return s.query.ListPending(ctx)
}

// PendingCount backs the approval badge in the admin UI.
func (s *restockService) PendingCount(ctx context.Context) (*dto.PendingCountResponse, error) {
	n, err := s.transactions.CountByStatus(ctx, model.RestockPending)
	if err != nil {
		return nil, err
	}
	return &dto.PendingCountResponse{Pending: n}, nil
}

// ListHistory returns resolved lines, newest resolution first, never more
// than 100 rows.
func (s *restockService) ListHistory(ctx context.Context) ([]dto.RestockTransactionView, error) {
	limit := maxRestockHistory
	if s.cfg != nil && s.cfg.RestockHistoryLimit > 0 && s.cfg.RestockHistoryLimit < limit {
		limit = s.cfg.RestockHistoryLimit
	}
	return s.query.ListHistory(ctx, limit)
}

func (s *restockService) Get(ctx context.Context, id uuid.UUID) (*dto.RestockTransactionView, error) {
	v, err := s.query.Get(ctx, id)
	if err != nil {
		return nil, classify(err, "Restock")
	}
	return v, nil
}
