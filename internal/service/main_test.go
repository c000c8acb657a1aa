package service

import (
	"context"
	"sync"
	"testing"

	"github.com/TheYates/bernat-medical-sub000/internal/config"
	"github.com/TheYates/bernat-medical-sub000/internal/infra"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"
	"github.com/TheYates/bernat-medical-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory email queue ─────────────────────────────────────────────────────

type fakeEmails struct {
	mu   sync.Mutex
	jobs []worker.EmailPayload
}

func (f *fakeEmails) EnqueueEmail(_ context.Context, p worker.EmailPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, p)
	return nil
}

// ── Test environment on embedded SQLite ──────────────────────────────────────

type testEnv struct {
	db  *gorm.DB
	cfg *config.Config

	drugRepo  repository.DrugRepository
	txRepo    repository.StockTransactionRepository
	notifRepo repository.NotificationRepository
	auditRepo repository.AuditRepository

	audit   AuditService
	ledger  LedgerService
	notifs  NotificationService
	restock RestockService
	drugs   DrugService
	vendors VendorService
	alerts  StockAlertService
	emails  *fakeEmails

	admin      Actor
	pharmacist Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := infra.NewDatabase(infra.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret:           "test-secret",
		JWTExpirationHours:  1,
		JWTRefreshHours:     2,
		AdminAlertEmail:     "pharmacy-admin@clinic.test",
		RestockHistoryLimit: 100,
	}

	e := &testEnv{db: db, cfg: cfg, emails: &fakeEmails{}}
	e.drugRepo = repository.NewDrugRepository(db)
	e.txRepo = repository.NewStockTransactionRepository(db)
	e.notifRepo = repository.NewNotificationRepository(db)
	e.auditRepo = repository.NewAuditRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	userRepo := repository.NewUserRepository(db)
	query, err := repository.NewRestockQuery(db)
	require.NoError(t, err)

	e.audit = NewAuditService(e.auditRepo)
	e.ledger = NewLedgerService(e.drugRepo, repository.NewStockMovementRepository(db), e.audit)
	e.notifs = NewNotificationService(e.notifRepo)
	e.restock = NewRestockService(e.drugRepo, vendorRepo, e.txRepo, query, e.ledger, e.notifs, e.audit, nil, e.emails, cfg)
	e.drugs = NewDrugService(e.db, e.drugRepo, catalogRepo, e.audit)
	e.vendors = NewVendorService(vendorRepo, e.audit)
	e.alerts = NewStockAlertService(e.drugRepo, userRepo, e.notifRepo, e.notifs, e.emails)

	e.admin = Actor{UserID: e.seedUser(t, "admin", "Clinic Admin", model.RoleAdmin).ID, Role: model.RoleAdmin, IPAddress: "127.0.0.1"}
	e.pharmacist = Actor{UserID: e.seedUser(t, "ama", "Ama Mensah", model.RolePharmacist).ID, Role: model.RolePharmacist}
	return e
}

func (e *testEnv) seedUser(t *testing.T, username, fullName, role string) *model.User {
	t.Helper()
	email := username + "@clinic.test"
	u := &model.User{Username: username, FullName: fullName, Email: &email, PasswordHash: "x", Role: role, Active: true}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) seedVendor(t *testing.T, name string) *model.Vendor {
	t.Helper()
	v := &model.Vendor{Name: name, Active: true}
	require.NoError(t, e.db.Create(v).Error)
	return v
}

// seedDrug inserts a drug priced at 100 per purchase unit with 25% / 50% markups.
func (e *testEnv) seedDrug(t *testing.T, name, purchaseForm, saleForm string, upp, stock int) *model.Drug {
	t.Helper()
	d := &model.Drug{
		Name:         name,
		Category:     "Analgesics",
		PurchaseForm: purchaseForm,
		SaleForm:     saleForm,
		Stock:        stock,
		Active:       true,
	}
	price, pos, rx := decimal.NewFromInt(100), decimal.RequireFromString("0.25"), decimal.RequireFromString("0.5")
	require.NoError(t, repriceDrug(d, pricingChange{PurchasePrice: &price, UnitsPerPurchase: &upp, PosMarkup: &pos, PrescriptionMarkup: &rx}))
	require.NoError(t, e.db.Create(d).Error)
	return d
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	d, err := e.drugRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return d.Stock
}

func (e *testEnv) count(t *testing.T, m interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(m)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func newQueryFor(e *testEnv) (repository.RestockQuery, error) {
	return repository.NewRestockQuery(e.db)
}
