//go:build integration

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v
package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/TheYates/bernat-medical-sub000/internal/config"
	"github.com/TheYates/bernat-medical-sub000/internal/infra"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/router"
	"github.com/TheYates/bernat-medical-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, srv.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type e2eEnv struct {
	server *httptest.Server
	db     *gorm.DB
	admin  string
	pharm  string
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("clinic_test"),
		tcPostgres.WithUsername("clinic"),
		tcPostgres.WithPassword("clinic"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                 "test",
		JWTSecret:           "e2e-secret",
		JWTExpirationHours:  1,
		JWTRefreshHours:     2,
		DatabaseDriver:      infra.DriverPostgres,
		DatabaseURL:         pgURL,
		RedisURL:            rdURL,
		PDFStoragePath:      t.TempDir(),
		RestockHistoryLimit: 100,
		IdempotencyTTLHours: 1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	r, err := router.New(cfg, db, rdb, infra.NewCircuitBreaker(infra.BreakerConfig{}))
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	env := &e2eEnv{server: srv, db: db}
	env.admin = env.login(t, "admin", model.RoleAdmin)
	env.pharm = env.login(t, "ama", model.RolePharmacist)
	return env
}

func (e *e2eEnv) login(t *testing.T, username, role string) string {
	t.Helper()
	hash, err := service.HashPassword("clinic-pass")
	require.NoError(t, err)
	require.NoError(t, e.db.Create(&model.User{
		Username: username, FullName: username, PasswordHash: hash, Role: role, Active: true,
	}).Error)

	resp := do(t, e.server, http.MethodPost, "/v1/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": "clinic-pass"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	decodeJSON(t, resp, &body)
	return body.AccessToken
}

func (e *e2eEnv) seedDrug(t *testing.T) (drugID, vendorID string) {
	t.Helper()
	for path, name := range map[string]string{"/v1/categories": "Antibiotics", "/v1/forms": "box"} {
		resp := do(t, e.server, http.MethodPost, path, jsonBody(t, map[string]string{"name": name}), e.admin)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	resp := do(t, e.server, http.MethodPost, "/v1/forms", jsonBody(t, map[string]string{"name": "capsule"}), e.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, e.server, http.MethodPost, "/v1/drugs", jsonBody(t, map[string]any{
		"name": "Amoxicillin 500mg", "category": "Antibiotics", "purchaseForm": "box", "saleForm": "capsule",
		"purchasePrice": "240", "unitsPerPurchase": 24, "posMarkup": "0.3", "prescriptionMarkup": "0.2",
	}), e.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var drug struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &drug)

	resp = do(t, e.server, http.MethodPost, "/v1/vendors", jsonBody(t, map[string]string{"name": "Tema Pharma"}), e.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var vendor struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &vendor)
	return drug.ID, vendor.ID
}

func (e *e2eEnv) stock(t *testing.T, drugID string) int {
	t.Helper()
	resp := do(t, e.server, http.MethodGet, "/v1/drugs/"+drugID, nil, e.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var d struct {
		Stock int `json:"stock"`
	}
	decodeJSON(t, resp, &d)
	return d.Stock
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Two admins approving the same pending restock at once: exactly one wins and
// stock moves exactly once.
func TestE2E_ConcurrentApproval(t *testing.T) {
	env := setupE2E(t)
	drugID, vendorID := env.seedDrug(t)

	resp := do(t, env.server, http.MethodPost, "/v1/inventory/restock", jsonBody(t, map[string]any{
		"vendorId": vendorID,
		"items":    []map[string]any{{"drugId": drugID, "purchaseUnit": "purchase", "quantity": 2}},
	}), env.pharm)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		TransactionIDs []string `json:"transactionIds"`
	}
	decodeJSON(t, resp, &created)
	require.Len(t, created.TransactionIDs, 1)

	const approvers = 5
	codes := make(chan int, approvers)
	var wg sync.WaitGroup
	for i := 0; i < approvers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := do(t, env.server, http.MethodPost, "/v1/inventory/restock/"+created.TransactionIDs[0]+"/approve",
				jsonBody(t, map[string]string{"status": "approved"}), env.admin)
			r.Body.Close()
			codes <- r.StatusCode
		}()
	}
	wg.Wait()
	close(codes)

	ok := 0
	for code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusBadRequest, code)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 48, env.stock(t, drugID))
}

// A batch whose second line fails leaves no trace of the first.
func TestE2E_BatchRollback(t *testing.T) {
	env := setupE2E(t)
	drugID, vendorID := env.seedDrug(t)

	resp := do(t, env.server, http.MethodPost, "/v1/inventory/restock", jsonBody(t, map[string]any{
		"vendorId": vendorID,
		"items": []map[string]any{
			{"drugId": drugID, "purchaseUnit": "sale", "quantity": 10},
			{"drugId": "00000000-0000-0000-0000-000000000001", "purchaseUnit": "sale", "quantity": 10},
		},
	}), env.admin)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 0, env.stock(t, drugID))
	var n int64
	require.NoError(t, env.db.Model(&model.StockTransaction{}).Count(&n).Error)
	assert.Zero(t, n)
}

// The CHECK (stock >= 0) constraint backs up the application guard.
func TestE2E_StockCheckConstraint(t *testing.T) {
	env := setupE2E(t)
	drugID, _ := env.seedDrug(t)

	err := env.db.Exec("UPDATE drugs SET stock = -1 WHERE id = ?", drugID).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chk_drugs_stock_non_negative")
}

// A drug edit racing an approval that carries a price change keeps both.
func TestE2E_DrugEditDoesNotLoseApprovedPrice(t *testing.T) {
	env := setupE2E(t)
	drugID, vendorID := env.seedDrug(t)

	resp := do(t, env.server, http.MethodPost, "/v1/inventory/restock", jsonBody(t, map[string]any{
		"vendorId": vendorID,
		"items": []map[string]any{
			{"drugId": drugID, "purchaseUnit": "purchase", "quantity": 1, "purchasePrice": "480"},
		},
	}), env.pharm)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		TransactionIDs []string `json:"transactionIds"`
	}
	decodeJSON(t, resp, &created)

	codes := make(chan int, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r := do(t, env.server, http.MethodPost, "/v1/inventory/restock/"+created.TransactionIDs[0]+"/approve",
			jsonBody(t, map[string]string{"status": "approved"}), env.admin)
		r.Body.Close()
		codes <- r.StatusCode
	}()
	go func() {
		defer wg.Done()
		r := do(t, env.server, http.MethodPut, "/v1/drugs/"+drugID,
			jsonBody(t, map[string]string{"name": "Amoxicillin 500mg caps"}), env.admin)
		r.Body.Close()
		codes <- r.StatusCode
	}()
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	var d model.Drug
	require.NoError(t, env.db.First(&d, "id = ?", drugID).Error)
	assert.Equal(t, "Amoxicillin 500mg caps", d.Name)
	assert.Equal(t, "480", d.PurchasePrice.String())
	assert.Equal(t, "20", d.UnitCost.String())
	assert.Equal(t, 24, d.Stock)
}
