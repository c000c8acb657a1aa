package service

import (
	"context"
	"testing"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, e *testEnv) CatalogService {
	t.Helper()
	ctx := context.Background()
	cat := NewCatalogService(repository.NewCatalogRepository(e.db))
	_, err := cat.CreateCategory(ctx, dto.CreateCategoryRequest{Name: "Analgesics"})
	require.NoError(t, err)
	for _, f := range []string{"box", "tablet", "bottle"} {
		_, err := cat.CreateForm(ctx, dto.CreateFormRequest{Name: f})
		require.NoError(t, err)
	}
	return cat
}

func paracetamolRequest() dto.CreateDrugRequest {
	return dto.CreateDrugRequest{
		Name:               "Paracetamol 500mg",
		Category:           "Analgesics",
		PurchaseForm:       "box",
		SaleForm:           "tablet",
		PurchasePrice:      decimal.NewFromInt(100),
		UnitsPerPurchase:   10,
		PosMarkup:          decimal.RequireFromString("0.25"),
		PrescriptionMarkup: decimal.RequireFromString("0.5"),
		MinStock:           20,
	}
}

func TestDrugCreate_DerivesPrices(t *testing.T) {
	e := newTestEnv(t)
	seedCatalog(t, e)

	resp, err := e.drugs.Create(context.Background(), e.admin, paracetamolRequest())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(resp.UnitCost))
	assert.True(t, decimal.RequireFromString("12.5").Equal(resp.PosPrice))
	assert.True(t, decimal.NewFromInt(15).Equal(resp.PrescriptionPrice))
	assert.Equal(t, 0, resp.Stock)

	stored, err := e.drugs.GetByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(stored.PosPrice))
}

func TestDrugCreate_SameFormForcesRatioOne(t *testing.T) {
	e := newTestEnv(t)
	seedCatalog(t, e)
	req := paracetamolRequest()
	req.PurchaseForm, req.SaleForm = "bottle", "bottle"
	req.UnitsPerPurchase = 12

	resp, err := e.drugs.Create(context.Background(), e.admin, req)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.UnitsPerPurchase)
	assert.True(t, decimal.NewFromInt(100).Equal(resp.UnitCost))
}

func TestDrugCreate_RejectsUnknownLookupsAndBadPricing(t *testing.T) {
	e := newTestEnv(t)
	seedCatalog(t, e)
	ctx := context.Background()

	req := paracetamolRequest()
	req.Category = "Antivirals"
	_, err := e.drugs.Create(ctx, e.admin, req)
	assertKind(t, err, ErrInvalidInput)

	req = paracetamolRequest()
	req.SaleForm = "sachet"
	_, err = e.drugs.Create(ctx, e.admin, req)
	assertKind(t, err, ErrInvalidInput)

	req = paracetamolRequest()
	req.UnitsPerPurchase = 0
	_, err = e.drugs.Create(ctx, e.admin, req)
	assertKind(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "units per purchase")

	assert.Zero(t, e.count(t, &model.Drug{}, ""))
}

func TestDrugUpdate_RepricesOnPricingChange(t *testing.T) {
	e := newTestEnv(t)
	seedCatalog(t, e)
	ctx := context.Background()
	created, err := e.drugs.Create(ctx, e.admin, paracetamolRequest())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	upp := 20
	updated, err := e.drugs.Update(ctx, e.admin, id, dto.UpdateDrugRequest{UnitsPerPurchase: &upp})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(updated.UnitCost))
	assert.True(t, decimal.RequireFromString("6.25").Equal(updated.PosPrice))

	name := "Paracetamol 500mg tabs"
	renamed, err := e.drugs.Update(ctx, e.admin, id, dto.UpdateDrugRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, renamed.Name)
	assert.True(t, decimal.NewFromInt(5).Equal(renamed.UnitCost))

	_, err = e.drugs.Update(ctx, e.admin, uuid.New(), dto.UpdateDrugRequest{Name: &name})
	assertKind(t, err, ErrNotFound)
}

func TestDrugUpdate_DoesNotTouchStock(t *testing.T) {
	e := newTestEnv(t)
	seedCatalog(t, e)
	ctx := context.Background()
	drug := e.seedDrug(t, "Paracetamol", "box", "tablet", 10, 42)

	min := 5
	_, err := e.drugs.Update(ctx, e.admin, drug.ID, dto.UpdateDrugRequest{MinStock: &min})
	require.NoError(t, err)
	assert.Equal(t, 42, e.stockOf(t, drug.ID))
}

// An edit after an approval works from the locked, current row and keeps the
// price the approval applied.
func TestDrugUpdate_KeepsApprovedPricing(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	vendor := e.seedVendor(t, "MedSupply")
	drug := e.seedDrug(t, "Paracetamol", "box", "tablet", 10, 0)

	line := item(drug, "purchase", 1)
	line.PurchasePrice = decPtr("150")
	resp, err := e.restock.CreateBatch(ctx, e.pharmacist, batch(vendor, line))
	require.NoError(t, err)
	_, err = e.restock.Resolve(ctx, e.admin, uuid.MustParse(resp.TransactionIDs[0]), "approved")
	require.NoError(t, err)

	name := "Paracetamol 500mg"
	updated, err := e.drugs.Update(ctx, e.admin, drug.ID, dto.UpdateDrugRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, decimal.NewFromInt(150).Equal(updated.PurchasePrice), updated.PurchasePrice.String())
	assert.True(t, decimal.NewFromInt(15).Equal(updated.UnitCost), updated.UnitCost.String())
	assert.Equal(t, 10, e.stockOf(t, drug.ID))

	// a rejected pricing change leaves the rest of the edit unapplied
	other := "Panadol"
	_, err = e.drugs.Update(ctx, e.admin, drug.ID, dto.UpdateDrugRequest{Name: &other, PosMarkup: decPtr("-1")})
	assertKind(t, err, ErrInvalidInput)
	stored, err := e.drugRepo.FindByID(ctx, drug.ID)
	require.NoError(t, err)
	assert.Equal(t, name, stored.Name)
}

func TestDrugList_Filters(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.seedDrug(t, "Paracetamol", "box", "tablet", 10, 2)
	e.seedDrug(t, "Ibuprofen", "box", "tablet", 10, 50)
	require.NoError(t, e.db.Model(&model.Drug{}).Where("1 = 1").Update("min_stock", 10).Error)

	all, err := e.drugs.List(ctx, dto.DrugFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, "Ibuprofen", all.Data[0].Name)

	low, err := e.drugs.List(ctx, dto.DrugFilter{LowStock: true, Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, low.Data, 1)
	assert.Equal(t, "Paracetamol", low.Data[0].Name)

	byName, err := e.drugs.List(ctx, dto.DrugFilter{Name: "IBU", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, byName.Data, 1)
}

func TestCatalog_DuplicateCategory(t *testing.T) {
	e := newTestEnv(t)
	cat := seedCatalog(t, e)
	ctx := context.Background()

	_, err := cat.CreateCategory(ctx, dto.CreateCategoryRequest{Name: "analgesics"})
	assertKind(t, err, ErrConflict)

	_, err = cat.CreateForm(ctx, dto.CreateFormRequest{Name: "Tablet"})
	assertKind(t, err, ErrConflict)

	list, err := cat.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, cat.DeactivateCategory(ctx, list[0].ID))
	list, err = cat.ListCategories(ctx)
	require.NoError(t, err)
	assert.False(t, list[0].Active)
}

func TestVendor_CRUD(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	v, err := e.vendors.Create(ctx, e.admin, dto.CreateVendorRequest{Name: "MedSupply", Phone: strPtr("+233 20 000 0000")})
	require.NoError(t, err)
	_, err = e.vendors.Create(ctx, e.admin, dto.CreateVendorRequest{Name: "MedSupply"})
	assertKind(t, err, ErrConflict)

	id := uuid.MustParse(v.ID)
	updated, err := e.vendors.Update(ctx, e.admin, id, dto.UpdateVendorRequest{ContactPerson: strPtr("Kofi")})
	require.NoError(t, err)
	require.NotNil(t, updated.ContactPerson)
	assert.Equal(t, "Kofi", *updated.ContactPerson)

	require.NoError(t, e.vendors.SetActive(ctx, e.admin, id, false))
	active, err := e.vendors.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := e.vendors.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assertKind(t, e.vendors.SetActive(ctx, e.admin, uuid.New(), true), ErrNotFound)
}
