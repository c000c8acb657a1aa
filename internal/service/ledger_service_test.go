package service

import (
	"context"
	"testing"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDispense_DecrementsAndRecordsMovement(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	drug := e.seedDrug(t, "Paracetamol", "box", "tablet", 10, 30)

	resp, err := e.ledger.Dispense(ctx, e.pharmacist, drug.ID, dto.DispenseRequest{Quantity: 12, Kind: model.MovementDispense, Reason: "Rx 1001"})
	require.NoError(t, err)
	assert.Equal(t, 18, resp.Stock)
	assert.Equal(t, 18, e.stockOf(t, drug.ID))

	list, err := e.ledger.ListMovements(ctx, dto.StockMovementFilter{DrugID: drug.ID.String()})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	m := list.Data[0]
	assert.Equal(t, -12, m.Quantity)
	assert.Equal(t, 30, m.StockBefore)
	assert.Equal(t, 18, m.StockAfter)
	assert.Equal(t, "Paracetamol", m.DrugName)
}

func TestDispense_InsufficientStock(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	drug := e.seedDrug(t, "Paracetamol", "box", "tablet", 10, 5)

	_, err := e.ledger.Dispense(ctx, e.pharmacist, drug.ID, dto.DispenseRequest{Quantity: 6, Kind: model.MovementPosSale})
	assertKind(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, e.stockOf(t, drug.ID))
	assert.Zero(t, e.count(t, &model.StockMovement{}, ""))
}

func TestDispense_RejectsBadInput(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	drug := e.seedDrug(t, "Paracetamol", "box", "tablet", 10, 5)

	_, err := e.ledger.Dispense(ctx, e.pharmacist, drug.ID, dto.DispenseRequest{Quantity: 0, Kind: model.MovementDispense})
	assertKind(t, err, ErrInvalidInput)
	_, err = e.ledger.Dispense(ctx, e.pharmacist, drug.ID, dto.DispenseRequest{Quantity: 1, Kind: model.MovementRestock})
	assertKind(t, err, ErrInvalidInput)
	_, err = e.ledger.Dispense(ctx, e.pharmacist, uuid.New(), dto.DispenseRequest{Quantity: 1, Kind: model.MovementDispense})
	assertKind(t, err, ErrNotFound)

	require.NoError(t, e.drugs.SetActive(ctx, e.admin, drug.ID, false))
	_, err = e.ledger.Dispense(ctx, e.pharmacist, drug.ID, dto.DispenseRequest{Quantity: 1, Kind: model.MovementDispense})
	assertKind(t, err, ErrInvalidState)
}

func TestAdjust_AdminOnlyAndGuarded(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	drug := e.seedDrug(t, "Paracetamol", "box", "tablet", 10, 5)

	_, err := e.ledger.Adjust(ctx, e.pharmacist, drug.ID, dto.AdjustStockRequest{Delta: 3, Reason: "count"})
	assertKind(t, err, ErrForbidden)

	resp, err := e.ledger.Adjust(ctx, e.admin, drug.ID, dto.AdjustStockRequest{Delta: -2, Reason: "expired"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Stock)

	_, err = e.ledger.Adjust(ctx, e.admin, drug.ID, dto.AdjustStockRequest{Delta: -4, Reason: "damaged"})
	assertKind(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, e.stockOf(t, drug.ID))
}

func TestApplyTx_RollsBackWithCaller(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	drug := e.seedDrug(t, "Paracetamol", "box", "tablet", 10, 5)

	err := runTx(ctx, e.db, func(tx *gorm.DB) error {
		if _, err := e.ledger.ApplyTx(tx, LedgerEntry{DrugID: drug.ID, Delta: 10, Kind: model.MovementAdjustment, ActorID: e.admin.UserID}); err != nil {
			return err
		}
		_, err := e.ledger.ApplyTx(tx, LedgerEntry{DrugID: drug.ID, Delta: -100, Kind: model.MovementDispense, ActorID: e.admin.UserID})
		return err
	})
	assertKind(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, e.stockOf(t, drug.ID))
	assert.Zero(t, e.count(t, &model.StockMovement{}, ""))
}
