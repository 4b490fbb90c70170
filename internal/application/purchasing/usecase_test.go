package purchasing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agropartes/agropartes-api/internal/application/dto"
	"github.com/agropartes/agropartes-api/internal/application/ledger"
	"github.com/agropartes/agropartes-api/internal/application/purchasing"
	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/infrastructure/memory"
	"github.com/agropartes/agropartes-api/pkg/logger"
)

type fixture struct {
	uc          *purchasing.UseCase
	ledgerUC    *ledger.UseCase
	store       *memory.Store
	supplierID  string
	componentID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	purchasingStore := memory.NewPurchasingStore()
	ledgerUC := ledger.NewUseCase(store.TxRunner(), store.Movements(), store.Components(), logger.Nop())
	uc := purchasing.NewUseCase(
		purchasingStore.Purchases(),
		purchasingStore.Suppliers(),
		store.Components(),
		ledgerUC,
		logger.Nop(),
	)

	now := time.Now()
	supplierID := uuid.New().String()
	require.NoError(t, purchasingStore.Suppliers().Create(context.Background(), &entity.Supplier{
		ID:        supplierID,
		Name:      "AgroRepuestos SRL",
		TaxID:     "30-11111111-1",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	componentID := uuid.New().String()
	require.NoError(t, store.Components().Create(context.Background(), &entity.Component{
		ID:        componentID,
		Code:      "FLT-001",
		Name:      "Filtro de combustible",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	return &fixture{
		uc:          uc,
		ledgerUC:    ledgerUC,
		store:       store,
		supplierID:  supplierID,
		componentID: componentID,
	}
}

func (f *fixture) createPurchase(t *testing.T, quantity int64, price string) *dto.PurchaseResponse {
	t.Helper()
	purchase, err := f.uc.Create(context.Background(), "user-1", dto.CreatePurchaseRequest{
		SupplierID:  f.supplierID,
		ComponentID: f.componentID,
		Quantity:    quantity,
		UnitPrice:   decimal.RequireFromString(price),
		Invoice:     "FC-0001",
	})
	require.NoError(t, err)
	return purchase
}

func TestCreate_EstadoInicialPendiente(t *testing.T) {
	f := newFixture(t)
	purchase := f.createPurchase(t, 12, "99.90")

	assert.Equal(t, entity.PurchaseStatusPendiente, purchase.Status)
	assert.Nil(t, purchase.ReceivedAt)

	// Crear la orden no toca el stock.
	balance, err := f.ledgerUC.Balance(context.Background(), f.componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), "user-1", dto.CreatePurchaseRequest{
		SupplierID:  f.supplierID,
		ComponentID: f.componentID,
		Quantity:    0,
		UnitPrice:   decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(context.Background(), "user-1", dto.CreatePurchaseRequest{
		SupplierID:  uuid.New().String(),
		ComponentID: f.componentID,
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_GeneraMovimientoDeCompra(t *testing.T) {
	f := newFixture(t)
	purchase := f.createPurchase(t, 12, "99.90")

	out, err := f.uc.Receive(context.Background(), purchase.ID, "user-2")
	require.NoError(t, err)

	assert.Equal(t, entity.PurchaseStatusRecibida, out.Purchase.Status)
	require.NotNil(t, out.Purchase.ReceivedAt)

	// El movimiento ingresa el stock con la orden como referencia.
	assert.Equal(t, entity.MovementKindCompra, out.Movement.Kind)
	assert.Equal(t, int64(12), out.Movement.Quantity)
	assert.Equal(t, purchase.ID, out.Movement.Reference)
	assert.Equal(t, "user-2", out.Movement.Actor)
	require.NotNil(t, out.Movement.UnitPrice)
	assert.True(t, out.Movement.UnitPrice.Equal(decimal.RequireFromString("99.90")))

	balance, err := f.ledgerUC.Balance(context.Background(), f.componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), balance)
}

func TestReceive_SoloUnaVez(t *testing.T) {
	f := newFixture(t)
	purchase := f.createPurchase(t, 5, "10")

	_, err := f.uc.Receive(context.Background(), purchase.ID, "user-1")
	require.NoError(t, err)

	_, err = f.uc.Receive(context.Background(), purchase.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	// El stock entró una sola vez.
	balance, err := f.ledgerUC.Balance(context.Background(), f.componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
}

func TestReceive_CompensaSiElMovimientoFalla(t *testing.T) {
	f := newFixture(t)
	purchase := f.createPurchase(t, 5, "10")

	// Desactivar el componente hace fallar el movimiento de compra.
	require.NoError(t, f.store.Components().Deactivate(context.Background(), f.componentID))

	_, err := f.uc.Receive(context.Background(), purchase.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// La recepción se revierte: la orden vuelve a pendiente.
	got, err := f.uc.GetByID(context.Background(), purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusPendiente, got.Status)
}

func TestCancel_SoloPendiente(t *testing.T) {
	f := newFixture(t)
	purchase := f.createPurchase(t, 5, "10")

	require.NoError(t, f.uc.Cancel(context.Background(), purchase.ID))

	got, err := f.uc.GetByID(context.Background(), purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusCancelada, got.Status)

	// Ni recibir ni volver a cancelar una orden cancelada.
	_, err = f.uc.Receive(context.Background(), purchase.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, f.uc.Cancel(context.Background(), purchase.ID), domain.ErrConflict)
}

func TestList_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	first := f.createPurchase(t, 1, "10")
	second := f.createPurchase(t, 2, "20")
	_, err := f.uc.Receive(context.Background(), first.ID, "user-1")
	require.NoError(t, err)

	pending, err := f.uc.List(context.Background(), entity.PurchaseStatusPendiente, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, second.ID, pending.Items[0].ID)

	_, err = f.uc.List(context.Background(), "desconocido", 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
