package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agropartes/agropartes-api/internal/domain/entity"
)

func TestLowStock_UmbralYOrden(t *testing.T) {
	uc, store := newEngine(t)

	// bajo el umbral (déficit 7)
	critical := seedComponent(t, store, "Filtro hidráulico", 10, nil)
	apply(t, uc, critical, entity.MovementKindEntrada, 3)
	// exactamente en el umbral (déficit 0): también alerta
	atThreshold := seedComponent(t, store, "Aceite 15W40", 5, nil)
	apply(t, uc, atThreshold, entity.MovementKindEntrada, 5)
	// por encima del umbral: no alerta
	healthy := seedComponent(t, store, "Correa dentada", 2, nil)
	apply(t, uc, healthy, entity.MovementKindEntrada, 8)
	// umbral 0: nunca alerta, aunque el saldo sea 0
	noThreshold := seedComponent(t, store, "Arandela", 0, nil)
	_ = noThreshold
	// sin movimientos con umbral > 0: saldo 0, déficit igual al umbral
	neverMoved := seedComponent(t, store, "Bomba de agua", 4, nil)
	_ = neverMoved

	items, err := uc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Déficit descendente: crítico (7), sin movimientos (4), en umbral (0).
	assert.Equal(t, critical, items[0].ComponentID)
	assert.Equal(t, int64(7), items[0].Deficit)
	assert.Equal(t, neverMoved, items[1].ComponentID)
	assert.Equal(t, int64(4), items[1].Deficit)
	assert.Equal(t, int64(0), items[1].Balance)
	assert.Equal(t, atThreshold, items[2].ComponentID)
	assert.Equal(t, int64(0), items[2].Deficit)
}

func TestLowStock_IgnoraInactivos(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Radiador", 5, nil)
	require.NoError(t, store.Components().Deactivate(context.Background(), componentID))

	items, err := uc.LowStock(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestValuation_TotalYPorComponente(t *testing.T) {
	uc, store := newEngine(t)

	priced := seedComponent(t, store, "Inyector", 0, decimalPtr("150.50"))
	apply(t, uc, priced, entity.MovementKindEntrada, 4)
	unpriced := seedComponent(t, store, "Abrazadera", 0, nil)
	apply(t, uc, unpriced, entity.MovementKindEntrada, 100)
	empty := seedComponent(t, store, "Termostato", 0, decimalPtr("80"))
	_ = empty

	valuation, err := uc.Valuation(context.Background())
	require.NoError(t, err)
	require.Len(t, valuation.Components, 3)

	byID := make(map[string]int)
	for i, item := range valuation.Components {
		byID[item.ComponentID] = i
	}

	pricedItem := valuation.Components[byID[priced]]
	assert.True(t, pricedItem.Value.Equal(decimal.RequireFromString("602")), "4 × 150.50 = 602, got %s", pricedItem.Value)
	assert.False(t, pricedItem.PriceMissing)

	// Sin precio: se valora en 0 y se marca, el reporte no falla.
	unpricedItem := valuation.Components[byID[unpriced]]
	assert.True(t, unpricedItem.PriceMissing)
	assert.True(t, unpricedItem.Value.IsZero())
	assert.Equal(t, int64(100), unpricedItem.Balance)

	// Con precio pero sin stock: valor 0.
	emptyItem := valuation.Components[byID[empty]]
	assert.True(t, emptyItem.Value.IsZero())
	assert.False(t, emptyItem.PriceMissing)

	assert.True(t, valuation.TotalValue.Equal(decimal.RequireFromString("602")), "total = %s", valuation.TotalValue)

	// Ordenado por nombre.
	for i := 1; i < len(valuation.Components); i++ {
		assert.LessOrEqual(t, valuation.Components[i-1].Name, valuation.Components[i].Name)
	}
}

func TestValuation_InventarioVacio(t *testing.T) {
	uc, _ := newEngine(t)
	valuation, err := uc.Valuation(context.Background())
	require.NoError(t, err)
	assert.Empty(t, valuation.Components)
	assert.True(t, valuation.TotalValue.IsZero())
}
