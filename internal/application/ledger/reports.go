package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/agropartes/agropartes-api/internal/application/dto"
)

// LowStock devuelve los componentes activos cuyo saldo está en o por debajo de
// su umbral mínimo, ordenados por déficit descendente (el más crítico primero)
// y nombre como desempate. Componentes con umbral 0 no aparecen nunca: umbral
// cero significa "sin alerta". Un componente sin movimientos cuenta con saldo 0.
func (uc *UseCase) LowStock(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	balances, err := uc.movementRepo.AllActiveComponentsWithBalance(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LowStockItemDTO, 0)
	for _, b := range balances {
		if b.MinimumStock <= 0 || b.Balance > b.MinimumStock {
			continue
		}
		items = append(items, dto.LowStockItemDTO{
			ComponentID:  b.ComponentID,
			Name:         b.Name,
			Balance:      b.Balance,
			MinimumStock: b.MinimumStock,
			Deficit:      b.MinimumStock - b.Balance,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Deficit != items[j].Deficit {
			return items[i].Deficit > items[j].Deficit
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// Valuation calcula el valor del inventario: saldo × precio unitario por cada
// componente activo, y la suma total. Un componente sin precio se valora en 0
// y se marca price_missing en lugar de hacer fallar el reporte.
func (uc *UseCase) Valuation(ctx context.Context) (*dto.ValuationDTO, error) {
	balances, err := uc.movementRepo.AllActiveComponentsWithBalance(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := make([]dto.ValuationItemDTO, 0, len(balances))
	for _, b := range balances {
		item := dto.ValuationItemDTO{
			ComponentID: b.ComponentID,
			Name:        b.Name,
			Balance:     b.Balance,
			Value:       decimal.Zero,
		}
		if b.UnitPrice == nil {
			item.PriceMissing = true
		} else {
			item.UnitPrice = *b.UnitPrice
			item.Value = decimal.NewFromInt(b.Balance).Mul(*b.UnitPrice)
		}
		total = total.Add(item.Value)
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return &dto.ValuationDTO{TotalValue: total, Components: items}, nil
}
