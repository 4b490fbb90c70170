package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Para ajuste, quantity es el saldo objetivo absoluto (puede ser 0);
// para el resto es la magnitud positiva del movimiento.
type RegisterMovementRequest struct {
	ComponentID string           `json:"component_id"`
	Kind        string           `json:"kind"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	Reference   string           `json:"reference,omitempty"`
}

// MovementResponse representa un movimiento registrado (inmutable).
type MovementResponse struct {
	ID            int64            `json:"id"`
	ComponentID   string           `json:"component_id"`
	Kind          string           `json:"kind"`
	Quantity      int64            `json:"quantity"`
	BalanceBefore int64            `json:"balance_before"`
	BalanceAfter  int64            `json:"balance_after"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Actor         string           `json:"actor,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// BalanceResponse saldo derivado actual de un componente.
type BalanceResponse struct {
	ComponentID string `json:"component_id"`
	Balance     int64  `json:"balance"`
}

// LowStockItemDTO componente en o por debajo de su umbral mínimo.
type LowStockItemDTO struct {
	ComponentID  string `json:"component_id"`
	Name         string `json:"name"`
	Balance      int64  `json:"balance"`
	MinimumStock int64  `json:"minimum_stock"`
	Deficit      int64  `json:"deficit"` // minimum_stock - balance
}

// ValuationItemDTO valor del stock de un componente.
type ValuationItemDTO struct {
	ComponentID  string          `json:"component_id"`
	Name         string          `json:"name"`
	Balance      int64           `json:"balance"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Value        decimal.Decimal `json:"value"`
	PriceMissing bool            `json:"price_missing"`
}

// ValuationDTO valorización total del inventario.
type ValuationDTO struct {
	TotalValue decimal.Decimal    `json:"total_value"`
	Components []ValuationItemDTO `json:"components"`
}
