package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Component representa un repuesto o componente del catálogo (filtros, correas,
// rodamientos, etc.). El stock NO es un campo del componente: se deriva siempre
// de los movimientos del ledger.
type Component struct {
	ID           string
	Code         string // código único del repuesto
	Name         string
	Description  string
	MachineID    *string // máquina compatible (opcional)
	MinimumStock int64   // umbral de stock bajo (>= 0)
	UnitPrice    *decimal.Decimal
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
