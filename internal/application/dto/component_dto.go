package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateComponentRequest body para POST /api/components.
type CreateComponentRequest struct {
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	MachineID    *string          `json:"machine_id,omitempty"`
	MinimumStock int64            `json:"minimum_stock"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
}

// UpdateComponentRequest body para PUT /api/components/:id (campos opcionales).
type UpdateComponentRequest struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	MachineID    *string          `json:"machine_id,omitempty"`
	MinimumStock *int64           `json:"minimum_stock,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
}

// ComponentResponse representación de un componente del catálogo.
type ComponentResponse struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	MachineID    *string          `json:"machine_id,omitempty"`
	MinimumStock int64            `json:"minimum_stock"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	Active       bool             `json:"active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ComponentListResponse listado paginado.
type ComponentListResponse struct {
	Items []ComponentResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
