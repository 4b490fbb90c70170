package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	SupplierID  string          `json:"supplier_id"`
	ComponentID string          `json:"component_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Invoice     string          `json:"invoice,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// PurchaseResponse representación de una compra.
type PurchaseResponse struct {
	ID          string          `json:"id"`
	SupplierID  string          `json:"supplier_id"`
	ComponentID string          `json:"component_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Status      string          `json:"status"`
	Invoice     string          `json:"invoice,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ReceivedAt  *time.Time      `json:"received_at,omitempty"`
}

// ReceivePurchaseResponse resultado de recibir una compra: la compra
// actualizada y el movimiento de ledger que generó.
type ReceivePurchaseResponse struct {
	Purchase PurchaseResponse `json:"purchase"`
	Movement MovementResponse `json:"movement"`
}

// PurchaseListResponse listado paginado.
type PurchaseListResponse struct {
	Items []PurchaseResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
