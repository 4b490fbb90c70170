package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra.
const (
	PurchaseStatusPendiente = "pendiente"
	PurchaseStatusRecibida  = "recibida"
	PurchaseStatusCancelada = "cancelada"
)

// Purchase representa una orden de compra de un repuesto a un proveedor.
// Al marcarse recibida dispara un movimiento "compra" en el ledger.
type Purchase struct {
	ID          string
	SupplierID  string
	ComponentID string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Status      string
	Invoice     string // número de factura del proveedor (opcional)
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
	ReceivedAt  *time.Time
}
