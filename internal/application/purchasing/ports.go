package purchasing

import (
	"context"

	"github.com/agropartes/agropartes-api/internal/application/ledger"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
)

// LedgerService es el puerto hacia el motor de inventario: al recibir una
// compra se registra un movimiento "compra" con la referencia de la orden.
type LedgerService interface {
	Apply(ctx context.Context, in ledger.ApplyInput) (*entity.Movement, error)
}
