package repository

import (
	"context"
	"time"

	"github.com/agropartes/agropartes-api/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para compras.
// MarkReceived y Revert son transiciones condicionales de estado: devuelven
// false si la compra no estaba en el estado esperado (guard contra doble recepción).
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Purchase, error)
	// MarkReceived: pendiente -> recibida. false si no estaba pendiente.
	MarkReceived(ctx context.Context, id string, receivedAt time.Time) (bool, error)
	// Revert: recibida -> pendiente (compensación si el movimiento falla).
	Revert(ctx context.Context, id string) (bool, error)
	// Cancel: pendiente -> cancelada. false si no estaba pendiente.
	Cancel(ctx context.Context, id string) (bool, error)
}
