package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agropartes/agropartes-api/internal/application/ledger"
	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta la sección crítica del ledger dentro de una transacción
// PostgreSQL, serializada por componente con un bloqueo de fila sobre el
// catálogo (SELECT ... FOR UPDATE). No existe ningún contador de stock mutable:
// el lock vive en la fila del componente y el saldo se deriva de los movimientos.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, bloquea la fila del componente y ejecuta fn con
// repos atados a la tx; Commit si fn retorna nil, Rollback si no. Los fallos de
// concurrencia del motor (serialization/deadlock) se clasifican como
// domain.ErrConflict para que el caller decida reintentar.
func (r *TxRunner) Run(ctx context.Context, componentID string, fn func(
	movRepo repository.MovementRepository,
	componentRepo repository.ComponentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return &domain.StorageError{Op: "begin transaction", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serializa Apply por componente. Si la fila no existe, o el id ni siquiera
	// es un UUID válido, fn devolverá ErrNotFound al consultar el catálogo.
	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM components WHERE id = $1 FOR UPDATE`, componentID).Scan(&locked)
	if err != nil && !isMissingRow(err) {
		return classify("lock component row", err)
	}

	movRepo := NewMovementRepository(tx)
	componentRepo := NewComponentRepository(tx)

	if err := fn(movRepo, componentRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}

// classify envuelve errores del motor: conflicto reintentable o fallo de almacenamiento.
func classify(op string, err error) error {
	if isSerializationFailure(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return &domain.StorageError{Op: op, Err: err}
}
