package ledger

import (
	"context"

	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de un ámbito serializado por componente: ningún
// otro Apply sobre el mismo componentID corre en paralelo mientras fn no
// retorne (lectura de saldo + append son una sección crítica). Movimientos de
// componentes distintos avanzan en paralelo.
//
// La implementación PostgreSQL abre una transacción y bloquea la fila del
// componente (SELECT ... FOR UPDATE); la implementación en memoria usa un
// mutex por componente. Commit/Rollback quedan dentro de Run: si fn devuelve
// error no se persiste nada.
type TxRunner interface {
	Run(ctx context.Context, componentID string, fn func(
		movRepo repository.MovementRepository,
		componentRepo repository.ComponentRepository,
	) error) error
}
