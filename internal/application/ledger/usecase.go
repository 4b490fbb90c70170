package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
	"github.com/agropartes/agropartes-api/pkg/logger"
)

// Reintentos ante conflicto de concurrencia del almacén (serialization failure
// o deadlock). El bloqueo por componente los hace raros; existen para
// implementaciones con concurrencia optimista.
const (
	maxConflictRetries = 3
	retryBaseBackoff   = 25 * time.Millisecond
)

// UseCase es el motor del ledger: convierte una intención de movimiento en un
// registro validado y consistente con la cadena de saldos, y responde consultas
// de saldo sin confiar nunca en un contador mutable.
type UseCase struct {
	txRunner      TxRunner
	movementRepo  repository.MovementRepository
	componentRepo repository.ComponentRepository
	log           *logger.Logger
}

// NewUseCase construye el motor. movementRepo y componentRepo se usan solo para
// lecturas fuera de la sección crítica; las escrituras pasan por txRunner.
func NewUseCase(
	txRunner TxRunner,
	movementRepo repository.MovementRepository,
	componentRepo repository.ComponentRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		movementRepo:  movementRepo,
		componentRepo: componentRepo,
		log:           log,
	}
}

// ApplyInput es la intención de movimiento que envía el caller.
// Magnitude es positivo para entrada/salida/compra/consumo/devolucion; para
// ajuste es el saldo objetivo absoluto (puede ser cero).
type ApplyInput struct {
	ComponentID string
	Kind        string
	Magnitude   int64
	UnitPrice   *decimal.Decimal
	Reason      string
	Actor       string
	Reference   string
}

// Apply valida la intención contra el saldo derivado actual y agrega el
// movimiento de forma atómica. Devuelve el movimiento persistido (con ID y
// saldo final). La lectura del saldo y el append se serializan por componente.
func (uc *UseCase) Apply(ctx context.Context, in ApplyInput) (*entity.Movement, error) {
	if !entity.ValidKind(in.Kind) {
		return nil, domain.ErrInvalidKind
	}
	if in.Kind == entity.MovementKindAjuste {
		if in.Magnitude < 0 {
			return nil, domain.ErrInvalidQuantity
		}
	} else if in.Magnitude <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var applied *entity.Movement
	for attempt := 0; ; attempt++ {
		err := uc.txRunner.Run(ctx, in.ComponentID, func(
			movRepo repository.MovementRepository,
			componentRepo repository.ComponentRepository,
		) error {
			mov, err := uc.applyInTx(ctx, movRepo, componentRepo, in)
			if err != nil {
				return err
			}
			applied = mov
			return nil
		})
		if err == nil {
			uc.log.Debug().
				Str("component_id", in.ComponentID).
				Str("kind", in.Kind).
				Int64("quantity", applied.Quantity).
				Int64("balance_after", applied.BalanceAfter).
				Msg("movimiento registrado")
			return applied, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= maxConflictRetries {
			return nil, err
		}
		uc.log.Warn().
			Str("component_id", in.ComponentID).
			Int("attempt", attempt+1).
			Msg("conflicto de concurrencia, reintentando movimiento")
		if err := sleepCtx(ctx, retryBaseBackoff<<uint(attempt)); err != nil {
			return nil, err
		}
	}
}

// applyInTx corre dentro de la sección crítica por componente.
func (uc *UseCase) applyInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	componentRepo repository.ComponentRepository,
	in ApplyInput,
) (*entity.Movement, error) {
	component, err := componentRepo.GetByID(ctx, in.ComponentID)
	if err != nil {
		return nil, err
	}
	if component == nil || !component.Active {
		return nil, domain.ErrNotFound
	}

	current, found, err := movRepo.LatestBalance(ctx, in.ComponentID)
	if err != nil {
		return nil, err
	}
	if !found {
		current = 0
	}

	var delta int64
	if in.Kind == entity.MovementKindAjuste {
		delta = in.Magnitude - current
	} else {
		delta = int64(entity.KindSign(in.Kind)) * in.Magnitude
	}
	if delta == 0 {
		return nil, domain.ErrNoOpMovement
	}
	// También cubre un saldo actual corrupto (negativo): cualquier resultado
	// negativo se rechaza, nunca se propaga.
	if current+delta < 0 {
		return nil, &domain.InsufficientStockError{
			ComponentID: in.ComponentID,
			Kind:        in.Kind,
			Current:     current,
			Requested:   delta,
		}
	}

	mov := &entity.Movement{
		ComponentID:   in.ComponentID,
		Kind:          in.Kind,
		Quantity:      delta,
		BalanceBefore: current,
		BalanceAfter:  current + delta,
		UnitPrice:     in.UnitPrice,
		Reason:        in.Reason,
		Actor:         in.Actor,
		Reference:     in.Reference,
		CreatedAt:     time.Now(),
	}
	id, err := movRepo.Append(ctx, mov)
	if err != nil {
		return nil, err
	}
	mov.ID = id
	return mov, nil
}

// Balance devuelve el saldo derivado actual del componente: el balance_after de
// su último movimiento, o 0 si no tiene movimientos. ErrNotFound si el
// componente no existe o está inactivo.
func (uc *UseCase) Balance(ctx context.Context, componentID string) (int64, error) {
	component, err := uc.componentRepo.GetByID(ctx, componentID)
	if err != nil {
		return 0, err
	}
	if component == nil || !component.Active {
		return 0, domain.ErrNotFound
	}
	balance, found, err := uc.movementRepo.LatestBalance(ctx, componentID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return balance, nil
}

// History devuelve los movimientos del componente en el rango [from, to],
// ordenados por fecha y luego por id (kardex).
func (uc *UseCase) History(ctx context.Context, componentID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	component, err := uc.componentRepo.GetByID(ctx, componentID)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movementRepo.RangeByComponent(ctx, componentID, from, to, limit, offset)
}

// sleepCtx duerme respetando la cancelación del contexto.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
