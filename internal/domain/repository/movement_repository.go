package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agropartes/agropartes-api/internal/domain/entity"
)

// ComponentBalance es el saldo derivado de un componente activo, junto con los
// datos del catálogo que necesitan los reportes (umbral y precio).
type ComponentBalance struct {
	ComponentID  string
	Name         string
	MinimumStock int64
	UnitPrice    *decimal.Decimal
	Balance      int64
}

// MovementRepository define el puerto de persistencia del log de movimientos.
// Contrato: append-only (sin Update ni Delete); LatestBalance refleja todos los
// Append confirmados; AllActiveComponentsWithBalance lee en un único punto
// lógico (una consulta / un snapshot), nunca lecturas intercaladas.
type MovementRepository interface {
	// Append persiste el movimiento y devuelve el ID asignado (monótono).
	Append(ctx context.Context, movement *entity.Movement) (int64, error)
	// LatestBalance devuelve el balance_after del último movimiento del
	// componente; found=false si no tiene movimientos (saldo 0).
	LatestBalance(ctx context.Context, componentID string) (balance int64, found bool, err error)
	// RangeByComponent lista movimientos ordenados por created_at y luego id.
	RangeByComponent(ctx context.Context, componentID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	// AllActiveComponentsWithBalance devuelve el saldo derivado de cada
	// componente activo (0 si no tiene movimientos) en un solo snapshot.
	AllActiveComponentsWithBalance(ctx context.Context) ([]ComponentBalance, error)
}
