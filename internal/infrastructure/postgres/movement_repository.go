package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del log de movimientos sobre PostgreSQL.
// La tabla stock_movements es append-only: este repo no expone UPDATE ni DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append persiste el movimiento y devuelve el ID asignado por la secuencia.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) (int64, error) {
	query := `
		INSERT INTO stock_movements
			(component_id, kind, quantity, balance_before, balance_after, unit_price, reason, actor, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		m.ComponentID, m.Kind, m.Quantity, m.BalanceBefore, m.BalanceAfter,
		m.UnitPrice, nullIfEmpty(m.Reason), nullIfEmpty(m.Actor), nullIfEmpty(m.Reference), m.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, &domain.StorageError{Op: "append movement", Err: err}
	}
	return id, nil
}

// LatestBalance devuelve el balance_after del movimiento más reciente del
// componente (orden created_at, id). found=false si no hay movimientos.
func (r *MovementRepo) LatestBalance(ctx context.Context, componentID string) (int64, bool, error) {
	query := `
		SELECT balance_after FROM stock_movements
		WHERE component_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	var balance int64
	err := r.q.QueryRow(ctx, query, componentID).Scan(&balance)
	if err != nil {
		if isMissingRow(err) {
			return 0, false, nil
		}
		return 0, false, &domain.StorageError{Op: "latest balance", Err: err}
	}
	return balance, true, nil
}

// RangeByComponent lista movimientos de un componente en un rango de fechas,
// ordenados por created_at y luego id (orden total de la cadena).
func (r *MovementRepo) RangeByComponent(ctx context.Context, componentID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `
		SELECT id, component_id, kind, quantity, balance_before, balance_after, unit_price, reason, actor, reference, created_at
		FROM stock_movements WHERE component_id = $1`
	args := []any{componentID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "range by component", Err: err}
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan movement", Err: err}
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "range by component", Err: err}
	}
	return list, nil
}

// AllActiveComponentsWithBalance devuelve el saldo derivado de cada componente
// activo en una sola consulta (un único snapshot): el balance_after del último
// movimiento, o 0 si no tiene movimientos.
func (r *MovementRepo) AllActiveComponentsWithBalance(ctx context.Context) ([]repository.ComponentBalance, error) {
	query := `
		SELECT c.id, c.name, c.minimum_stock, c.unit_price, COALESCE(m.balance_after, 0)
		FROM components c
		LEFT JOIN LATERAL (
			SELECT balance_after FROM stock_movements
			WHERE component_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) m ON true
		WHERE c.active
		ORDER BY c.name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, &domain.StorageError{Op: "components with balance", Err: err}
	}
	defer rows.Close()

	var list []repository.ComponentBalance
	for rows.Next() {
		var b repository.ComponentBalance
		if err := rows.Scan(&b.ComponentID, &b.Name, &b.MinimumStock, &b.UnitPrice, &b.Balance); err != nil {
			return nil, &domain.StorageError{Op: "scan component balance", Err: err}
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "components with balance", Err: err}
	}
	return list, nil
}

func scanMovement(rows pgx.Rows) (*entity.Movement, error) {
	var m entity.Movement
	var reason, actor, reference *string
	if err := rows.Scan(&m.ID, &m.ComponentID, &m.Kind, &m.Quantity,
		&m.BalanceBefore, &m.BalanceAfter, &m.UnitPrice,
		&reason, &actor, &reference, &m.CreatedAt); err != nil {
		return nil, err
	}
	if reason != nil {
		m.Reason = *reason
	}
	if actor != nil {
		m.Actor = *actor
	}
	if reference != nil {
		m.Reference = *reference
	}
	return &m, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
