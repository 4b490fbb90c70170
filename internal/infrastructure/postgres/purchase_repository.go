package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación de PurchaseRepository sobre PostgreSQL.
// Las transiciones de estado se hacen con UPDATE condicional para que la doble
// recepción pierda la carrera en la base y no en memoria.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador.
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, supplier_id, component_id, quantity, unit_price, status, invoice, notes, created_by, created_at, received_at`

func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (id, supplier_id, component_id, quantity, unit_price, status, invoice, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SupplierID, p.ComponentID, p.Quantity, p.UnitPrice, p.Status,
		nullIfEmpty(p.Invoice), nullIfEmpty(p.Notes), nullIfEmpty(p.CreatedBy), p.CreatedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "create purchase", Err: err}
	}
	return nil
}

func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`
	p, err := scanPurchaseRow(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isMissingRow(err) {
			return nil, nil
		}
		return nil, &domain.StorageError{Op: "get purchase", Err: err}
	}
	return p, nil
}

func (r *PurchaseRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "list purchases", Err: err}
	}
	defer rows.Close()

	var list []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchaseRow(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan purchase", Err: err}
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list purchases", Err: err}
	}
	return list, nil
}

// MarkReceived transición pendiente -> recibida. false si no estaba pendiente.
func (r *PurchaseRepo) MarkReceived(ctx context.Context, id string, receivedAt time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE purchases SET status = $2, received_at = $3 WHERE id = $1 AND status = $4`,
		id, entity.PurchaseStatusRecibida, receivedAt, entity.PurchaseStatusPendiente,
	)
	if err != nil {
		return false, &domain.StorageError{Op: "mark purchase received", Err: err}
	}
	return tag.RowsAffected() > 0, nil
}

// Revert transición recibida -> pendiente (compensación).
func (r *PurchaseRepo) Revert(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE purchases SET status = $2, received_at = NULL WHERE id = $1 AND status = $3`,
		id, entity.PurchaseStatusPendiente, entity.PurchaseStatusRecibida,
	)
	if err != nil {
		return false, &domain.StorageError{Op: "revert purchase", Err: err}
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel transición pendiente -> cancelada. false si no estaba pendiente.
func (r *PurchaseRepo) Cancel(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE purchases SET status = $2 WHERE id = $1 AND status = $3`,
		id, entity.PurchaseStatusCancelada, entity.PurchaseStatusPendiente,
	)
	if err != nil {
		return false, &domain.StorageError{Op: "cancel purchase", Err: err}
	}
	return tag.RowsAffected() > 0, nil
}

func scanPurchaseRow(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	var invoice, notes, createdBy *string
	if err := row.Scan(&p.ID, &p.SupplierID, &p.ComponentID, &p.Quantity, &p.UnitPrice,
		&p.Status, &invoice, &notes, &createdBy, &p.CreatedAt, &p.ReceivedAt); err != nil {
		return nil, err
	}
	if invoice != nil {
		p.Invoice = *invoice
	}
	if notes != nil {
		p.Notes = *notes
	}
	if createdBy != nil {
		p.CreatedBy = *createdBy
	}
	return &p, nil
}
