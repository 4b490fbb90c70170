package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación de SupplierRepository sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, name, tax_id, email, phone, active, created_at, updated_at`

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (id, name, tax_id, email, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Name, nullIfEmpty(s.TaxID), nullIfEmpty(s.Email), nullIfEmpty(s.Phone),
		s.Active, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "create supplier", Err: err}
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	s, err := scanSupplierRow(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isMissingRow(err) {
			return nil, nil
		}
		return nil, &domain.StorageError{Op: "get supplier", Err: err}
	}
	return s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $2, tax_id = $3, email = $4, phone = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.Name, nullIfEmpty(s.TaxID), nullIfEmpty(s.Email), nullIfEmpty(s.Phone), s.UpdatedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "update supplier", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE active ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, &domain.StorageError{Op: "list suppliers", Err: err}
	}
	defer rows.Close()

	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplierRow(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan supplier", Err: err}
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list suppliers", Err: err}
	}
	return list, nil
}

func (r *SupplierRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE suppliers SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return &domain.StorageError{Op: "deactivate supplier", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSupplierRow(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	var taxID, email, phone *string
	if err := row.Scan(&s.ID, &s.Name, &taxID, &email, &phone,
		&s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if taxID != nil {
		s.TaxID = *taxID
	}
	if email != nil {
		s.Email = *email
	}
	if phone != nil {
		s.Phone = *phone
	}
	return &s, nil
}
