package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

var _ repository.ComponentRepository = (*ComponentRepo)(nil)

// ComponentRepo implementación del catálogo de componentes sobre PostgreSQL.
type ComponentRepo struct {
	q Querier
}

// NewComponentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComponentRepository(q Querier) *ComponentRepo {
	return &ComponentRepo{q: q}
}

const componentColumns = `id, code, name, description, machine_id, minimum_stock, unit_price, active, created_at, updated_at`

// Create persiste un componente nuevo.
func (r *ComponentRepo) Create(ctx context.Context, c *entity.Component) error {
	query := `
		INSERT INTO components (id, code, name, description, machine_id, minimum_stock, unit_price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Code, c.Name, nullIfEmpty(c.Description), c.MachineID,
		c.MinimumStock, c.UnitPrice, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return &domain.StorageError{Op: "create component", Err: err}
	}
	return nil
}

// GetByID obtiene un componente por ID; nil si no existe.
func (r *ComponentRepo) GetByID(ctx context.Context, id string) (*entity.Component, error) {
	return r.getBy(ctx, "id", id)
}

// GetByCode obtiene un componente por código; nil si no existe.
func (r *ComponentRepo) GetByCode(ctx context.Context, code string) (*entity.Component, error) {
	return r.getBy(ctx, "code", code)
}

func (r *ComponentRepo) getBy(ctx context.Context, column, value string) (*entity.Component, error) {
	query := `SELECT ` + componentColumns + ` FROM components WHERE ` + column + ` = $1`
	row := r.q.QueryRow(ctx, query, value)
	c, err := scanComponentRow(row)
	if err != nil {
		if isMissingRow(err) {
			return nil, nil
		}
		return nil, &domain.StorageError{Op: "get component", Err: err}
	}
	return c, nil
}

// Update actualiza los campos editables (code no cambia).
func (r *ComponentRepo) Update(ctx context.Context, c *entity.Component) error {
	query := `
		UPDATE components
		SET name = $2, description = $3, machine_id = $4, minimum_stock = $5, unit_price = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.Name, nullIfEmpty(c.Description), c.MachineID, c.MinimumStock, c.UnitPrice, c.UpdatedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "update component", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActive lista componentes activos ordenados por nombre.
func (r *ComponentRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.Component, error) {
	query := `SELECT ` + componentColumns + ` FROM components WHERE active ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, &domain.StorageError{Op: "list components", Err: err}
	}
	defer rows.Close()

	var list []*entity.Component
	for rows.Next() {
		c, err := scanComponentRow(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan component", Err: err}
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list components", Err: err}
	}
	return list, nil
}

// Deactivate marca el componente como inactivo (soft delete: los movimientos
// históricos lo referencian).
func (r *ComponentRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE components SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return &domain.StorageError{Op: "deactivate component", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanComponentRow(row pgx.Row) (*entity.Component, error) {
	var c entity.Component
	var description *string
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &description, &c.MachineID,
		&c.MinimumStock, &c.UnitPrice, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if description != nil {
		c.Description = *description
	}
	return &c, nil
}
