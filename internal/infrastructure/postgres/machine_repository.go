package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

var _ repository.MachineRepository = (*MachineRepo)(nil)

// MachineRepo implementación de MachineRepository sobre PostgreSQL.
type MachineRepo struct {
	q Querier
}

// NewMachineRepository construye el adaptador.
func NewMachineRepository(q Querier) *MachineRepo {
	return &MachineRepo{q: q}
}

const machineColumns = `id, name, brand, model, serial_number, year, active, created_at, updated_at`

func (r *MachineRepo) Create(ctx context.Context, m *entity.Machine) error {
	query := `
		INSERT INTO machines (id, name, brand, model, serial_number, year, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Name, nullIfEmpty(m.Brand), nullIfEmpty(m.Model), nullIfEmpty(m.SerialNumber),
		m.Year, m.Active, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "create machine", Err: err}
	}
	return nil
}

func (r *MachineRepo) GetByID(ctx context.Context, id string) (*entity.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE id = $1`
	m, err := scanMachineRow(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isMissingRow(err) {
			return nil, nil
		}
		return nil, &domain.StorageError{Op: "get machine", Err: err}
	}
	return m, nil
}

func (r *MachineRepo) Update(ctx context.Context, m *entity.Machine) error {
	query := `
		UPDATE machines
		SET name = $2, brand = $3, model = $4, serial_number = $5, year = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.Name, nullIfEmpty(m.Brand), nullIfEmpty(m.Model), nullIfEmpty(m.SerialNumber), m.Year, m.UpdatedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "update machine", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MachineRepo) List(ctx context.Context, limit, offset int) ([]*entity.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE active ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, &domain.StorageError{Op: "list machines", Err: err}
	}
	defer rows.Close()

	var list []*entity.Machine
	for rows.Next() {
		m, err := scanMachineRow(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan machine", Err: err}
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list machines", Err: err}
	}
	return list, nil
}

func (r *MachineRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE machines SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return &domain.StorageError{Op: "deactivate machine", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMachineRow(row pgx.Row) (*entity.Machine, error) {
	var m entity.Machine
	var brand, model, serial *string
	if err := row.Scan(&m.ID, &m.Name, &brand, &model, &serial,
		&m.Year, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if brand != nil {
		m.Brand = *brand
	}
	if model != nil {
		m.Model = *model
	}
	if serial != nil {
		m.SerialNumber = *serial
	}
	return &m, nil
}
