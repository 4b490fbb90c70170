package repository

import (
	"context"

	"github.com/agropartes/agropartes-api/internal/domain/entity"
)

// MachineRepository define el puerto de persistencia para máquinas.
type MachineRepository interface {
	Create(ctx context.Context, machine *entity.Machine) error
	GetByID(ctx context.Context, id string) (*entity.Machine, error)
	Update(ctx context.Context, machine *entity.Machine) error
	List(ctx context.Context, limit, offset int) ([]*entity.Machine, error)
	Deactivate(ctx context.Context, id string) error
}
