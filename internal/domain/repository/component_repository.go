package repository

import (
	"context"

	"github.com/agropartes/agropartes-api/internal/domain/entity"
)

// ComponentRepository define el puerto de persistencia del catálogo de
// componentes. El ledger lo consume solo en lectura.
type ComponentRepository interface {
	Create(ctx context.Context, component *entity.Component) error
	GetByID(ctx context.Context, id string) (*entity.Component, error)
	GetByCode(ctx context.Context, code string) (*entity.Component, error)
	Update(ctx context.Context, component *entity.Component) error
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Component, error)
	Deactivate(ctx context.Context, id string) error
}
