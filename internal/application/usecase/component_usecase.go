package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agropartes/agropartes-api/internal/application/dto"
	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

// ComponentUseCase casos de uso CRUD para el catálogo de componentes.
// El stock NO se gestiona aquí: se deriva de los movimientos del ledger.
type ComponentUseCase struct {
	repo repository.ComponentRepository
}

// NewComponentUseCase construye el caso de uso.
func NewComponentUseCase(repo repository.ComponentRepository) *ComponentUseCase {
	return &ComponentUseCase{repo: repo}
}

// Create crea un componente nuevo. Code es único.
func (uc *ComponentUseCase) Create(ctx context.Context, in dto.CreateComponentRequest) (*dto.ComponentResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MinimumStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	component := &entity.Component{
		ID:           uuid.New().String(),
		Code:         in.Code,
		Name:         in.Name,
		Description:  in.Description,
		MachineID:    in.MachineID,
		MinimumStock: in.MinimumStock,
		UnitPrice:    in.UnitPrice,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, component); err != nil {
		return nil, err
	}
	return toComponentResponse(component), nil
}

// GetByID obtiene un componente por ID.
func (uc *ComponentUseCase) GetByID(ctx context.Context, id string) (*dto.ComponentResponse, error) {
	component, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, domain.ErrNotFound
	}
	return toComponentResponse(component), nil
}

// Update actualiza los campos editables. Code no cambia; el stock nunca se toca aquí.
func (uc *ComponentUseCase) Update(ctx context.Context, id string, in dto.UpdateComponentRequest) (*dto.ComponentResponse, error) {
	component, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		component.Name = *in.Name
	}
	if in.Description != nil {
		component.Description = *in.Description
	}
	if in.MachineID != nil {
		component.MachineID = in.MachineID
	}
	if in.MinimumStock != nil {
		if *in.MinimumStock < 0 {
			return nil, domain.ErrInvalidInput
		}
		component.MinimumStock = *in.MinimumStock
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		component.UnitPrice = in.UnitPrice
	}
	component.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, component); err != nil {
		return nil, err
	}
	return toComponentResponse(component), nil
}

// List lista componentes activos con paginación.
func (uc *ComponentUseCase) List(ctx context.Context, limit, offset int) (*dto.ComponentListResponse, error) {
	list, err := uc.repo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ComponentResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toComponentResponse(c))
	}
	return &dto.ComponentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Deactivate marca el componente como inactivo. Sus movimientos históricos se
// conservan; el ledger rechaza movimientos nuevos sobre componentes inactivos.
func (uc *ComponentUseCase) Deactivate(ctx context.Context, id string) error {
	component, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if component == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Deactivate(ctx, id)
}

func toComponentResponse(c *entity.Component) *dto.ComponentResponse {
	if c == nil {
		return nil
	}
	return &dto.ComponentResponse{
		ID:           c.ID,
		Code:         c.Code,
		Name:         c.Name,
		Description:  c.Description,
		MachineID:    c.MachineID,
		MinimumStock: c.MinimumStock,
		UnitPrice:    c.UnitPrice,
		Active:       c.Active,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
