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

// MachineUseCase casos de uso CRUD para máquinas.
type MachineUseCase struct {
	repo repository.MachineRepository
}

// NewMachineUseCase construye el caso de uso.
func NewMachineUseCase(repo repository.MachineRepository) *MachineUseCase {
	return &MachineUseCase{repo: repo}
}

// Create registra una máquina nueva.
func (uc *MachineUseCase) Create(ctx context.Context, in dto.CreateMachineRequest) (*dto.MachineResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	machine := &entity.Machine{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Brand:        in.Brand,
		Model:        in.Model,
		SerialNumber: in.SerialNumber,
		Year:         in.Year,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, machine); err != nil {
		return nil, err
	}
	return toMachineResponse(machine), nil
}

// GetByID obtiene una máquina por ID.
func (uc *MachineUseCase) GetByID(ctx context.Context, id string) (*dto.MachineResponse, error) {
	machine, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, domain.ErrNotFound
	}
	return toMachineResponse(machine), nil
}

// Update actualiza los campos editables de la máquina.
func (uc *MachineUseCase) Update(ctx context.Context, id string, in dto.UpdateMachineRequest) (*dto.MachineResponse, error) {
	machine, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		machine.Name = *in.Name
	}
	if in.Brand != nil {
		machine.Brand = *in.Brand
	}
	if in.Model != nil {
		machine.Model = *in.Model
	}
	if in.SerialNumber != nil {
		machine.SerialNumber = *in.SerialNumber
	}
	if in.Year != nil {
		machine.Year = *in.Year
	}
	machine.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, machine); err != nil {
		return nil, err
	}
	return toMachineResponse(machine), nil
}

// List lista máquinas con paginación.
func (uc *MachineUseCase) List(ctx context.Context, limit, offset int) (*dto.MachineListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MachineResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMachineResponse(m))
	}
	return &dto.MachineListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Deactivate marca la máquina como inactiva.
func (uc *MachineUseCase) Deactivate(ctx context.Context, id string) error {
	machine, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if machine == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Deactivate(ctx, id)
}

func toMachineResponse(m *entity.Machine) *dto.MachineResponse {
	if m == nil {
		return nil
	}
	return &dto.MachineResponse{
		ID:           m.ID,
		Name:         m.Name,
		Brand:        m.Brand,
		Model:        m.Model,
		SerialNumber: m.SerialNumber,
		Year:         m.Year,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
