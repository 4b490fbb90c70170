package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agropartes/agropartes-api/internal/application/dto"
	"github.com/agropartes/agropartes-api/internal/application/usecase"
	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
	"github.com/agropartes/agropartes-api/internal/infrastructure/memory"
)

func newComponentUC() *usecase.ComponentUseCase {
	return usecase.NewComponentUseCase(memory.NewStore().Components())
}

func TestComponentCreate_CodigoUnico(t *testing.T) {
	uc := newComponentUC()

	created, err := uc.Create(context.Background(), dto.CreateComponentRequest{
		Code: "FLT-001", Name: "Filtro de aceite", MinimumStock: 5,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.NotEmpty(t, created.ID)

	_, err = uc.Create(context.Background(), dto.CreateComponentRequest{
		Code: "FLT-001", Name: "Otro filtro",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestComponentCreate_Validaciones(t *testing.T) {
	uc := newComponentUC()

	_, err := uc.Create(context.Background(), dto.CreateComponentRequest{Name: "sin código"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), dto.CreateComponentRequest{
		Code: "X-1", Name: "umbral negativo", MinimumStock: -1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	negative := decimal.NewFromInt(-5)
	_, err = uc.Create(context.Background(), dto.CreateComponentRequest{
		Code: "X-2", Name: "precio negativo", UnitPrice: &negative,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// brokenCodeLookupRepo simula un fallo de almacenamiento en la consulta por código.
type brokenCodeLookupRepo struct {
	repository.ComponentRepository
	err error
}

func (r brokenCodeLookupRepo) GetByCode(context.Context, string) (*entity.Component, error) {
	return nil, r.err
}

func TestComponentCreate_FalloDeLecturaSePropaga(t *testing.T) {
	uc := usecase.NewComponentUseCase(brokenCodeLookupRepo{
		ComponentRepository: memory.NewStore().Components(),
		err:                 &domain.StorageError{Op: "get component", Err: errors.New("conexión perdida")},
	})

	_, err := uc.Create(context.Background(), dto.CreateComponentRequest{
		Code: "FLT-001", Name: "Filtro",
	})
	assert.ErrorIs(t, err, domain.ErrStorage, "un fallo al verificar el código no debe tratarse como ausencia de duplicado")
}

func TestComponentUpdate_CamposParciales(t *testing.T) {
	uc := newComponentUC()
	created, err := uc.Create(context.Background(), dto.CreateComponentRequest{
		Code: "FLT-001", Name: "Filtro", MinimumStock: 5,
	})
	require.NoError(t, err)

	newMin := int64(12)
	price := decimal.RequireFromString("99.90")
	updated, err := uc.Update(context.Background(), created.ID, dto.UpdateComponentRequest{
		MinimumStock: &newMin,
		UnitPrice:    &price,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), updated.MinimumStock)
	assert.Equal(t, "Filtro", updated.Name, "los campos no enviados no cambian")
	require.NotNil(t, updated.UnitPrice)
	assert.True(t, updated.UnitPrice.Equal(price))
}

func TestComponentDeactivate_SaleDelListado(t *testing.T) {
	uc := newComponentUC()
	created, err := uc.Create(context.Background(), dto.CreateComponentRequest{
		Code: "FLT-001", Name: "Filtro",
	})
	require.NoError(t, err)

	require.NoError(t, uc.Deactivate(context.Background(), created.ID))

	list, err := uc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	// GetByID sigue encontrándolo (inactivo), pero Deactivate de un ID
	// desconocido es ErrNotFound.
	got, err := uc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.ErrorIs(t, uc.Deactivate(context.Background(), "no-existe"), domain.ErrNotFound)
}
