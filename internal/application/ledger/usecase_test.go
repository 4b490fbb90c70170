package ledger_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agropartes/agropartes-api/internal/application/ledger"
	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
	"github.com/agropartes/agropartes-api/internal/infrastructure/memory"
	"github.com/agropartes/agropartes-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// newEngine construye el motor del ledger sobre los repos en memoria.
func newEngine(t *testing.T) (*ledger.UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	uc := ledger.NewUseCase(store.TxRunner(), store.Movements(), store.Components(), logger.Nop())
	return uc, store
}

// seedComponent crea un componente activo y devuelve su ID.
func seedComponent(t *testing.T, store *memory.Store, name string, minimumStock int64, unitPrice *decimal.Decimal) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now()
	err := store.Components().Create(context.Background(), &entity.Component{
		ID:           id,
		Code:         "C-" + id[:8],
		Name:         name,
		MinimumStock: minimumStock,
		UnitPrice:    unitPrice,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return id
}

func apply(t *testing.T, uc *ledger.UseCase, componentID, kind string, magnitude int64) *entity.Movement {
	t.Helper()
	mov, err := uc.Apply(context.Background(), ledger.ApplyInput{
		ComponentID: componentID,
		Kind:        kind,
		Magnitude:   magnitude,
	})
	require.NoError(t, err)
	return mov
}

// ──────────────────────────────────────────────────────────────────────────────
// Apply: cadena de saldos
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_CadenaDeSaldos(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Filtro de aceite", 0, nil)

	// entrada 10 -> saldo 10
	mov := apply(t, uc, componentID, entity.MovementKindEntrada, 10)
	assert.Equal(t, int64(10), mov.Quantity)
	assert.Equal(t, int64(0), mov.BalanceBefore)
	assert.Equal(t, int64(10), mov.BalanceAfter)

	// salida 3 -> saldo 7
	mov = apply(t, uc, componentID, entity.MovementKindSalida, 3)
	assert.Equal(t, int64(-3), mov.Quantity)
	assert.Equal(t, int64(10), mov.BalanceBefore)
	assert.Equal(t, int64(7), mov.BalanceAfter)

	// ajuste a 5 -> se guarda el delta -2
	mov = apply(t, uc, componentID, entity.MovementKindAjuste, 5)
	assert.Equal(t, int64(-2), mov.Quantity)
	assert.Equal(t, int64(7), mov.BalanceBefore)
	assert.Equal(t, int64(5), mov.BalanceAfter)

	balance, err := uc.Balance(context.Background(), componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
}

func TestApply_SignosPorTipo(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Correa", 0, nil)

	assert.Equal(t, int64(4), apply(t, uc, componentID, entity.MovementKindCompra, 4).Quantity)
	assert.Equal(t, int64(-1), apply(t, uc, componentID, entity.MovementKindConsumo, 1).Quantity)
	assert.Equal(t, int64(1), apply(t, uc, componentID, entity.MovementKindDevolucion, 1).Quantity)

	balance, err := uc.Balance(context.Background(), componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance)
}

func TestApply_StockInsuficienteNoDejaRastro(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Bujía", 0, nil)
	apply(t, uc, componentID, entity.MovementKindEntrada, 5)

	_, err := uc.Apply(context.Background(), ledger.ApplyInput{
		ComponentID: componentID,
		Kind:        entity.MovementKindSalida,
		Magnitude:   10,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, int64(5), insufficientErr.Current)
	assert.Equal(t, int64(-10), insufficientErr.Requested)

	// El rechazo no debe registrar movimiento ni alterar el saldo.
	movs, repoErr := store.Movements().RangeByComponent(context.Background(), componentID, nil, nil, 100, 0)
	require.NoError(t, repoErr)
	assert.Len(t, movs, 1)
	balance, err := uc.Balance(context.Background(), componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
}

func TestApply_AjusteSinEfectoRechazado(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Retén", 0, nil)
	apply(t, uc, componentID, entity.MovementKindEntrada, 7)

	_, err := uc.Apply(context.Background(), ledger.ApplyInput{
		ComponentID: componentID,
		Kind:        entity.MovementKindAjuste,
		Magnitude:   7,
	})
	assert.ErrorIs(t, err, domain.ErrNoOpMovement)
}

func TestApply_AjusteACeroDesdeCero(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Manguera", 0, nil)

	// Sin movimientos el saldo es 0; fijarlo en 0 no tiene efecto.
	_, err := uc.Apply(context.Background(), ledger.ApplyInput{
		ComponentID: componentID,
		Kind:        entity.MovementKindAjuste,
		Magnitude:   0,
	})
	assert.ErrorIs(t, err, domain.ErrNoOpMovement)

	// Pero ajustar a 0 desde un saldo positivo sí genera movimiento.
	apply(t, uc, componentID, entity.MovementKindEntrada, 3)
	mov := apply(t, uc, componentID, entity.MovementKindAjuste, 0)
	assert.Equal(t, int64(-3), mov.Quantity)
	assert.Equal(t, int64(0), mov.BalanceAfter)
}

func TestApply_Validaciones(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Rodamiento", 0, nil)

	tests := []struct {
		name    string
		in      ledger.ApplyInput
		wantErr error
	}{
		{
			name:    "tipo desconocido",
			in:      ledger.ApplyInput{ComponentID: componentID, Kind: "prestamo", Magnitude: 1},
			wantErr: domain.ErrInvalidKind,
		},
		{
			name:    "cantidad cero",
			in:      ledger.ApplyInput{ComponentID: componentID, Kind: entity.MovementKindEntrada, Magnitude: 0},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "cantidad negativa",
			in:      ledger.ApplyInput{ComponentID: componentID, Kind: entity.MovementKindSalida, Magnitude: -4},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "ajuste negativo",
			in:      ledger.ApplyInput{ComponentID: componentID, Kind: entity.MovementKindAjuste, Magnitude: -1},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name: "precio negativo",
			in: ledger.ApplyInput{
				ComponentID: componentID,
				Kind:        entity.MovementKindEntrada,
				Magnitude:   1,
				UnitPrice:   decimalPtr("-10"),
			},
			wantErr: domain.ErrInvalidInput,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Apply(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestApply_ComponenteInexistenteOInactivo(t *testing.T) {
	uc, store := newEngine(t)

	_, err := uc.Apply(context.Background(), ledger.ApplyInput{
		ComponentID: uuid.New().String(),
		Kind:        entity.MovementKindEntrada,
		Magnitude:   1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	componentID := seedComponent(t, store, "Eje", 0, nil)
	require.NoError(t, store.Components().Deactivate(context.Background(), componentID))
	_, err = uc.Apply(context.Background(), ledger.ApplyInput{
		ComponentID: componentID,
		Kind:        entity.MovementKindEntrada,
		Magnitude:   1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Balance e History
// ──────────────────────────────────────────────────────────────────────────────

func TestBalance_SinMovimientosEsCero(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Junta", 0, nil)

	balance, err := uc.Balance(context.Background(), componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestBalance_ComponenteInactivo(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Piñón", 0, nil)
	apply(t, uc, componentID, entity.MovementKindEntrada, 2)
	require.NoError(t, store.Components().Deactivate(context.Background(), componentID))

	_, err := uc.Balance(context.Background(), componentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory_OrdenYPaginacion(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Disco", 0, nil)

	apply(t, uc, componentID, entity.MovementKindEntrada, 10)
	apply(t, uc, componentID, entity.MovementKindSalida, 2)
	apply(t, uc, componentID, entity.MovementKindSalida, 3)

	movs, err := uc.History(context.Background(), componentID, nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	// Orden cronológico; la cadena de saldos debe ser contigua.
	for i := 1; i < len(movs); i++ {
		assert.Less(t, movs[i-1].ID, movs[i].ID)
		assert.Equal(t, movs[i-1].BalanceAfter, movs[i].BalanceBefore)
	}

	page, err := uc.History(context.Background(), componentID, nil, nil, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, movs[1].ID, page[0].ID)
}

func TestHistory_ComponenteInexistente(t *testing.T) {
	uc, _ := newEngine(t)
	_, err := uc.History(context.Background(), uuid.New().String(), nil, nil, 0, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades del ledger
// ──────────────────────────────────────────────────────────────────────────────

// El saldo siempre es la suma de los deltas aplicados, y la cadena
// balance_after = balance_before + quantity nunca se rompe, sea cual sea la
// secuencia de operaciones.
func TestLedger_PropiedadSumaYCadena(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Cadena", 0, nil)
	rng := rand.New(rand.NewSource(42))

	kinds := []string{
		entity.MovementKindEntrada,
		entity.MovementKindSalida,
		entity.MovementKindCompra,
		entity.MovementKindConsumo,
		entity.MovementKindDevolucion,
		entity.MovementKindAjuste,
	}

	var expected int64
	for i := 0; i < 300; i++ {
		kind := kinds[rng.Intn(len(kinds))]
		magnitude := int64(rng.Intn(20))
		if kind != entity.MovementKindAjuste {
			magnitude++
		}
		mov, err := uc.Apply(context.Background(), ledger.ApplyInput{
			ComponentID: componentID,
			Kind:        kind,
			Magnitude:   magnitude,
		})
		if err != nil {
			// Solo rechazos de negocio; nunca errores de infraestructura.
			require.True(t, domain.IsClientError(err), "error inesperado: %v", err)
			continue
		}
		expected = mov.BalanceAfter
	}

	balance, err := uc.Balance(context.Background(), componentID)
	require.NoError(t, err)
	assert.Equal(t, expected, balance)

	movs, err := store.Movements().RangeByComponent(context.Background(), componentID, nil, nil, 1000, 0)
	require.NoError(t, err)
	var sum int64
	for i, m := range movs {
		require.NotZero(t, m.Quantity)
		require.Equal(t, m.BalanceBefore+m.Quantity, m.BalanceAfter)
		require.GreaterOrEqual(t, m.BalanceAfter, int64(0))
		if i > 0 {
			require.Equal(t, movs[i-1].BalanceAfter, m.BalanceBefore)
		}
		sum += m.Quantity
	}
	assert.Equal(t, balance, sum)
}

// N goroutines concurrentes de entrada 1 deben terminar con saldo exactamente N
// y una cadena contigua: el check-then-act se serializa por componente.
func TestLedger_ConcurrenciaPorComponente(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Tornillo", 0, nil)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := uc.Apply(context.Background(), ledger.ApplyInput{
				ComponentID: componentID,
				Kind:        entity.MovementKindEntrada,
				Magnitude:   1,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := uc.Balance(context.Background(), componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), balance)

	movs, err := store.Movements().RangeByComponent(context.Background(), componentID, nil, nil, n+1, 0)
	require.NoError(t, err)
	require.Len(t, movs, n)
	seen := make(map[int64]bool, n)
	for i, m := range movs {
		assert.False(t, seen[m.ID], "ID duplicado: %d", m.ID)
		seen[m.ID] = true
		assert.Equal(t, int64(i), m.BalanceBefore)
		assert.Equal(t, int64(i+1), m.BalanceAfter)
	}
}

// Salidas concurrentes contra stock limitado: nunca saldo negativo, y el número
// de éxitos es exactamente el stock disponible.
func TestLedger_ConcurrenciaStockLimitado(t *testing.T) {
	uc, store := newEngine(t)
	componentID := seedComponent(t, store, "Fusible", 0, nil)
	apply(t, uc, componentID, entity.MovementKindEntrada, 10)

	const n = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := uc.Apply(context.Background(), ledger.ApplyInput{
				ComponentID: componentID,
				Kind:        entity.MovementKindSalida,
				Magnitude:   1,
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, successes)
	balance, err := uc.Balance(context.Background(), componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

// La serialización es por componente: con la sección crítica de un componente
// ocupada, un movimiento sobre otro componente avanza sin esperar, mientras que
// un movimiento sobre el mismo componente sí queda detenido hasta liberarla.
func TestLedger_ComponentesIndependientesEnParalelo(t *testing.T) {
	uc, store := newEngine(t)
	blockedID := seedComponent(t, store, "Filtro", 0, nil)
	freeID := seedComponent(t, store, "Correa", 0, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	lockDone := make(chan error, 1)
	go func() {
		lockDone <- store.TxRunner().Run(context.Background(), blockedID, func(
			repository.MovementRepository, repository.ComponentRepository,
		) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	otherDone := make(chan error, 1)
	go func() {
		_, err := uc.Apply(context.Background(), ledger.ApplyInput{
			ComponentID: freeID,
			Kind:        entity.MovementKindEntrada,
			Magnitude:   3,
		})
		otherDone <- err
	}()
	select {
	case err := <-otherDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("un movimiento sobre otro componente quedó serializado detrás del bloqueo")
	}

	sameDone := make(chan error, 1)
	go func() {
		_, err := uc.Apply(context.Background(), ledger.ApplyInput{
			ComponentID: blockedID,
			Kind:        entity.MovementKindEntrada,
			Magnitude:   1,
		})
		sameDone <- err
	}()
	select {
	case <-sameDone:
		t.Fatal("un movimiento sobre el componente bloqueado no esperó la sección crítica")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-lockDone)
	require.NoError(t, <-sameDone)

	balance, err := uc.Balance(context.Background(), blockedID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), balance)
	balance, err = uc.Balance(context.Background(), freeID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), balance)
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
