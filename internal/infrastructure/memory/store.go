// Package memory implementa los puertos de persistencia en memoria, para
// tests y desarrollo. La semántica replica la de PostgreSQL: movimientos
// append-only con ID monótono y serialización por componente en el TxRunner.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agropartes/agropartes-api/internal/application/ledger"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

// Store agrupa el estado compartido de los repositorios en memoria.
type Store struct {
	mu         sync.RWMutex
	nextMovID  int64
	movements  map[string][]*entity.Movement // por componente, en orden de append
	components map[string]*entity.Component

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex // un mutex por componente
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		nextMovID:  1,
		movements:  make(map[string][]*entity.Movement),
		components: make(map[string]*entity.Component),
		locks:      make(map[string]*sync.Mutex),
	}
}

// Movements devuelve el repositorio de movimientos.
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{s: s} }

// Components devuelve el repositorio del catálogo.
func (s *Store) Components() repository.ComponentRepository { return &componentRepo{s: s} }

// TxRunner devuelve un runner que serializa por componente con un mutex.
func (s *Store) TxRunner() ledger.TxRunner { return &txRunner{s: s} }

func (s *Store) componentLock(componentID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[componentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[componentID] = l
	}
	return l
}

// ─── txRunner ────────────────────────────────────────────────────────────────

type txRunner struct {
	s *Store
}

// Run serializa fn por componente. No hay rollback: fn solo debe escribir como
// último paso (el motor del ledger valida antes de Append).
func (r *txRunner) Run(ctx context.Context, componentID string, fn func(
	movRepo repository.MovementRepository,
	componentRepo repository.ComponentRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := r.s.componentLock(componentID)
	l.Lock()
	defer l.Unlock()
	return fn(r.s.Movements(), r.s.Components())
}

// ─── movimientos ─────────────────────────────────────────────────────────────

type movementRepo struct {
	s *Store
}

func (r *movementRepo) Append(_ context.Context, m *entity.Movement) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *m
	clone.ID = r.s.nextMovID
	r.s.nextMovID++
	r.s.movements[m.ComponentID] = append(r.s.movements[m.ComponentID], &clone)
	return clone.ID, nil
}

func (r *movementRepo) LatestBalance(_ context.Context, componentID string) (int64, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	movs := r.s.movements[componentID]
	if len(movs) == 0 {
		return 0, false, nil
	}
	return movs[len(movs)-1].BalanceAfter, true, nil
}

func (r *movementRepo) RangeByComponent(_ context.Context, componentID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []*entity.Movement
	for _, m := range r.s.movements[componentID] {
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		clone := *m
		list = append(list, &clone)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *movementRepo) AllActiveComponentsWithBalance(_ context.Context) ([]repository.ComponentBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []repository.ComponentBalance
	for _, c := range r.s.components {
		if !c.Active {
			continue
		}
		var balance int64
		if movs := r.s.movements[c.ID]; len(movs) > 0 {
			balance = movs[len(movs)-1].BalanceAfter
		}
		list = append(list, repository.ComponentBalance{
			ComponentID:  c.ID,
			Name:         c.Name,
			MinimumStock: c.MinimumStock,
			UnitPrice:    c.UnitPrice,
			Balance:      balance,
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// ─── catálogo ────────────────────────────────────────────────────────────────

type componentRepo struct {
	s *Store
}

func (r *componentRepo) Create(_ context.Context, c *entity.Component) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *c
	r.s.components[c.ID] = &clone
	return nil
}

func (r *componentRepo) GetByID(_ context.Context, id string) (*entity.Component, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.components[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *componentRepo) GetByCode(_ context.Context, code string) (*entity.Component, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.components {
		if c.Code == code {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *componentRepo) Update(_ context.Context, c *entity.Component) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *c
	r.s.components[c.ID] = &clone
	return nil
}

func (r *componentRepo) ListActive(_ context.Context, limit, offset int) ([]*entity.Component, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Component
	for _, c := range r.s.components {
		if c.Active {
			clone := *c
			list = append(list, &clone)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *componentRepo) Deactivate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.components[id]; ok {
		c.Active = false
	}
	return nil
}
