package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

// PurchasingStore repos en memoria para proveedores y compras (tests).
type PurchasingStore struct {
	mu        sync.RWMutex
	suppliers map[string]*entity.Supplier
	purchases map[string]*entity.Purchase
}

// NewPurchasingStore construye el store vacío.
func NewPurchasingStore() *PurchasingStore {
	return &PurchasingStore{
		suppliers: make(map[string]*entity.Supplier),
		purchases: make(map[string]*entity.Purchase),
	}
}

// Suppliers devuelve el repositorio de proveedores.
func (s *PurchasingStore) Suppliers() repository.SupplierRepository { return &supplierRepo{s: s} }

// Purchases devuelve el repositorio de compras.
func (s *PurchasingStore) Purchases() repository.PurchaseRepository { return &purchaseRepo{s: s} }

type supplierRepo struct {
	s *PurchasingStore
}

func (r *supplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *sup
	r.s.suppliers[sup.ID] = &clone
	return nil
}

func (r *supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	clone := *sup
	return &clone, nil
}

func (r *supplierRepo) Update(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *sup
	r.s.suppliers[sup.ID] = &clone
	return nil
}

func (r *supplierRepo) List(_ context.Context, limit, offset int) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Supplier
	for _, sup := range r.s.suppliers {
		if sup.Active {
			clone := *sup
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

func (r *supplierRepo) Deactivate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sup, ok := r.s.suppliers[id]; ok {
		sup.Active = false
	}
	return nil
}

type purchaseRepo struct {
	s *PurchasingStore
}

func (r *purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *p
	r.s.purchases[p.ID] = &clone
	return nil
}

func (r *purchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.purchases[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *purchaseRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Purchase
	for _, p := range r.s.purchases {
		if status != "" && p.Status != status {
			continue
		}
		clone := *p
		list = append(list, &clone)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *purchaseRepo) MarkReceived(_ context.Context, id string, receivedAt time.Time) (bool, error) {
	return r.transition(id, entity.PurchaseStatusPendiente, entity.PurchaseStatusRecibida, &receivedAt)
}

func (r *purchaseRepo) Revert(_ context.Context, id string) (bool, error) {
	return r.transition(id, entity.PurchaseStatusRecibida, entity.PurchaseStatusPendiente, nil)
}

func (r *purchaseRepo) Cancel(_ context.Context, id string) (bool, error) {
	return r.transition(id, entity.PurchaseStatusPendiente, entity.PurchaseStatusCancelada, nil)
}

func (r *purchaseRepo) transition(id, fromStatus, toStatus string, receivedAt *time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.purchases[id]
	if !ok || p.Status != fromStatus {
		return false, nil
	}
	p.Status = toStatus
	p.ReceivedAt = receivedAt
	return true, nil
}
