package memory

import (
	"context"
	"sync"

	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
)

// UserStore repositorio de usuarios en memoria (tests).
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

// NewUserStore construye el store vacío.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*entity.User)}
}

// Users devuelve el repositorio de usuarios.
func (s *UserStore) Users() repository.UserRepository { return &userRepo{s: s} }

type userRepo struct {
	s *UserStore
}

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *u
	r.s.users[u.ID] = &clone
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}
