package storage

import (
	"context"
	"sync"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]*entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]*entity.User),
	}
}

// Get возвращает пользователя по ID, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.RLock()
	user, exists := r.users[userID]
	r.mu.RUnlock()

	if exists {
		return user.Clone(), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lockedGet(userID, chatID).Clone(), nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = user.Clone()
	r.mu.Unlock()

	return nil
}

// Update применяет fn под блокировкой. При ошибке fn изменения отбрасываются.
func (r *MemoryUserRepository) Update(ctx context.Context, userID, chatID int64, fn func(u *entity.User) error) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	working := r.lockedGet(userID, chatID).Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.users[userID] = working

	return working.Clone(), nil
}

// lockedGet вызывается под r.mu
func (r *MemoryUserRepository) lockedGet(userID, chatID int64) *entity.User {
	if user, ok := r.users[userID]; ok {
		return user
	}
	user := entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
