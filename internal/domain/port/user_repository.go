package port

import (
	"context"

	"rice-bot/internal/domain/entity"
)

// UserRepository интерфейс хранилища пользователей
type UserRepository interface {
	// Get возвращает копию пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя
	Save(ctx context.Context, user *entity.User) error

	// Update атомарно применяет fn к пользователю и возвращает копию результата
	Update(ctx context.Context, userID, chatID int64, fn func(u *entity.User) error) (*entity.User, error)
}
