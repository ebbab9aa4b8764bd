package app

import (
	"context"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) Update(ctx context.Context, userID, chatID int64, fn func(u *entity.User) error) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, fn)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		u.SetState(state)
		return nil
	})
}

// BeginCheck очищает прежний результат и ждёт новое фото.
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		u.Reset()
		u.Generation = 0
		u.SetState(entity.StateAwaitingPhoto)
		return nil
	})
}

// Cancel возвращает пользователя в меню. Результат идущей классификации
// после этого будет проигнорирован.
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		u.Reset()
		u.Generation = 0
		return nil
	})
}
