package usecase

import (
	"context"

	"chatwire/internal/entity"
	"chatwire/internal/repository"
	"chatwire/pkg/apperr"
)

type UserUsecase interface {
	Get(ctx context.Context, userId string) (entity.User, error)
	Index(ctx context.Context, excludeUserId string) ([]entity.User, error)
}

type userUsecase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) UserUsecase {
	return &userUsecase{
		userRepo: userRepo,
	}
}

func (u *userUsecase) Get(ctx context.Context, userId string) (entity.User, error) {
	user, err := u.userRepo.Get(ctx, userId)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return entity.User{}, apperr.NotFound("user not found")
		}
		return entity.User{}, apperr.Internal("failed to load user", err)
	}

	user.Password = ""
	return user, nil
}

// Index lists every user except the caller, for contact discovery.
func (u *userUsecase) Index(ctx context.Context, excludeUserId string) ([]entity.User, error) {
	users, err := u.userRepo.Index(ctx, entity.UserIndexFilter{ExcludeId: excludeUserId})
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}
