package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Me returns the stored profile of the caller. API key and development callers
// have no row and get a profile built from the request identity.
func (s *UserService) Me(ctx context.Context) (*domain.UserDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if err = notFound(err, ErrUserNotFound, "get user"); err != ErrUserNotFound {
			return nil, err
		}
		user = &domain.User{
			ID:          userCtx.UserID,
			Email:       userCtx.Email,
			DisplayName: userCtx.DisplayName,
			Role:        userCtx.Role,
		}
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}
