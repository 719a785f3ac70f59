package services

import (
	"context"
	"fmt"

	"parley/internal/domain/user"
	"parley/internal/repository"
	"parley/internal/validate"
	parley_errors "parley/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{users: users, bcryptCost: bcryptCost}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateUsername(ctx context.Context, actor uuid.UUID, username string) (user.User, error) {
	validated, err := validate.Name(username)
	if err != nil {
		return user.User{}, err
	}
	u, err := s.users.GetByID(ctx, actor)
	if err != nil {
		return user.User{}, err
	}
	u.Username = validated
	if err := s.users.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *UserService) UpdateEmail(ctx context.Context, actor uuid.UUID, email string) (user.User, error) {
	if err := validate.Email(email); err != nil {
		return user.User{}, err
	}
	if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return user.User{}, err
	} else if exists {
		return user.User{}, fmt.Errorf("%w: email already registered", parley_errors.ErrConflict)
	}
	u, err := s.users.GetByID(ctx, actor)
	if err != nil {
		return user.User{}, err
	}
	u.Email = email
	if err := s.users.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *UserService) UpdatePhone(ctx context.Context, actor uuid.UUID, phone string) (user.User, error) {
	if err := validate.Phone(phone); err != nil {
		return user.User{}, err
	}
	if exists, err := s.users.ExistsByPhone(ctx, phone); err != nil {
		return user.User{}, err
	} else if exists {
		return user.User{}, fmt.Errorf("%w: phone already registered", parley_errors.ErrConflict)
	}
	u, err := s.users.GetByID(ctx, actor)
	if err != nil {
		return user.User{}, err
	}
	u.Phone = phone
	if err := s.users.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, actor uuid.UUID, password string) error {
	if err := validate.Password(password); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, actor)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.users.Update(ctx, u)
}

// Delete removes the actor's own account. The repository cascades to
// sessions, memberships and authored messages.
func (s *UserService) Delete(ctx context.Context, actor, target uuid.UUID) error {
	if actor != target {
		return parley_errors.ErrForbidden
	}
	return s.users.Delete(ctx, target)
}
