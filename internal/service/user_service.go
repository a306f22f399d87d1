package service

import (
	"errors"
	"strings"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// UserService handles user registration and lookup
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateNewUser registers a user unless one with the same name and email exists
func (s *UserService) CreateNewUser(candidate *domain.User) (*domain.User, error) {
	name := strings.TrimSpace(candidate.Name)
	email := strings.TrimSpace(candidate.Email)
	if err := domain.ValidateUser(name, email); err != nil {
		return nil, err
	}

	_, found, err := s.FindUserByNameAndEmail(name, email)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, domain.ErrDuplicateUser
	}

	created, err := s.userRepo.Create(&domain.User{Name: name, Email: email})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", created.ID).Str("email", created.Email).Msg("User created")
	return created, nil
}

// FindUserByNameAndEmail looks a user up by identity. A missing user is not an
// error: found is false and callers are expected to create one.
func (s *UserService) FindUserByNameAndEmail(name, email string) (*domain.User, bool, error) {
	user, err := s.userRepo.GetByNameAndEmail(strings.TrimSpace(name), strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return user, true, nil
}

// UserExists reports whether a user with the ID is registered
func (s *UserService) UserExists(id int64) (bool, error) {
	return s.userRepo.ExistsByID(id)
}
