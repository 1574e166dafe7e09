package service

import (
	"errors"

	"github.com/fujioka8700/Eitan/internal/repository"
)

// ErrUnauthorized signals a missing or invalid bearer credential.
// Never fatal to a study session: the caller continues in guest mode.
var ErrUnauthorized = errors.New("missing or invalid credential")

// AuthService resolves bearer credentials to users
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// ResolveToken returns the user ID for a bearer token
func (s *AuthService) ResolveToken(token string) (int64, error) {
	if token == "" {
		return 0, ErrUnauthorized
	}

	userID, err := s.userRepo.UserIDByToken(token)
	if err != nil {
		return 0, err
	}
	if userID == 0 {
		return 0, ErrUnauthorized
	}

	return userID, nil
}

// EnsureUserExists creates user record if doesn't exist
func (s *AuthService) EnsureUserExists(userID int64) error {
	return s.userRepo.EnsureUserExists(userID)
}
