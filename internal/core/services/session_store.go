package services

import (
	"context"
	"errors"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"

	"gorm.io/gorm"
)

// SessionStore reads session records and asks the database to validate
// them. It never writes session state itself.
type SessionStore struct {
	sessionRepo repositories.SessionRepository
}

// NewSessionStore creates a new session store
func NewSessionStore(sessionRepo repositories.SessionRepository) *SessionStore {
	return &SessionStore{sessionRepo: sessionRepo}
}

// Lookup finds the session for token. An unknown token is ErrInvalidSession.
func (s *SessionStore) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	row, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Validate runs the session validation procedure. Only a flag of exactly
// 1 counts as valid.
func (s *SessionStore) Validate(ctx context.Context, token string) (*domain.SessionValidation, error) {
	out, err := s.sessionRepo.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	v := &domain.SessionValidation{
		Valid: out.IsValid != nil && *out.IsValid == 1,
	}
	if out.Message != nil {
		v.Message = *out.Message
	}
	if v.Valid {
		if out.UserID == nil {
			return nil, domain.ErrIncompleteResult
		}
		v.UserID = *out.UserID
	}
	return v, nil
}
