package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/storage"
)

type sessionServiceImpl struct {
	logger   zerolog.Logger
	sessions storage.SessionStore
}

func NewSessionService(
	logger zerolog.Logger,
	sessions storage.SessionStore,
) SessionService {
	return &sessionServiceImpl{
		logger:   logger,
		sessions: sessions,
	}
}

func (s *sessionServiceImpl) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to select session by id")
		return nil, err
	}
	if session == nil {
		s.logger.Error().
			Str("session_id", sessionID).
			Msg("session not found")
		return nil, ErrSessionNotFound
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("selected session by id")
	return session, nil
}
