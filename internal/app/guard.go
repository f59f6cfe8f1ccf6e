package app

import "quizarena-service/internal/domain"

// authorizeAttempt allows only the attempt's taker. Callers must have
// confirmed the attempt exists first so "missing" is reported as NotFound.
func authorizeAttempt(attempt domain.Attempt, callerID string) error {
	if callerID == "" {
		return domain.ErrUnauthenticated
	}
	if attempt.UserID != callerID {
		return domain.ErrNotAttemptOwner
	}
	return nil
}
