package memory

import (
	"context"
	"strings"
	"sync"

	"quizarena-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserRepository.
// Usernames are unique case-insensitively.
type UserStore struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	byUsername map[string]string
}

func NewUserStore(seed ...domain.User) *UserStore {
	s := &UserStore{
		users:      make(map[string]domain.User, len(seed)),
		byUsername: make(map[string]string, len(seed)),
	}
	for _, user := range seed {
		s.users[user.ID] = user
		s.byUsername[strings.ToLower(user.Username)] = user.ID
	}
	return s
}

func (s *UserStore) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Username)
	if _, taken := s.byUsername[key]; taken {
		return domain.ErrUsernameTaken
	}
	s.users[user.ID] = user
	s.byUsername[key] = user.ID
	return nil
}

func (s *UserStore) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *UserStore) GetUsers(_ context.Context, userIDs []string) (map[string]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]domain.User, len(userIDs))
	for _, id := range userIDs {
		if user, ok := s.users[id]; ok {
			found[id] = user
		}
	}
	return found, nil
}
