package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quizarena-service/internal/domain"
)

// TokenIssuer signs credentials for an authenticated user and reads them back.
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
	Verify(token string) (string, error)
}

// Session is returned on register and login.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users  UserRepository
	tokens TokenIssuer
	cost   int
}

func NewAuthService(users UserRepository, tokens TokenIssuer, cost int) *AuthService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, cost: cost}
}

// Register creates a user and signs them in.
func (s *AuthService) Register(ctx context.Context, in CredentialsInput) (Session, error) {
	if err := in.Validate(); err != nil {
		return Session{}, err
	}
	username := strings.TrimSpace(in.Username)
	if len(username) < minUsernameLength {
		return Session{}, domain.Validation("username must be at least %d characters", minUsernameLength)
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return Session{}, domain.ErrUsernameTaken
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Session{}, err
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return Session{}, err
	}
	return s.session(user)
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, in CredentialsInput) (Session, error) {
	if err := in.Validate(); err != nil {
		return Session{}, err
	}
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, domain.ErrUserNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}
	return s.session(user)
}

// Authenticate resolves a bearer token to the id of a user that still exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return "", err
	}
	return userID, nil
}

func (s *AuthService) session(user domain.User) (Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Username: user.Username}, nil
}
