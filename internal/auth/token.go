package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quizarena-service/internal/domain"
)

// Claims is the token payload identifying a caller.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for user. A zero ttl issues tokens without expiry.
func (t *TokenIssuer) Issue(user domain.User) (string, error) {
	now := t.now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify returns the caller id carried by a valid token.
func (t *TokenIssuer) Verify(raw string) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", &domain.Error{Kind: domain.KindUnauthenticated, Message: "token expired", Err: err}
		}
		return "", &domain.Error{Kind: domain.KindUnauthenticated, Message: "token invalid", Err: err}
	}
	if !token.Valid || claims.Subject == "" {
		return "", &domain.Error{Kind: domain.KindUnauthenticated, Message: "token invalid"}
	}
	return claims.Subject, nil
}
