package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Account types carried in token claims. Players and admins are separate
// identity tables, so the type is part of the credential.
const (
	AccountTypePlayer = "player"
	AccountTypeAdmin  = "admin"
)

// Claims are the JWT claims issued by this server.
type Claims struct {
	AccountID   uint   `json:"account_id"`
	UserName    string `json:"user_name"`
	AccountType string `json:"account_type"`
	Role        string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IsPlayer reports whether the claims belong to a player account.
func (c *Claims) IsPlayer() bool {
	return c.AccountType == AccountTypePlayer
}

// IsAdmin reports whether the claims belong to an admin account.
func (c *Claims) IsAdmin() bool {
	return c.AccountType == AccountTypeAdmin
}

// Service signs and validates access tokens.
type Service struct {
	secretKey []byte
	expiry    time.Duration
}

// NewService creates a JWT service. A zero expiry defaults to 7 days, the
// token lifetime players expect between offline sessions.
func NewService(secretKey string, expiry time.Duration) *Service {
	if secretKey == "" {
		secretKey = "dev-jwt-secret-do-not-use-in-production"
	}
	if expiry == 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &Service{secretKey: []byte(secretKey), expiry: expiry}
}

// GenerateToken issues a signed HS256 token for an account.
func (s *Service) GenerateToken(accountID uint, userName, accountType, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID:   accountID,
		UserName:    userName,
		AccountType: accountType,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken parses and validates a token, returning its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return s.secretKey, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
