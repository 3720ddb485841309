package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const accessTokenType = "access"

type Claims struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"perms"`
	Protected   bool     `json:"protected,omitempty"`
	TokenType   string   `json:"typ"`
	jwt.RegisteredClaims
}

// StaffID parses the subject back into the staff primary key.
func (c *Claims) StaffID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

type JWTManager struct {
	issuer   string
	audience string
	secret   []byte
	now      func() time.Time
}

func NewJWTManager(issuer, audience, accessSecret string) *JWTManager {
	return &JWTManager{issuer: issuer, audience: audience, secret: []byte(accessSecret), now: time.Now}
}

func (m *JWTManager) SignAccessToken(staffID uint, roles, permissions []string, protected bool, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Roles:       roles,
		Permissions: permissions,
		Protected:   protected,
		TokenType:   accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(uint64(staffID), 10),
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *JWTManager) ParseAccessToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != accessTokenType {
		return nil, fmt.Errorf("%w: unexpected token type", ErrInvalidToken)
	}
	return claims, nil
}
