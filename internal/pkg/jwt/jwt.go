package jwt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

var (
	ErrMissingClaims = errors.New("missing authentication claims")
	ErrInvalidClaims = errors.New("invalid authentication claims")
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID         string
	OrganizationID string
	EmployeeID     string
	Role           user.Role
	TokenType      string
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]int64
	mu                        sync.RWMutex
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]int64),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	m := claims.toMap()
	m["type"] = tokenTypeAccess
	m["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(m)
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

func (c Claims) toMap() map[string]interface{} {
	m := map[string]interface{}{
		"user_id":         c.UserID,
		"organization_id": c.OrganizationID,
		"role":            string(c.Role),
	}
	if c.EmployeeID != "" {
		m["employee_id"] = c.EmployeeID
	}
	if c.TokenType != "" {
		m["type"] = c.TokenType
	}
	return m
}

// IsAccess reports whether the claims come from an access token.
func (c Claims) IsAccess() bool {
	return c.TokenType == tokenTypeAccess
}

// ClaimsFromContext reads the verified token placed in ctx by jwtauth.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	token, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}
	if token == nil || raw == nil {
		return Claims{}, ErrMissingClaims
	}

	userID, ok := raw["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrInvalidClaims
	}

	c := Claims{UserID: userID}
	c.OrganizationID, _ = raw["organization_id"].(string)
	c.EmployeeID, _ = raw["employee_id"].(string)
	c.TokenType, _ = raw["type"].(string)
	role, _ := raw["role"].(string)
	c.Role = user.ParseRole(role)
	return c, nil
}

// WithClaims returns a context carrying an unsigned token with claims, the
// way jwtauth.Verifier would after verification. It is meant for tests and
// for background jobs acting on behalf of a tenant.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	token := jwt.New()
	for k, v := range claims.toMap() {
		_ = token.Set(k, v)
	}
	return jwtauth.NewContext(ctx, token, nil)
}
