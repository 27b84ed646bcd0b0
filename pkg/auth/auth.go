package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Role is the authorisation role of a principal
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Principal is the acting identity of a request
type Principal struct {
	ID   uint
	Role Role
}

// IsAdmin reports whether the principal may use admin operations
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleSuperAdmin
}

type ctxKey struct{}

// WithPrincipal stores the principal in the context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in the context, if any
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

var (
	// ErrTokenInvalid is returned for malformed or badly signed tokens.
	ErrTokenInvalid = errors.New("auth: invalid token")
	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("auth: token expired")
)

// Claims is the JWT payload issued by the storefront identity service.
type Claims struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier verifies HS256 bearer tokens and turns them into principals.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewTokenVerifier creates a verifier for tokens signed with secret
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// Verify parses the token and returns the principal it identifies.
func (v *TokenVerifier) Verify(token string) (Principal, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return Principal{}, ErrTokenExpired
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.UserID == 0 {
		return Principal{}, fmt.Errorf("%w: missing userId", ErrTokenInvalid)
	}
	role := Role(claims.Role)
	if role == "" {
		role = RoleCustomer
	}
	if !role.Valid() {
		return Principal{}, fmt.Errorf("%w: unknown role %q", ErrTokenInvalid, claims.Role)
	}

	return Principal{ID: claims.UserID, Role: role}, nil
}

// Issue signs a token for the principal. Used by tooling and tests.
func (v *TokenVerifier) Issue(p Principal, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		UserID: p.ID,
		Role:   string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(p.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
