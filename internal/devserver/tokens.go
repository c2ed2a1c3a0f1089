package devserver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gundaabinav333/authshell/internal/core/domain"
)

// Token errors.
var (
	ErrTokenInvalid = errors.New("devserver: invalid token")
	ErrTokenRevoked = errors.New("devserver: token revoked")
)

// Claims are the JWT claims issued by the devserver.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Issuer signs and checks HS256 session tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

// NewIssuer returns an issuer. secret must be at least 32 bytes.
func NewIssuer(secret []byte, issuer string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("devserver: signing secret must be at least 32 bytes, got %d", len(secret))
	}
	return &Issuer{
		secret:  secret,
		issuer:  issuer,
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}, nil
}

// Issue returns a signed token for cred.
func (i *Issuer) Issue(cred *domain.Credential) (string, error) {
	now := i.now()
	claims := Claims{
		Email: cred.Email,
		Roles: cred.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   cred.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates signature, issuer, expiry and revocation.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing jti or sub", ErrTokenInvalid)
	}

	i.mu.Lock()
	_, revoked := i.revoked[claims.ID]
	i.mu.Unlock()
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke invalidates the token with claims until it expires.
func (i *Issuer) Revoke(claims *Claims) {
	exp := i.now().Add(i.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.revoked[claims.ID] = exp
	i.pruneLocked()
}

// Revoked returns the number of tracked revocations.
func (i *Issuer) Revoked() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.revoked)
}

// pruneLocked drops revocations of tokens that have expired anyway.
func (i *Issuer) pruneLocked() {
	now := i.now()
	for jti, exp := range i.revoked {
		if now.After(exp) {
			delete(i.revoked, jti)
		}
	}
}
