package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Credential is the stored PIN record for one identity. Role lives here, not
// in any caller-supplied input, so a caller cannot self-escalate by claiming
// a role at verification time.
type Credential struct {
	Identity string
	TenantID string
	Role     string
	PINHash  string
}

// CredentialStore is the credential collaborator. Lockout policy after
// repeated failures belongs to it, not to the gate.
type CredentialStore interface {
	CredentialByIdentity(ctx context.Context, identity string) (Credential, error)
	RecordFailure(ctx context.Context, identity string) error
}

type Claims struct {
	Identity string `json:"idn"`
	TenantID string `json:"tid"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Gate issues and verifies short-lived PIN tokens. A token is valid for
// exactly one TTL window from issuance and is reusable within it; use never
// extends it.
type Gate struct {
	secret []byte
	ttl    time.Duration
	creds  CredentialStore
	now    func() time.Time
}

func NewGate(secret string, ttl time.Duration, creds CredentialStore) *Gate {
	return &Gate{secret: []byte(secret), ttl: ttl, creds: creds, now: time.Now}
}

// IssueToken verifies pin against the stored credential and, on match,
// returns a signed token carrying the credential's identity, tenant and role.
func (g *Gate) IssueToken(ctx context.Context, identity, pin string) (string, error) {
	cred, err := g.creds.CredentialByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrNoCredential) {
			return "", ErrPINMismatch
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PINHash), []byte(pin)) != nil {
		_ = g.creds.RecordFailure(ctx, identity)
		return "", ErrPINMismatch
	}

	issued := g.now()
	claims := Claims{
		Identity: cred.Identity,
		TenantID: cred.TenantID,
		Role:     cred.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(g.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Verify reports the claims of a currently valid token, or an error if the
// token is absent, malformed, forged or past its TTL.
func (g *Gate) Verify(tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, ErrNoToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil {
		return Claims{}, ErrBadToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrBadToken
	}
	return *claims, nil
}

// HashPIN hashes a PIN for storage; the cleartext is never persisted.
func HashPIN(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
