package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads credentials from the users table. Identities are opaque
// digests; the raw phone number never reaches this layer.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CredentialByIdentity(ctx context.Context, identity string) (Credential, error) {
	var cred Credential
	err := s.DB.QueryRow(ctx, `
    SELECT identity, tenant_id, role, COALESCE(pin_hash, '')
    FROM users
    WHERE identity = $1
  `, identity).Scan(&cred.Identity, &cred.TenantID, &cred.Role, &cred.PINHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, ErrNoCredential
	}
	if err != nil {
		return Credential{}, err
	}
	return cred, nil
}

// SetPIN stores a freshly hashed PIN and clears the failure counter.
func (s *Store) SetPIN(ctx context.Context, identity, pinHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users SET pin_hash = $2, failed_pins = 0 WHERE identity = $1
  `, identity, pinHash)
	return err
}

func (s *Store) RecordFailure(ctx context.Context, identity string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users SET failed_pins = failed_pins + 1 WHERE identity = $1
  `, identity)
	return err
}
