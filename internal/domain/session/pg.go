package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists sessions so conversation state survives restarts.
type PGStore struct {
	DB  *pgxpool.Pool
	TTL time.Duration
}

func NewPGStore(db *pgxpool.Pool, ttl time.Duration) *PGStore {
	return &PGStore{DB: db, TTL: ttl}
}

func (s *PGStore) Get(ctx context.Context, identity string) (*Session, error) {
	const q = `
		SELECT identity, tenant_id, state, data, selection, pin_token,
		       last_state, last_input, last_reply, updated_at
		FROM sessions
		WHERE identity = $1 AND updated_at > now() - make_interval(secs => $2)`

	var (
		sess    Session
		rawData []byte
	)
	err := s.DB.QueryRow(ctx, q, identity, s.TTL.Seconds()).Scan(
		&sess.Identity,
		&sess.TenantID,
		&sess.State,
		&rawData,
		&sess.Selection,
		&sess.PinToken,
		&sess.LastState,
		&sess.LastInput,
		&sess.LastReply,
		&sess.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(rawData) > 0 {
		if err := json.Unmarshal(rawData, &sess.Data); err != nil {
			return nil, fmt.Errorf("failed to decode session data: %w", err)
		}
	}
	if sess.Data == nil {
		sess.Data = map[string]string{}
	}
	return &sess, nil
}

func (s *PGStore) Put(ctx context.Context, sess *Session) error {
	rawData, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("failed to encode session data: %w", err)
	}

	const q = `
		INSERT INTO sessions (identity, tenant_id, state, data, selection, pin_token,
		                      last_state, last_input, last_reply, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (identity) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id,
			state = EXCLUDED.state,
			data = EXCLUDED.data,
			selection = EXCLUDED.selection,
			pin_token = EXCLUDED.pin_token,
			last_state = EXCLUDED.last_state,
			last_input = EXCLUDED.last_input,
			last_reply = EXCLUDED.last_reply,
			updated_at = now()`

	_, err = s.DB.Exec(ctx, q,
		sess.Identity,
		sess.TenantID,
		sess.State,
		rawData,
		sess.Selection,
		sess.PinToken,
		sess.LastState,
		sess.LastInput,
		sess.LastReply,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, identity string) error {
	if _, err := s.DB.Exec(ctx, `DELETE FROM sessions WHERE identity = $1`, identity); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SweepExpired drops rows past the TTL so the table does not grow unbounded.
func (s *PGStore) SweepExpired(ctx context.Context) error {
	_, err := s.DB.Exec(ctx,
		`DELETE FROM sessions WHERE updated_at <= now() - make_interval(secs => $1)`,
		s.TTL.Seconds())
	if err != nil {
		return fmt.Errorf("failed to sweep sessions: %w", err)
	}
	return nil
}
