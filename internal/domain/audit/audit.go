package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record writes an audit event asynchronously. Audit failure never fails
// the operation being audited; it is logged and dropped. The actor is the
// sender's identity digest, never a raw phone number.
func (s *Service) Record(tenantID, actorID, action, outcome, requestID string, details any) {
	var detailsJSON []byte
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			slog.Error("audit details encoding failed", "action", action, "error", err)
			return
		}
		detailsJSON = payload
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := s.DB.Exec(ctx, `
      INSERT INTO audit_events (tenant_id, actor_id, action, outcome, request_id, details)
      VALUES ($1, $2, $3, $4, $5, $6)
    `, tenantID, actorID, action, outcome, requestID, detailsJSON)
		if err != nil {
			slog.Error("audit record failed", "action", action, "error", err)
		}
	}()
}
