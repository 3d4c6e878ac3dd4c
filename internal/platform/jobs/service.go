package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sawa/internal/platform/config"
)

const (
	JobSessionSweep = "session_sweep"
	JobAuditPrune   = "audit_prune"
)

// Service runs background maintenance on a single worker goroutine. Each
// execution is recorded in job_runs so operators can see when sweeps last
// ran and whether they failed.
type Service struct {
	DB    *pgxpool.Pool
	Cfg   config.Config
	queue chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config) *Service {
	return &Service{
		DB:    db,
		Cfg:   cfg,
		queue: make(chan job, 16),
	}
}

// Sweeper removes expired conversation sessions.
type Sweeper interface {
	SweepExpired(ctx context.Context) error
}

func (s *Service) Start(ctx context.Context, sweeper Sweeper) {
	go s.worker(ctx)
	if s.Cfg.SessionSweepInterval > 0 && sweeper != nil {
		go s.scheduleSessionSweep(ctx, sweeper)
	}
	if s.Cfg.AuditRetention > 0 {
		go s.scheduleAuditPrune(ctx)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1, $2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleSessionSweep(ctx context.Context, sweeper Sweeper) {
	ticker := time.NewTicker(s.Cfg.SessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobSessionSweep, func(ctx context.Context) (any, error) {
				return nil, sweeper.SweepExpired(ctx)
			})
		}
	}
}

func (s *Service) scheduleAuditPrune(ctx context.Context) {
	// Daily is frequent enough for retention measured in months.
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.Cfg.AuditRetention)
			s.Enqueue(JobAuditPrune, func(ctx context.Context) (any, error) {
				tag, err := s.DB.Exec(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
				if err != nil {
					return nil, err
				}
				return map[string]any{"deleted": tag.RowsAffected(), "cutoff": cutoff}, nil
			})
		}
	}
}
