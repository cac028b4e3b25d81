package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one withdrawal attempt. Detail carries the failure reason for
// rejected attempts; it must never contain key material.
type Entry struct {
	RequestID uuid.UUID
	UserID    string
	Sender    string
	Recipient string
	Asset     string
	Amount    string
	Status    string
	Detail    string
	CreatedAt time.Time
}

const (
	StatusBuilt    = "built"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// Recorder persists withdrawal attempts for audit.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

const schema = `
CREATE TABLE IF NOT EXISTS withdrawal_audit (
	request_id UUID PRIMARY KEY,
	user_id    TEXT NOT NULL,
	sender     TEXT NOT NULL,
	recipient  TEXT NOT NULL,
	asset      TEXT NOT NULL,
	amount     TEXT NOT NULL,
	status     TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Repo is the Postgres-backed Recorder.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(ctx context.Context, pool *pgxpool.Pool) (*Repo, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("audit: failed to ensure schema: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Record(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO withdrawal_audit
			(request_id, user_id, sender, recipient, asset, amount, status, detail)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.RequestID, e.UserID, e.Sender, e.Recipient, e.Asset, e.Amount, e.Status, e.Detail,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to record attempt: %w", err)
	}
	return nil
}

// Noop discards entries. Used when no audit database is configured.
type Noop struct{}

func (Noop) Record(context.Context, Entry) error {
	return nil
}
