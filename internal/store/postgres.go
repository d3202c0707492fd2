// Package store provides database and cache access
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RRM006/NexusCRM-sub000/internal/models"
)

// PostgresStore implements the durable call record operations
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// CreateCallRecord creates a new call record
func (s *PostgresStore) CreateCallRecord(ctx context.Context, rec *models.CallRecord) (*models.CallRecord, error) {
	var r models.CallRecord
	err := s.pool.QueryRow(ctx, `
		INSERT INTO call_records (tenant_id, session_id, caller_user_id, call_type, status, start_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, tenant_id, session_id, caller_user_id, callee_user_id,
		          call_type, status, start_time, answer_time, end_time,
		          duration_seconds, created_at
	`, rec.TenantID, rec.SessionID, rec.CallerUserID, rec.CallType, rec.Status, rec.StartTime,
	).Scan(
		&r.ID, &r.TenantID, &r.SessionID, &r.CallerUserID, &r.CalleeUserID,
		&r.CallType, &r.Status, &r.StartTime, &r.AnswerTime, &r.EndTime,
		&r.DurationSeconds, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// MarkCallAnswered records the accept-race winner on the call record
func (s *PostgresStore) MarkCallAnswered(ctx context.Context, sessionID, calleeUserID string, answerTime time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE call_records
		SET status = $1, callee_user_id = $2, answer_time = $3
		WHERE session_id = $4
	`, models.CallStatusAnswered, calleeUserID, answerTime, sessionID)
	return err
}

// FinishCallRecord writes the terminal status, end time and duration
func (s *PostgresStore) FinishCallRecord(ctx context.Context, sessionID string, status models.CallStatus, endTime time.Time, durationSeconds int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE call_records
		SET status = $1, end_time = $2, duration_seconds = $3
		WHERE session_id = $4
	`, status, endTime, durationSeconds, sessionID)
	return err
}

// ListCalls returns recent call records for a tenant
func (s *PostgresStore) ListCalls(ctx context.Context, tenantID string, limit int) ([]*models.CallRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, session_id, caller_user_id, callee_user_id,
		       call_type, status, start_time, answer_time, end_time,
		       duration_seconds, created_at
		FROM call_records
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.CallRecord
	for rows.Next() {
		var r models.CallRecord
		err := rows.Scan(
			&r.ID, &r.TenantID, &r.SessionID, &r.CallerUserID, &r.CalleeUserID,
			&r.CallType, &r.Status, &r.StartTime, &r.AnswerTime, &r.EndTime,
			&r.DurationSeconds, &r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &r)
	}

	return records, rows.Err()
}

// GetCallBySession returns the call record for a session id
func (s *PostgresStore) GetCallBySession(ctx context.Context, tenantID, sessionID string) (*models.CallRecord, error) {
	var r models.CallRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, session_id, caller_user_id, callee_user_id,
		       call_type, status, start_time, answer_time, end_time,
		       duration_seconds, created_at
		FROM call_records
		WHERE session_id = $1 AND tenant_id = $2
	`, sessionID, tenantID).Scan(
		&r.ID, &r.TenantID, &r.SessionID, &r.CallerUserID, &r.CalleeUserID,
		&r.CallType, &r.Status, &r.StartTime, &r.AnswerTime, &r.EndTime,
		&r.DurationSeconds, &r.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("call record not found")
		}
		return nil, err
	}
	return &r, nil
}
