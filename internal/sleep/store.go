package sleep

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SleepSessionSchema represents the sleep_records table schema in PostgreSQL
type SleepSessionSchema struct {
	bun.BaseModel `bun:"table:sleep_records,alias:sr"`

	UUID              uuid.UUID  `bun:"uuid,pk,type:uuid" json:"uuid"`
	UserID            uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id"`
	BedTime           time.Time  `bun:"bed_time,notnull" json:"bed_time"`
	WakeUpTime        *time.Time `bun:"wake_up_time,nullzero" json:"wake_up_time,omitempty"`
	DurationInSeconds *int64     `bun:"duration_in_seconds,nullzero" json:"duration_in_seconds,omitempty"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// SleepSessionIndexes are created by the storage migration step. The partial
// unique index is the storage-level guarantee that a user has at most one
// open session; the composite index serves the history and feed queries.
var SleepSessionIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_sleep_records_one_open_per_user ON sleep_records(user_id) WHERE wake_up_time IS NULL",
	"CREATE INDEX IF NOT EXISTS idx_sleep_records_user_created_duration ON sleep_records(user_id, created_at, duration_in_seconds)",
}

// PostgresStore implements the SessionStore interface with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB

	// readDB serves the listing queries; it may point at a read replica and
	// falls back to db when no replica is configured.
	readDB *bun.DB
}

// NewPostgresStore creates a new PostgreSQL sleep session store. readDB may
// equal db when no read replica is available.
func NewPostgresStore(db, readDB *bun.DB) *PostgresStore {
	if readDB == nil {
		readDB = db
	}
	return &PostgresStore{
		db:     db,
		readDB: readDB,
	}
}

// CreateSession creates a new sleep session
func (s *PostgresStore) CreateSession(ctx context.Context, session *SleepSession) error {
	schema, err := sessionToSchema(session)
	if err != nil {
		return err
	}

	_, err = s.db.NewInsert().
		Model(schema).
		Exec(ctx)
	if err != nil {
		// The partial unique index rejects a second open session for the same
		// user when two clock-ins race past the service-level check.
		if strings.Contains(err.Error(), "idx_sleep_records_one_open_per_user") {
			return NewAlreadyOpenSessionError(session.UserID, "", session.BedTime)
		}
		return fmt.Errorf("failed to create sleep session: %w", err)
	}

	return nil
}

// FindOpenSession returns the user's open session, or nil when there is none
func (s *PostgresStore) FindOpenSession(ctx context.Context, userID string) (*SleepSession, error) {
	var schema SleepSessionSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("user_id = ?", userID).
		Where("wake_up_time IS NULL").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open sleep session: %w", err)
	}

	return schemaToSession(schema), nil
}

// CloseSession sets the wake-up time and duration on an open session. The
// wake_up_time IS NULL guard keeps a session from being closed twice.
func (s *PostgresStore) CloseSession(ctx context.Context, sessionID uuid.UUID, wakeUpTime time.Time, durationInSeconds int64) (*SleepSession, error) {
	var schema SleepSessionSchema
	err := s.db.NewUpdate().
		Model(&schema).
		Where("uuid = ?", sessionID).
		Where("wake_up_time IS NULL").
		Set("wake_up_time = ?", wakeUpTime).
		Set("duration_in_seconds = ?", durationInSeconds).
		Set("updated_at = ?", wakeUpTime).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sleep session %s not found or already closed", sessionID)
		}
		return nil, fmt.Errorf("failed to close sleep session: %w", err)
	}

	return schemaToSession(schema), nil
}

// ListByUser returns the user's sessions ordered by creation time descending
func (s *PostgresStore) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*SleepSession, error) {
	var schemas []SleepSessionSchema
	err := s.readDB.NewSelect().
		Model(&schemas).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sleep sessions: %w", err)
	}

	return schemasToSessions(schemas), nil
}

// CountByUser returns the user's total session count
func (s *PostgresStore) CountByUser(ctx context.Context, userID string) (int, error) {
	count, err := s.readDB.NewSelect().
		Model((*SleepSessionSchema)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count sleep sessions: %w", err)
	}

	return count, nil
}

// ListCompletedInWindow returns completed sessions for the given users created
// within [start, end], ordered by duration descending with uuid ascending as
// the deterministic tie-break.
func (s *PostgresStore) ListCompletedInWindow(ctx context.Context, userIDs []string, start, end time.Time, offset, limit int) ([]*SleepSession, error) {
	var schemas []SleepSessionSchema
	err := s.readDB.NewSelect().
		Model(&schemas).
		Where("user_id IN (?)", bun.In(userIDs)).
		Where("wake_up_time IS NOT NULL").
		Where("created_at >= ?", start).
		Where("created_at <= ?", end).
		Order("duration_in_seconds DESC", "uuid ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed sleep sessions: %w", err)
	}

	return schemasToSessions(schemas), nil
}

// CountCompletedInWindow counts the completed sessions matching the window
func (s *PostgresStore) CountCompletedInWindow(ctx context.Context, userIDs []string, start, end time.Time) (int, error) {
	count, err := s.readDB.NewSelect().
		Model((*SleepSessionSchema)(nil)).
		Where("user_id IN (?)", bun.In(userIDs)).
		Where("wake_up_time IS NOT NULL").
		Where("created_at >= ?", start).
		Where("created_at <= ?", end).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed sleep sessions: %w", err)
	}

	return count, nil
}

// Helper conversion functions

func sessionToSchema(session *SleepSession) (*SleepSessionSchema, error) {
	userID, err := uuid.Parse(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", session.UserID, err)
	}

	return &SleepSessionSchema{
		UUID:              session.UUID,
		UserID:            userID,
		BedTime:           session.BedTime,
		WakeUpTime:        session.WakeUpTime,
		DurationInSeconds: session.DurationInSeconds,
		CreatedAt:         session.CreatedAt,
		UpdatedAt:         session.UpdatedAt,
	}, nil
}

func schemaToSession(schema SleepSessionSchema) *SleepSession {
	return &SleepSession{
		UUID:              schema.UUID,
		UserID:            schema.UserID.String(),
		BedTime:           schema.BedTime,
		WakeUpTime:        schema.WakeUpTime,
		DurationInSeconds: schema.DurationInSeconds,
		CreatedAt:         schema.CreatedAt,
		UpdatedAt:         schema.UpdatedAt,
	}
}

func schemasToSessions(schemas []SleepSessionSchema) []*SleepSession {
	sessions := make([]*SleepSession, 0, len(schemas))
	for _, schema := range schemas {
		sessions = append(sessions, schemaToSession(schema))
	}
	return sessions
}
