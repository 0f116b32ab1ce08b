package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/hchs200771/goodnight-app/internal/follows"
	"github.com/hchs200771/goodnight-app/internal/sleep"
	"github.com/hchs200771/goodnight-app/internal/users"
)

// CreateTables creates all tables used by the service
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*users.UserSchema)(nil),
		(*follows.FollowSchema)(nil),
		(*sleep.SleepSessionSchema)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	return nil
}

// CreateIndexes creates all indexes, including the partial unique index that
// enforces at most one open sleep session per user
func CreateIndexes(ctx context.Context, db *bun.DB) error {
	allIndexes := append([]string{}, users.UserIndexes...)
	allIndexes = append(allIndexes, follows.FollowIndexes...)
	allIndexes = append(allIndexes, sleep.SleepSessionIndexes...)

	for _, indexSQL := range allIndexes {
		_, err := db.ExecContext(ctx, indexSQL)
		if err != nil {
			return fmt.Errorf("failed to create index with SQL %q: %w", indexSQL, err)
		}
	}

	return nil
}

// Migrate creates tables then indexes
func Migrate(ctx context.Context, db *bun.DB) error {
	if err := CreateTables(ctx, db); err != nil {
		return err
	}
	return CreateIndexes(ctx, db)
}
