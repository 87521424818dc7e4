package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type Config struct {
	DatabaseURL string
	MaxConns    int
	PingTimeout time.Duration
}

// Connect opens the profile store pool. Timestamps are generated in UTC so
// rows compare cleanly against the service clock, and driver errors are
// translated so unique violations surface as gorm.ErrDuplicatedKey.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("profile store pool: %w", err)
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 20
	}
	idleConns := maxConns / 2
	if idleConns < 2 {
		idleConns = 2
	}
	pool.SetMaxOpenConns(maxConns)
	pool.SetMaxIdleConns(idleConns)
	pool.SetConnMaxIdleTime(15 * time.Minute)
	pool.SetConnMaxLifetime(time.Hour)

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping profile store: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded schema files in name order, each inside
// its own transaction. Statements are idempotent (IF NOT EXISTS) so reapplying
// on every start is safe.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	for _, name := range names {
		raw, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		txErr := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Exec(string(raw)).Error
		})
		if txErr != nil {
			return fmt.Errorf("apply migration %s: %w", name, txErr)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// mapStoreError keeps timeouts distinct from data-level failures so callers
// see unavailability instead of a misleading not-found or internal error.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}
