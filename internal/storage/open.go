// Package storage picks a persistence backend from the DSN.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_pms/internal/domain"
	"hotel_pms/internal/storage/gormstore"
	mysqlrepo "hotel_pms/internal/storage/mysql"
)

// Backend is an opened store plus its lifecycle hooks.
type Backend struct {
	domain.Store
	Kind string // mysql | gorm

	migrate func(ctx context.Context, dir string) error
	close   func() error
}

// Migrate brings the schema up to date. MySQL runs the SQL files in dir;
// gorm backends derive the schema from their models and ignore dir.
func (b *Backend) Migrate(ctx context.Context, dir string) error { return b.migrate(ctx, dir) }

func (b *Backend) Close() error { return b.close() }

// Open connects to postgres:// and sqlite DSNs through gorm, and treats
// anything else as a go-sql-driver/mysql DSN.
func Open(ctx context.Context, dsn string) (*Backend, error) {
	if gormstore.Supports(dsn) {
		db, err := gormstore.Open(dsn)
		if err != nil {
			return nil, fmt.Errorf("open gorm store: %w", err)
		}
		s := gormstore.New(db)
		log.Info().Str("backend", "gorm").Msg("store opened")
		return &Backend{
			Store:   s,
			Kind:    "gorm",
			migrate: func(context.Context, string) error { return s.AutoMigrate() },
			close:   s.Close,
		}, nil
	}

	if _, err := mysql.ParseDSN(dsn); err != nil {
		return nil, fmt.Errorf("unrecognised store DSN: %w", err)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	log.Info().Str("backend", "mysql").Msg("store opened")
	return &Backend{
		Store:   mysqlrepo.New(db),
		Kind:    "mysql",
		migrate: func(ctx context.Context, dir string) error { return mysqlrepo.ApplyMigrations(ctx, db, dir) },
		close:   db.Close,
	}, nil
}
