// Package storage elige el adapter de persistencia según la configuración.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go"

	"herd-weight-tracker/internal/adapters/storage/memory"
	"herd-weight-tracker/internal/adapters/storage/sheet"
	"herd-weight-tracker/internal/adapters/storage/sqlstore"
	"herd-weight-tracker/internal/domain/weights"
	"herd-weight-tracker/internal/platform/config"
	"herd-weight-tracker/internal/platform/logger"
)

// Store es el repo abierto más lo que haya que cerrar al salir.
type Store struct {
	Repo   weights.Repository
	Driver string
	db     *sql.DB
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Open abre el repo configurado. Las bases SQL se reintentan porque suelen
// arrancar en paralelo con el servicio (docker compose).
func Open(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(map[string]any{"component": "storage", "driver": cfg.Driver})

	switch cfg.Driver {
	case "", "memory":
		log.Info("using in-memory store", nil)
		return &Store{Repo: memory.NewWeightsRepo(), Driver: "memory"}, nil

	case "sheet":
		log.Info("using xlsx sheet store", map[string]any{"path": cfg.Path})
		return &Store{Repo: sheet.New(cfg.Path), Driver: "sheet"}, nil

	case "postgres", "mysql", "sqlite":
		d, err := sqlstore.DialectFor(cfg.Driver)
		if err != nil {
			return nil, err
		}
		dsn := cfg.DSN
		if d.Name == sqlstore.SQLite.Name && dsn == "" {
			dsn = cfg.Path
		}

		var db *sql.DB
		err = retry.Do(
			func() error {
				var openErr error
				db, openErr = sqlstore.Open(ctx, d, dsn)
				return openErr
			},
			retry.Attempts(5),
			retry.Delay(500*time.Millisecond),
			retry.OnRetry(func(n uint, err error) {
				log.Warn("store not ready, retrying", map[string]any{"attempt": n + 1, "error": err})
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", d.Name, err)
		}

		repo := sqlstore.NewWeightsRepo(db, d)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("using sql store", nil)
		return &Store{Repo: repo, Driver: d.Name, db: db}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
