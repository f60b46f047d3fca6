package dbmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewbooks/crewbooks/internal/model"
	"github.com/crewbooks/crewbooks/migrations"
)

type DBManager struct {
	log  *slog.Logger
	pool *pgxpool.Pool
	dsn  string
	err  error
}

func New(dsn string, log *slog.Logger) *DBManager {
	return &DBManager{
		log: log,
		dsn: dsn,
	}
}

func (m *DBManager) Connect(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}

	cfg, err := pgxpool.ParseConfig(m.dsn)
	if err != nil {
		m.err = fmt.Errorf("failed to parse DSN: %w", err)
		return m
	}
	cfg.MinConns = 1
	cfg.MaxConns = 10
	cfg.ConnConfig.Tracer = &queryTracer{m.log}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		m.err = fmt.Errorf("failed to init pgxpool: %w", err)
		return m
	}

	m.pool = pool
	return m
}

func (m *DBManager) ApplyMigrations(_ context.Context) *DBManager {
	if m.err != nil {
		return m
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		m.err = fmt.Errorf("failed to load migrations: %w", err)
		return m
	}

	mig, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(m.dsn))
	if err != nil {
		m.err = fmt.Errorf("failed to init migrator: %w", err)
		return m
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil || dbErr != nil {
			m.log.LogAttrs(context.Background(),
				slog.LevelError,
				"failed to close migrator",
				slog.Any(model.KeyLoggerError, errors.Join(srcErr, dbErr)),
			)
		}
	}()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		m.err = fmt.Errorf("failed to apply migrations: %w", err)
	}
	return m
}

// migrateURL rewrites the DSN scheme for golang-migrate's pgx/v5 driver.
func migrateURL(dsn string) string {
	if rest, ok := strings.CutPrefix(dsn, "postgresql://"); ok {
		return "pgx5://" + rest
	}
	if rest, ok := strings.CutPrefix(dsn, "postgres://"); ok {
		return "pgx5://" + rest
	}
	return dsn
}

func (m *DBManager) Ping(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}
	if m.pool == nil {
		m.err = errors.New("ping before connect")
		return m
	}

	if err := m.pool.Ping(ctx); err != nil {
		m.err = fmt.Errorf("failed to ping the DB: %w", err)
	}
	return m
}

func (m *DBManager) GetPool(_ context.Context) (*pgxpool.Pool, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.pool == nil {
		return nil, errors.New("DB is not connected")
	}
	return m.pool, nil
}

func (m *DBManager) Error() error {
	return m.err
}

func (m *DBManager) Close() {
	if m.pool == nil {
		return
	}

	m.pool.Close()
	m.log.LogAttrs(context.TODO(),
		slog.LevelInfo,
		"connection to DB closed",
	)
}
