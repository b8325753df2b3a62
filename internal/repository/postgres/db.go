package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/njprem/Todo_APP_BackEnd/internal/repository/postgres/migrations"
)

// Supported database/sql driver names.
const (
	DriverPGX = "pgx"
	DriverPQ  = "postgres"
)

func New(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "", DriverPGX:
		return sqlx.Connect(DriverPGX, dsn)
	case DriverPQ:
		return sqlx.Connect(DriverPQ, dsn)
	default:
		return nil, fmt.Errorf("postgres: unsupported driver %q", driver)
	}
}

// gooseUp is replaced in tests.
var gooseUp = func(ctx context.Context, db *sqlx.DB) error {
	return goose.UpContext(ctx, db.DB, ".")
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := gooseUp(ctx, db); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

func execAffectingOne(ctx context.Context, db sqlx.ExecerContext, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
