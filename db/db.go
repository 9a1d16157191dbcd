package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/andrewbenington/group-mix/dialect"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects to the ledger, checks the connection and applies pending
// migrations. For sqlite, dsn is a file path.
func Open(ctx context.Context, d dialect.Dialect, dsn string) (*sql.DB, error) {
	if d == dialect.SQLite {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn)
	}

	dbConn, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if d == dialect.SQLite {
		// single writer
		dbConn.SetMaxOpenConns(1)
		dbConn.SetMaxIdleConns(1)
		dbConn.SetConnMaxLifetime(0)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err = dbConn.PingContext(pingCtx); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	if err = Migrate(ctx, dbConn, d); err != nil {
		dbConn.Close()
		return nil, err
	}

	zap.L().Info("ledger ready", zap.String("driver", string(d)))
	return dbConn, nil
}

func Migrate(ctx context.Context, dbConn *sql.DB, d dialect.Dialect) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(d.GooseDialect()); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, dbConn, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
