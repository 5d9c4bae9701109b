package db

import (
	"context"
	"embed"
	"fmt"
	"net/url"

	"github.com/go-pg/pg/v10"
	"github.com/jackc/pgx"
	"github.com/jackc/pgx/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// RunMigrations applies the embedded goose migrations to the database at databaseURL.
func RunMigrations(ctx context.Context, databaseURL string) error {
	config, err := pgx.ParseConnectionString(databaseURL)
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}

	sqldb := stdlib.OpenDB(config)
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqldb, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// DatabaseURL renders go-pg options as a postgres:// connection URL.
func DatabaseURL(opt *pg.Options) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   opt.Addr,
		Path:   "/" + opt.Database,
	}
	if opt.User != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.User, opt.Password)
		} else {
			u.User = url.User(opt.User)
		}
	}
	if opt.TLSConfig == nil {
		u.RawQuery = "sslmode=disable"
	}

	return u.String()
}
