package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-pg/pg/v10"
)

// PostgresBackend stores documents in the "documents" table. The version of
// a document is its generation counter.
type PostgresBackend struct {
	db  pg.DBI
	log *slog.Logger
}

func NewPostgresBackend(db pg.DBI, log *slog.Logger) *PostgresBackend {
	return &PostgresBackend{
		db:  db,
		log: log,
	}
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	if db, ok := b.db.(*pg.DB); ok {
		return db.Ping(ctx)
	}

	return nil
}

func (b *PostgresBackend) Close() error {
	if db, ok := b.db.(*pg.DB); ok {
		return db.Close()
	}

	return nil
}

func (b *PostgresBackend) Load(ctx context.Context, name string) (Document, error) {
	row := &DocumentRow{Name: name}
	err := b.db.ModelContext(ctx, row).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return Document{}, nil
	} else if err != nil {
		return Document{}, fmt.Errorf("failed to query document: %w", err)
	}

	return Document{
		Body:    []byte(row.Body),
		Version: strconv.FormatInt(row.Generation, 10),
	}, nil
}

func (b *PostgresBackend) Save(ctx context.Context, name string, body []byte, base string) (string, error) {
	now := time.Now()

	if base == "" {
		row := &DocumentRow{
			Name:       name,
			Body:       string(body),
			Generation: 1,
			UpdatedAt:  now,
		}
		res, err := b.db.ModelContext(ctx, row).OnConflict("DO NOTHING").Insert()
		if err != nil {
			return "", fmt.Errorf("failed to insert document: %w", err)
		}
		if res.RowsAffected() == 0 {
			return "", ErrConflict
		}

		return "1", nil
	}

	generation, err := strconv.ParseInt(base, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid document version %q: %w", base, err)
	}

	res, err := b.db.ModelContext(ctx, (*DocumentRow)(nil)).
		Set(`"body" = ?`, string(body)).
		Set(`"generation" = ?`, generation+1).
		Set(`"updatedAt" = ?`, now).
		Where(`"name" = ?`, name).
		Where(`"generation" = ?`, generation).
		Update()
	if err != nil {
		return "", fmt.Errorf("failed to update document: %w", err)
	}
	if res.RowsAffected() == 0 {
		b.log.Warn("document generation moved on", "name", name, "base", generation)
		return "", ErrConflict
	}

	return strconv.FormatInt(generation+1, 10), nil
}
