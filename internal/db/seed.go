package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Seed copies the named documents from src into dst where dst does not have
// them yet. It is used when a site moves from the file store to postgres, so
// the existing JSON files become the first generation. Documents dst already
// holds are left untouched.
func Seed(ctx context.Context, dst, src Backend, log *slog.Logger, names ...string) (int, error) {
	seeded := 0
	for _, name := range names {
		current, err := dst.Load(ctx, name)
		if err != nil {
			return seeded, fmt.Errorf("load %s from target: %w", name, err)
		}
		if current.Version != "" {
			continue
		}

		doc, err := src.Load(ctx, name)
		if err != nil {
			return seeded, fmt.Errorf("load %s from source: %w", name, err)
		}
		if len(doc.Body) == 0 {
			continue
		}
		if !json.Valid(doc.Body) {
			log.Warn("skipping malformed document", "name", name)
			continue
		}

		if _, err := dst.Save(ctx, name, doc.Body, ""); errors.Is(err, ErrConflict) {
			// another instance seeded it first
			continue
		} else if err != nil {
			return seeded, fmt.Errorf("seed %s: %w", name, err)
		}

		log.Info("document seeded", "name", name, "bytes", len(doc.Body))
		seeded++
	}

	return seeded, nil
}
