package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Collection is a typed view of one named document. Reads never fail on
// missing or malformed content: both come back as the empty default so a
// broken file does not block later writes.
type Collection[T any] struct {
	backend Backend
	name    string
	empty   func() T
	log     *slog.Logger
}

func NewCollection[T any](backend Backend, name string, empty func() T, log *slog.Logger) *Collection[T] {
	return &Collection[T]{
		backend: backend,
		name:    name,
		empty:   empty,
		log:     log,
	}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Read loads and decodes the document. The returned version must be passed
// back to Write.
func (c *Collection[T]) Read(ctx context.Context) (T, string, error) {
	doc, err := c.backend.Load(ctx, c.name)
	if err != nil {
		return c.empty(), "", fmt.Errorf("load %s: %w", c.name, err)
	}

	if len(bytes.TrimSpace(doc.Body)) == 0 {
		return c.empty(), doc.Version, nil
	}

	value := c.empty()
	if err := json.Unmarshal(doc.Body, &value); err != nil {
		c.log.Warn("malformed document, using empty default",
			"collection", c.name,
			"error", err,
		)
		return c.empty(), doc.Version, nil
	}

	return value, doc.Version, nil
}

// Write replaces the whole document if it is still at version.
func (c *Collection[T]) Write(ctx context.Context, value T, version string) (string, error) {
	body, err := Encode(value)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", c.name, err)
	}

	newVersion, err := c.backend.Save(ctx, c.name, body, version)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", c.name, err)
	}

	return newVersion, nil
}

// Encode renders v as indented JSON with non-ASCII and HTML characters kept
// verbatim.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
