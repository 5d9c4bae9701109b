package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrConflict is returned by Save when the stored document has changed since
// the version the caller read.
var ErrConflict = errors.New("document was modified concurrently")

// Document is a whole persisted document together with the version tag it was
// read at. A zero Document means nothing has been stored yet.
type Document struct {
	Body    []byte
	Version string
}

// Backend persists whole documents by name.
type Backend interface {
	// Load returns the current document. A missing document is not an error.
	Load(ctx context.Context, name string) (Document, error)
	// Save replaces the document if its stored version still equals base
	// and returns the new version. An empty base means "must not exist yet".
	Save(ctx context.Context, name string, body []byte, base string) (string, error)
}

func checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
