package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxSize is the largest accepted upload.
	DefaultMaxSize int64 = 5 << 20

	// PublicPrefix is how stored paths start in records and URLs.
	PublicPrefix = "./assets/uploads/"
)

var (
	ErrUnsupportedType = errors.New("invalid file type. Allowed: jpg, jpeg, png, gif, webp")
	ErrTooLarge        = errors.New("file size must be less than 5MB")
	ErrInvalidPath     = errors.New("path is outside the upload root")
)

var allowedExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

var contentTypeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Manager stores uploaded images under <root>/YYYY/MM and removes them again.
type Manager struct {
	root    string
	maxSize int64
	loc     *time.Location
	log     *slog.Logger
	now     func() time.Time
	token   func() string
}

func NewManager(root string, maxSize int64, loc *time.Location, log *slog.Logger) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if loc == nil {
		loc = time.Local
	}

	return &Manager{
		root:    root,
		maxSize: maxSize,
		loc:     loc,
		log:     log,
		now:     time.Now,
		token:   newToken,
	}
}

// Root returns the directory uploads are written under.
func (m *Manager) Root() string {
	return m.root
}

// Store validates an upload and writes it to a new file. The returned path is
// relative to the site root, e.g. ./assets/uploads/2025/09/1759050005_1a2b3c4d5e6f.jpg.
// Rejected uploads never create anything on disk.
func (m *Manager) Store(ctx context.Context, r io.Reader, filename, contentType string, size int64) (string, error) {
	ext, err := extension(filename, contentType)
	if err != nil {
		return "", err
	}

	if size > m.maxSize {
		return "", ErrTooLarge
	}

	now := m.now().In(m.loc)
	partition := path.Join(now.Format("2006"), now.Format("01"))
	name := fmt.Sprintf("%d_%s.%s", now.Unix(), m.token(), ext)

	dir := filepath.Join(m.root, filepath.FromSlash(partition))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	target := filepath.Join(dir, name)
	if err := m.copyLimited(ctx, target, r); err != nil {
		return "", err
	}

	m.log.Info("asset stored", "path", target, "size", size)

	return PublicPrefix + partition + "/" + name, nil
}

func (m *Manager) copyLimited(ctx context.Context, target string, r io.Reader) (err error) {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close asset: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(target)
		}
	}()

	n, err := io.Copy(f, io.LimitReader(contextReader{ctx: ctx, r: r}, m.maxSize+1))
	if err != nil {
		return fmt.Errorf("write asset: %w", err)
	}
	if n > m.maxSize {
		return ErrTooLarge
	}

	return nil
}

// Remove deletes an asset previously returned by Store. Missing files are not
// an error. Paths that do not point into the upload root are refused.
func (m *Manager) Remove(p string) error {
	target, err := m.resolve(p)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove asset: %w", err)
	}

	m.log.Info("asset removed", "path", target)

	return nil
}

// resolve maps a stored path (./assets/uploads/..., /assets/uploads/... or
// assets/uploads/...) onto the filesystem below root.
func (m *Manager) resolve(p string) (string, error) {
	rel := strings.TrimPrefix(p, ".")
	rel = strings.TrimPrefix(rel, "/")

	const prefix = "assets/uploads/"
	if !strings.HasPrefix(rel, prefix) {
		return "", ErrInvalidPath
	}

	rel = path.Clean(strings.TrimPrefix(rel, prefix))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", ErrInvalidPath
	}

	return filepath.Join(m.root, filepath.FromSlash(rel)), nil
}

// extension picks the lower-cased file extension, falling back to the declared
// content type when the name has none.
func extension(filename, contentType string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = contentTypeExtensions[strings.ToLower(contentType)]
	}

	if !slices.Contains(allowedExtensions, ext) {
		return "", ErrUnsupportedType
	}

	return ext, nil
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
