package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/daniilsolovey/sitecontent/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noOpLogger creates a logger that discards all output for tests
func noOpLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}

// stubAssets records removed paths instead of touching the filesystem
type stubAssets struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (s *stubAssets) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, path)
	return s.err
}

var testTime = time.Date(2025, 9, 28, 10, 0, 5, 0, time.UTC)

func newTestBackend(t *testing.T) *db.FileBackend {
	t.Helper()

	backend, err := db.NewFileBackend(filepath.Join(t.TempDir(), "data"), time.Second)
	require.NoError(t, err)

	return backend
}

func newTestArticleManager(t *testing.T) (*ArticleManager, *stubAssets, *db.FileBackend) {
	t.Helper()

	backend := newTestBackend(t)
	docs := db.NewCollection(backend, "news", EmptyNewsDocument, noOpLogger())
	assets := &stubAssets{}
	tokyo := time.FixedZone("JST", 9*60*60)

	m := NewArticleManager(docs, assets, tokyo, noOpLogger())
	m.now = func() time.Time { return testTime }

	return m, assets, backend
}

func input(title string) ArticleInput {
	return ArticleInput{Category: "News", Title: title, Content: "body of " + title}
}

func assertRecentFlags(t *testing.T, articles []Article) {
	t.Helper()

	want := min(RecentArticles, len(articles))
	got := 0
	for i, a := range articles {
		if a.IsNew {
			got++
		}
		assert.Equal(t, i < RecentArticles, a.IsNew, "article %d at position %d", a.ID, i)
	}
	assert.Equal(t, want, got)
}

func TestArticleManager_Scenario(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestArticleManager(t)

	first, err := m.Create(ctx, input("Launch"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.True(t, first.IsNew)

	second, err := m.Create(ctx, input("Second"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	articles, err := m.Articles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.True(t, articles[1].IsNew, "first article is still within the top 3")

	_, err = m.Create(ctx, input("Third"))
	require.NoError(t, err)
	_, err = m.Create(ctx, input("Fourth"))
	require.NoError(t, err)

	articles, err = m.Articles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 4)
	assert.Equal(t, []int{4, 3, 2, 1}, ids(articles))
	assert.False(t, articles[3].IsNew)
	assertRecentFlags(t, articles)

	require.NoError(t, m.Delete(ctx, 4))

	articles, err = m.Articles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, []int{3, 2, 1}, ids(articles))
	assertRecentFlags(t, articles)
}

func TestArticleManager_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("IdsAreSequential", func(t *testing.T) {
		m, _, _ := newTestArticleManager(t)

		for want := 1; want <= 5; want++ {
			a, err := m.Create(ctx, input("a"))
			require.NoError(t, err)
			assert.Equal(t, want, a.ID)
		}
	})

	t.Run("IdFollowsMaxNotLength", func(t *testing.T) {
		m, _, _ := newTestArticleManager(t)

		for i := 0; i < 3; i++ {
			_, err := m.Create(ctx, input("a"))
			require.NoError(t, err)
		}
		require.NoError(t, m.Delete(ctx, 2))

		a, err := m.Create(ctx, input("b"))
		require.NoError(t, err)
		assert.Equal(t, 4, a.ID)
	})

	t.Run("CreationTimeUsesLocation", func(t *testing.T) {
		m, _, _ := newTestArticleManager(t)

		a, err := m.Create(ctx, input("a"))
		require.NoError(t, err)
		assert.Equal(t, "2025.09.28", a.Date)
		assert.Equal(t, "2025-09-28T19:00:05", a.Timestamp)
	})

	t.Run("ValidationNamesFirstMissingField", func(t *testing.T) {
		m, _, backend := newTestArticleManager(t)

		tests := []struct {
			name  string
			in    ArticleInput
			field string
		}{
			{"AllMissing", ArticleInput{}, "category"},
			{"MissingTitle", ArticleInput{Category: "News", Content: "x"}, "title"},
			{"BlankContent", ArticleInput{Category: "News", Title: "t", Content: "   "}, "content"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := m.Create(ctx, tt.in)

				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.field, verr.Field)
			})
		}

		_, statErr := os.Stat(backend.Path("news"))
		assert.True(t, os.IsNotExist(statErr), "validation failures must not write")
	})

	t.Run("ConcurrentCreatesDoNotLoseUpdates", func(t *testing.T) {
		m, _, _ := newTestArticleManager(t)

		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := m.Create(ctx, input("concurrent"))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		articles, err := m.Articles(ctx)
		require.NoError(t, err)
		require.Len(t, articles, n)

		got := ids(articles)
		sort.Ints(got)
		for i, id := range got {
			assert.Equal(t, i+1, id)
		}
		assertRecentFlags(t, articles)
	})
}

func TestArticleManager_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("KeepsIdentityAndCreationTime", func(t *testing.T) {
		m, _, _ := newTestArticleManager(t)

		created, err := m.Create(ctx, ArticleInput{Category: "News", Title: "t", Content: "c", Image: "./assets/uploads/2025/09/a.jpg"})
		require.NoError(t, err)

		m.now = func() time.Time { return testTime.Add(72 * time.Hour) }

		updated, err := m.Update(ctx, created.ID, ArticleInput{Category: "Event", Title: "t2", Content: "c2"})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.Date, updated.Date)
		assert.Equal(t, created.Timestamp, updated.Timestamp)
		assert.Equal(t, "Event", updated.Category)
		assert.Equal(t, "t2", updated.Title)
		assert.Equal(t, "c2", updated.Content)
		assert.Equal(t, "./assets/uploads/2025/09/a.jpg", updated.Image, "empty image keeps the previous one")
	})

	t.Run("ReplacesImageWhenSupplied", func(t *testing.T) {
		m, assets, _ := newTestArticleManager(t)

		created, err := m.Create(ctx, ArticleInput{Category: "News", Title: "t", Content: "c", Image: "./assets/uploads/2025/09/a.jpg"})
		require.NoError(t, err)

		updated, err := m.Update(ctx, created.ID, ArticleInput{Category: "News", Title: "t", Content: "c", Image: "./assets/uploads/2025/09/b.jpg"})
		require.NoError(t, err)
		assert.Equal(t, "./assets/uploads/2025/09/b.jpg", updated.Image)
		assert.Empty(t, assets.removed)
	})

	t.Run("RecomputesRecentFlags", func(t *testing.T) {
		m, _, backend := newTestArticleManager(t)

		seed := `{"articles": [
			{"id": 5, "title": "a", "isNew": false},
			{"id": 4, "title": "b", "isNew": false},
			{"id": 3, "title": "c", "isNew": true},
			{"id": 2, "title": "d", "isNew": true}
		]}`
		require.NoError(t, os.WriteFile(backend.Path("news"), []byte(seed), 0o644))

		_, err := m.Update(ctx, 2, input("d2"))
		require.NoError(t, err)

		articles, err := m.Articles(ctx)
		require.NoError(t, err)
		assertRecentFlags(t, articles)
	})

	t.Run("UnknownIDIsNotFound", func(t *testing.T) {
		m, _, _ := newTestArticleManager(t)

		_, err := m.Create(ctx, input("a"))
		require.NoError(t, err)

		_, err = m.Update(ctx, 42, input("x"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SaveDispatchesOnID", func(t *testing.T) {
		m, _, _ := newTestArticleManager(t)

		a, err := m.Save(ctx, 0, input("new"))
		require.NoError(t, err)
		assert.Equal(t, 1, a.ID)

		b, err := m.Save(ctx, 1, input("edited"))
		require.NoError(t, err)
		assert.Equal(t, "edited", b.Title)

		articles, err := m.Articles(ctx)
		require.NoError(t, err)
		assert.Len(t, articles, 1)
	})
}

func TestArticleManager_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("AbsentIDIsNotFoundEveryTime", func(t *testing.T) {
		m, _, _ := newTestArticleManager(t)

		_, err := m.Create(ctx, input("a"))
		require.NoError(t, err)
		before, err := m.Articles(ctx)
		require.NoError(t, err)

		assert.ErrorIs(t, m.Delete(ctx, 99), ErrNotFound)
		assert.ErrorIs(t, m.Delete(ctx, 99), ErrNotFound)

		after, err := m.Articles(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("UnlinksImage", func(t *testing.T) {
		m, assets, _ := newTestArticleManager(t)

		a, err := m.Create(ctx, ArticleInput{Category: "News", Title: "t", Content: "c", Image: "./assets/uploads/2025/09/a.jpg"})
		require.NoError(t, err)

		require.NoError(t, m.Delete(ctx, a.ID))
		assert.Equal(t, []string{"./assets/uploads/2025/09/a.jpg"}, assets.removed)
	})

	t.Run("NoImageNoUnlink", func(t *testing.T) {
		m, assets, _ := newTestArticleManager(t)

		a, err := m.Create(ctx, input("a"))
		require.NoError(t, err)

		require.NoError(t, m.Delete(ctx, a.ID))
		assert.Empty(t, assets.removed)
	})

	t.Run("UnlinkFailureDoesNotAbort", func(t *testing.T) {
		m, assets, _ := newTestArticleManager(t)
		assets.err = errors.New("permission denied")

		a, err := m.Create(ctx, ArticleInput{Category: "News", Title: "t", Content: "c", Image: "./assets/uploads/x.png"})
		require.NoError(t, err)

		require.NoError(t, m.Delete(ctx, a.ID))

		articles, err := m.Articles(ctx)
		require.NoError(t, err)
		assert.Empty(t, articles)
	})
}

func TestArticleManager_StaleWriteIsConflict(t *testing.T) {
	ctx := context.Background()
	m, _, backend := newTestArticleManager(t)

	_, err := m.Create(ctx, input("a"))
	require.NoError(t, err)

	// a second process sharing the file
	other := NewArticleManager(
		db.NewCollection(backend, "news", EmptyNewsDocument, noOpLogger()),
		&stubAssets{}, time.UTC, noOpLogger(),
	)

	docs := db.NewCollection(backend, "news", EmptyNewsDocument, noOpLogger())
	doc, version, err := docs.Read(ctx)
	require.NoError(t, err)

	_, err = other.Create(ctx, input("b"))
	require.NoError(t, err)

	doc.Articles = append(doc.Articles, Article{ID: 99})
	_, err = docs.Write(ctx, doc, version)
	assert.ErrorIs(t, err, db.ErrConflict)

	articles, err := m.Articles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ids(articles))
}

func TestArticleManager_Queries(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestArticleManager(t)

	for _, in := range []ArticleInput{
		{Category: "News", Title: "n1", Content: "c"},
		{Category: "Event", Title: "e1", Content: "c"},
		{Category: "News", Title: "n2", Content: "c"},
		{Category: "Recruit", Title: "r1", Content: "c"},
		{Category: "News", Title: "n3", Content: "c"},
	} {
		_, err := m.Create(ctx, in)
		require.NoError(t, err)
	}

	t.Run("ByIDFound", func(t *testing.T) {
		a, err := m.ArticleByID(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "e1", a.Title)
	})

	t.Run("ByIDMissingReturnsNil", func(t *testing.T) {
		a, err := m.ArticleByID(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, a)
	})

	t.Run("FilterByCategoryKeepsOrder", func(t *testing.T) {
		news := "News"
		list, err := m.ArticlesByFilter(ctx, &news, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 3, 1}, ids(list))
	})

	t.Run("ByCategoryReturnsAll", func(t *testing.T) {
		news, missing := "News", "Press"

		all, err := m.ArticlesByCategory(ctx, nil)
		require.NoError(t, err)
		filtered, err := m.ArticlesByCategory(ctx, &news)
		require.NoError(t, err)
		none, err := m.ArticlesByCategory(ctx, &missing)
		require.NoError(t, err)

		assert.Equal(t, []int{5, 4, 3, 2, 1}, ids(all))
		assert.Equal(t, []int{5, 3, 1}, ids(filtered))
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("Pagination", func(t *testing.T) {
		page1, err := m.ArticlesByFilter(ctx, nil, 1, 2)
		require.NoError(t, err)
		page3, err := m.ArticlesByFilter(ctx, nil, 3, 2)
		require.NoError(t, err)
		beyond, err := m.ArticlesByFilter(ctx, nil, 4, 2)
		require.NoError(t, err)

		assert.Equal(t, []int{5, 4}, ids(page1))
		assert.Equal(t, []int{1}, ids(page3))
		assert.Empty(t, beyond)
	})

	t.Run("InvalidPage", func(t *testing.T) {
		_, err := m.ArticlesByFilter(ctx, nil, 0, 10)
		assert.Error(t, err)
	})

	t.Run("Count", func(t *testing.T) {
		news := "News"
		all, err := m.ArticlesCount(ctx, nil)
		require.NoError(t, err)
		filtered, err := m.ArticlesCount(ctx, &news)
		require.NoError(t, err)

		assert.Equal(t, 5, all)
		assert.Equal(t, 3, filtered)
	})

	t.Run("Categories", func(t *testing.T) {
		categories, err := m.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"News", "Recruit", "Event"}, categories)
	})
}

func ids(articles []Article) []int {
	result := make([]int, len(articles))
	for i, a := range articles {
		result[i] = a.ID
	}
	return result
}

// failingBackend reads through to a real store but cannot write.
type failingBackend struct {
	db.Backend
	saveErr error
	block   bool
}

func (f failingBackend) Save(ctx context.Context, name string, body []byte, base string) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "", f.saveErr
}

func TestArticleManager_WriteFailure(t *testing.T) {
	ctx := context.Background()
	seed, _, backend := newTestArticleManager(t)
	for _, title := range []string{"a", "b"} {
		_, err := seed.Create(ctx, input(title))
		require.NoError(t, err)
	}
	before, err := os.ReadFile(backend.Path("news"))
	require.NoError(t, err)

	diskFull := errors.New("disk full")
	assets := &stubAssets{}
	m := NewArticleManager(
		db.NewCollection(failingBackend{Backend: backend, saveErr: diskFull}, "news", EmptyNewsDocument, noOpLogger()),
		assets, time.UTC, noOpLogger(),
	)

	operations := []struct {
		name string
		run  func() error
	}{
		{"Create", func() error { _, err := m.Create(ctx, input("c")); return err }},
		{"Update", func() error { _, err := m.Update(ctx, 1, input("edited")); return err }},
		{"Delete", func() error { return m.Delete(ctx, 2) }},
	}

	for _, op := range operations {
		t.Run(op.name, func(t *testing.T) {
			err := op.run()
			require.ErrorIs(t, err, diskFull)
			assert.NotErrorIs(t, err, ErrNotFound)
			assert.NotErrorIs(t, err, db.ErrConflict)

			after, err := os.ReadFile(backend.Path("news"))
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}

	assert.Empty(t, assets.removed, "no image is unlinked when the delete was not written")
}

func TestArticleManager_SlowStoreTimesOut(t *testing.T) {
	backend := newTestBackend(t)
	m := NewArticleManager(
		db.NewCollection(failingBackend{Backend: backend, block: true}, "news", EmptyNewsDocument, noOpLogger()),
		&stubAssets{}, time.UTC, noOpLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Create(ctx, input("late"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, statErr := os.Stat(backend.Path("news"))
	assert.True(t, os.IsNotExist(statErr))
}

// countingBackend counts document loads.
type countingBackend struct {
	db.Backend
	loads *int
}

func (c countingBackend) Load(ctx context.Context, name string) (db.Document, error) {
	*c.loads++
	return c.Backend.Load(ctx, name)
}

func TestArticleManager_ByCategoryReadsOnce(t *testing.T) {
	ctx := context.Background()
	seed, _, backend := newTestArticleManager(t)
	for _, title := range []string{"a", "b", "c"} {
		_, err := seed.Create(ctx, input(title))
		require.NoError(t, err)
	}

	loads := 0
	m := NewArticleManager(
		db.NewCollection(countingBackend{Backend: backend, loads: &loads}, "news", EmptyNewsDocument, noOpLogger()),
		&stubAssets{}, time.UTC, noOpLogger(),
	)

	list, err := m.ArticlesByCategory(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 1, loads)
}
