package content

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/daniilsolovey/sitecontent/internal/db"
)

const (
	// RecentArticles is how many leading articles carry the isNew flag.
	RecentArticles = 3

	articleDateLayout      = "2006.01.02"
	articleTimestampLayout = "2006-01-02T15:04:05"
)

// ArticleManager applies CRUD operations to the news collection. Mutations are
// serialized per manager; the document store rejects writes based on a stale
// read from any other writer.
type ArticleManager struct {
	docs   *db.Collection[NewsDocument]
	assets AssetRemover
	loc    *time.Location
	log    *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewArticleManager(docs *db.Collection[NewsDocument], assets AssetRemover, loc *time.Location, log *slog.Logger) *ArticleManager {
	if loc == nil {
		loc = time.Local
	}

	return &ArticleManager{
		docs:   docs,
		assets: assets,
		loc:    loc,
		log:    log,
		now:    time.Now,
	}
}

// EmptyNewsDocument is the default for a missing or unreadable news file.
func EmptyNewsDocument() NewsDocument {
	return NewsDocument{Articles: []Article{}}
}

// Articles returns the collection exactly as stored, newest first.
func (m *ArticleManager) Articles(ctx context.Context) ([]Article, error) {
	doc, _, err := m.docs.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}

	if doc.Articles == nil {
		return []Article{}, nil
	}

	return doc.Articles, nil
}

// ArticleByID returns nil when no article has the id.
func (m *ArticleManager) ArticleByID(ctx context.Context, id int) (*Article, error) {
	articles, err := m.Articles(ctx)
	if err != nil {
		return nil, err
	}

	i := indexByID(articles, articleID, id)
	if i < 0 {
		return nil, nil
	}

	return &articles[i], nil
}

// ArticlesByFilter pages through the articles of an optional category in
// stored order.
func (m *ArticleManager) ArticlesByFilter(ctx context.Context, category *string, page, pageSize int) ([]Article, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf(
			"page or pageSize must be greater than 0: page=%d, pageSize=%d",
			page, pageSize,
		)
	}

	articles, err := m.Articles(ctx)
	if err != nil {
		return nil, err
	}

	filtered := filterByCategory(articles, category)

	start := (page - 1) * pageSize
	if start >= len(filtered) {
		return []Article{}, nil
	}

	end := min(start+pageSize, len(filtered))

	return filtered[start:end], nil
}

// ArticlesByCategory returns every article of an optional category from a
// single read of the document.
func (m *ArticleManager) ArticlesByCategory(ctx context.Context, category *string) ([]Article, error) {
	articles, err := m.Articles(ctx)
	if err != nil {
		return nil, err
	}

	return filterByCategory(articles, category), nil
}

func (m *ArticleManager) ArticlesCount(ctx context.Context, category *string) (int, error) {
	articles, err := m.Articles(ctx)
	if err != nil {
		return 0, err
	}

	return len(filterByCategory(articles, category)), nil
}

// Categories lists distinct categories in order of first appearance.
func (m *ArticleManager) Categories(ctx context.Context) ([]string, error) {
	articles, err := m.Articles(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	categories := []string{}
	for _, a := range articles {
		if _, ok := seen[a.Category]; ok {
			continue
		}
		seen[a.Category] = struct{}{}
		categories = append(categories, a.Category)
	}

	return categories, nil
}

// Save creates an article when id is 0 and updates it otherwise.
func (m *ArticleManager) Save(ctx context.Context, id int, in ArticleInput) (Article, error) {
	if id == 0 {
		return m.Create(ctx, in)
	}

	return m.Update(ctx, id, in)
}

func (m *ArticleManager) Create(ctx context.Context, in ArticleInput) (Article, error) {
	if err := in.Validate(); err != nil {
		return Article{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, version, err := m.docs.Read(ctx)
	if err != nil {
		return Article{}, fmt.Errorf("read articles: %w", err)
	}

	now := m.now().In(m.loc)
	article := Article{
		ID:        nextID(doc.Articles, articleID),
		Date:      now.Format(articleDateLayout),
		Timestamp: now.Format(articleTimestampLayout),
		Category:  in.Category,
		Title:     in.Title,
		Content:   in.Content,
		Image:     in.Image,
	}

	doc.Articles = prepend(doc.Articles, article)
	markRecent(doc.Articles)

	if _, err := m.docs.Write(ctx, doc, version); err != nil {
		return Article{}, fmt.Errorf("write articles: %w", err)
	}

	m.log.Info("article created", "id", article.ID, "category", article.Category)

	return doc.Articles[0], nil
}

// Update replaces the mutable fields of an article. The id and creation
// timestamps are kept, and so is the image when in.Image is empty.
func (m *ArticleManager) Update(ctx context.Context, id int, in ArticleInput) (Article, error) {
	if err := in.Validate(); err != nil {
		return Article{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, version, err := m.docs.Read(ctx)
	if err != nil {
		return Article{}, fmt.Errorf("read articles: %w", err)
	}

	i := indexByID(doc.Articles, articleID, id)
	if i < 0 {
		return Article{}, notFound("article", id)
	}

	article := &doc.Articles[i]
	article.Category = in.Category
	article.Title = in.Title
	article.Content = in.Content
	if in.Image != "" {
		article.Image = in.Image
	}

	markRecent(doc.Articles)

	if _, err := m.docs.Write(ctx, doc, version); err != nil {
		return Article{}, fmt.Errorf("write articles: %w", err)
	}

	m.log.Info("article updated", "id", id)

	return doc.Articles[i], nil
}

// Delete removes an article and then unlinks its image. A failed unlink is
// logged and does not fail the delete.
func (m *ArticleManager) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, version, err := m.docs.Read(ctx)
	if err != nil {
		return fmt.Errorf("read articles: %w", err)
	}

	i := indexByID(doc.Articles, articleID, id)
	if i < 0 {
		return notFound("article", id)
	}

	removed := doc.Articles[i]
	doc.Articles = remove(doc.Articles, i)
	markRecent(doc.Articles)

	if _, err := m.docs.Write(ctx, doc, version); err != nil {
		return fmt.Errorf("write articles: %w", err)
	}

	m.log.Info("article deleted", "id", id)

	if removed.Image != "" {
		if err := m.assets.Remove(removed.Image); err != nil {
			m.log.Warn("failed to remove article image", "id", id, "image", removed.Image, "error", err)
		}
	}

	return nil
}

// markRecent sets isNew on exactly the first RecentArticles entries.
func markRecent(articles []Article) {
	for i := range articles {
		articles[i].IsNew = i < RecentArticles
	}
}

func filterByCategory(articles []Article, category *string) []Article {
	if category == nil || *category == "" {
		return articles
	}

	result := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.Category == *category {
			result = append(result, a)
		}
	}

	return result
}
