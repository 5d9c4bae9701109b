package rpc

import (
	"context"

	"github.com/daniilsolovey/sitecontent/internal/content"
	"github.com/vmkteam/zenrpc/v2"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ArticleService provides read-only RPC methods for articles.
type ArticleService struct {
	zenrpc.Service
	manager *content.ArticleManager
}

func NewArticleService(manager *content.ArticleManager) *ArticleService {
	return &ArticleService{manager: manager}
}

// List retrieves articles newest first with optional category filtering and pagination.
//
//zenrpc:filter article filter
//zenrpc:return list of articles
//zenrpc:400 page and pageSize must be positive
//zenrpc:500 internal server error
func (s *ArticleService) List(ctx context.Context, filter ArticleFilter) (Articles, error) {
	page, pageSize := 1, defaultPageSize
	if filter.Page != nil {
		page = *filter.Page
	}
	if filter.PageSize != nil {
		pageSize = min(*filter.PageSize, maxPageSize)
	}
	if page < 1 || pageSize < 1 {
		return nil, zenrpc.NewStringError(400, "page and pageSize must be positive")
	}

	articles, err := s.manager.ArticlesByFilter(ctx, filter.Category, page, pageSize)
	if err != nil {
		return nil, err
	}

	return NewArticles(articles), nil
}

// Count returns the number of articles, optionally within one category.
//
//zenrpc:category optional category filter
//zenrpc:return count of articles
//zenrpc:500 internal server error
func (s *ArticleService) Count(ctx context.Context, category *string) (int, error) {
	return s.manager.ArticlesCount(ctx, category)
}

// ByID retrieves a single article.
//
//zenrpc:id article id
//zenrpc:return article
//zenrpc:400 id must be positive
//zenrpc:404 article not found
//zenrpc:500 internal server error
func (s *ArticleService) ByID(ctx context.Context, id int) (*Article, error) {
	if id <= 0 {
		return nil, zenrpc.NewStringError(400, "id must be positive")
	}

	a, err := s.manager.ArticleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if a == nil {
		return nil, zenrpc.NewStringError(404, "article not found")
	}

	article := NewArticle(*a)
	return &article, nil
}

// Categories lists the distinct article categories in order of first appearance.
//
//zenrpc:return list of categories
//zenrpc:500 internal server error
func (s *ArticleService) Categories(ctx context.Context) ([]string, error) {
	return s.manager.Categories(ctx)
}
