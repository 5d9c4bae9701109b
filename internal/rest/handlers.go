package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/daniilsolovey/sitecontent/internal/assets"
	"github.com/daniilsolovey/sitecontent/internal/auth"
	"github.com/daniilsolovey/sitecontent/internal/content"
	"github.com/daniilsolovey/sitecontent/internal/metrics"
	"github.com/labstack/echo/v4"
)

const (
	actionSave   = "save"
	actionDelete = "delete"
	actionUpload = "upload"

	passwordHeader = "X-Admin-Password"

	defaultPageSize = 10
	maxPageSize     = 100
)

type Handler struct {
	articles   *content.ArticleManager
	interviews *content.InterviewManager
	assets     *assets.Manager
	credential *auth.Credential
	log        *slog.Logger
}

func NewHandler(
	articles *content.ArticleManager,
	interviews *content.InterviewManager,
	assets *assets.Manager,
	credential *auth.Credential,
	log *slog.Logger,
) *Handler {
	return &Handler{
		articles:   articles,
		interviews: interviews,
		assets:     assets,
		credential: credential,
		log:        log,
	}
}

// authorize checks the shared credential from the request body or header.
func (h *Handler) authorize(c echo.Context, password string) error {
	if password == "" {
		password = c.Request().Header.Get(passwordHeader)
	}

	if !h.credential.Verify(password) {
		return ErrInvalidCredential
	}

	return nil
}

// ArticleAction handles POST /api/v1/articles/:action
// @Summary Mutate articles
// @Description Creates or updates (save), deletes (delete) an article or uploads an article image (upload). Every action requires the admin password.
// @Tags articles
// @Accept json,x-www-form-urlencoded,multipart/form-data
// @Produce json
// @Param action path string true "save, delete or upload"
// @Param X-Admin-Password header string false "Admin password, alternative to the password field"
// @Param request body rest.ArticleRequest false "Article fields (save, delete)"
// @Success 200 {object} rest.Response
// @Failure 400,403,404,409,429,500 {object} rest.Response
// @Router /api/v1/articles/{action} [post]
func (h *Handler) ArticleAction(c echo.Context) error {
	switch c.Param("action") {
	case actionSave:
		return h.saveArticle(c)
	case actionDelete:
		return h.deleteArticle(c)
	case actionUpload:
		return h.upload(c, "articles")
	}

	return h.handleError(c, ErrInvalidAction)
}

func (h *Handler) saveArticle(c echo.Context) error {
	var req ArticleRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, ErrInvalidRequest)
	}

	if err := h.authorize(c, req.Password); err != nil {
		return h.handleError(c, err)
	}

	article, err := h.articles.Save(c.Request().Context(), int(req.ID), req.ToModel())
	metrics.Mutations.WithLabelValues("articles", operation(req.ID), metrics.Result(err)).Inc()
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "News saved successfully", Data: article})
}

func (h *Handler) deleteArticle(c echo.Context) error {
	var req ArticleRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, ErrInvalidRequest)
	}

	if err := h.authorize(c, req.Password); err != nil {
		return h.handleError(c, err)
	}

	if req.ID <= 0 {
		return h.handleError(c, &content.ValidationError{Field: "id"})
	}

	err := h.articles.Delete(c.Request().Context(), int(req.ID))
	metrics.Mutations.WithLabelValues("articles", actionDelete, metrics.Result(err)).Inc()
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "News deleted successfully"})
}

// InterviewAction handles POST /api/v1/interviews/:action
// @Summary Mutate interviews
// @Description Creates or updates (save), deletes (delete) an interview or uploads an interview image (upload). Every action requires the admin password. save and delete answer with the whole collection.
// @Tags interviews
// @Accept json,x-www-form-urlencoded,multipart/form-data
// @Produce json
// @Param action path string true "save, delete or upload"
// @Param X-Admin-Password header string false "Admin password, alternative to the password field"
// @Param request body rest.InterviewRequest false "Interview fields (save, delete)"
// @Success 200 {object} rest.Response
// @Failure 400,403,404,409,429,500 {object} rest.Response
// @Router /api/v1/interviews/{action} [post]
func (h *Handler) InterviewAction(c echo.Context) error {
	switch c.Param("action") {
	case actionSave:
		return h.saveInterview(c)
	case actionDelete:
		return h.deleteInterview(c)
	case actionUpload:
		return h.upload(c, "interviews")
	}

	return h.handleError(c, ErrInvalidAction)
}

func (h *Handler) saveInterview(c echo.Context) error {
	var req InterviewRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, ErrInvalidRequest)
	}

	if err := h.authorize(c, req.Password); err != nil {
		return h.handleError(c, err)
	}

	interviews, err := h.interviews.Save(c.Request().Context(), int(req.ID), req.ToModel())
	metrics.Mutations.WithLabelValues("interviews", operation(req.ID), metrics.Result(err)).Inc()
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "Interview saved successfully", Data: interviews})
}

func (h *Handler) deleteInterview(c echo.Context) error {
	var req InterviewRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, ErrInvalidRequest)
	}

	if err := h.authorize(c, req.Password); err != nil {
		return h.handleError(c, err)
	}

	if req.ID <= 0 {
		return h.handleError(c, &content.ValidationError{Field: "id"})
	}

	interviews, err := h.interviews.Delete(c.Request().Context(), int(req.ID))
	metrics.Mutations.WithLabelValues("interviews", actionDelete, metrics.Result(err)).Inc()
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "Interview deleted successfully", Data: interviews})
}

// upload stores the multipart "image" field. The credential is checked before
// the file is looked at.
func (h *Handler) upload(c echo.Context, collection string) error {
	if err := h.authorize(c, c.FormValue("password")); err != nil {
		return h.handleError(c, err)
	}

	path, err := h.storeUpload(c.Request().Context(), c)
	metrics.AssetUploads.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return h.handleError(c, err)
	}

	h.log.Info("image uploaded", "collection", collection, "path", path)

	return c.JSON(http.StatusOK, Response{Success: true, Message: "File uploaded successfully", Path: path})
}

func (h *Handler) storeUpload(ctx context.Context, c echo.Context) (string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return "", assets.ErrTooLarge
	} else if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoFile, err)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoFile, err)
	}
	defer f.Close()

	return h.assets.Store(ctx, f, fh.Filename, fh.Header.Get(echo.HeaderContentType), fh.Size)
}

// Articles handles GET /api/v1/articles
// @Summary List articles
// @Description Articles newest first, optionally filtered by category. Without page the whole collection is returned.
// @Tags articles
// @Produce json
// @Param category query string false "Filter by category"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} rest.Response{data=[]content.Article}
// @Failure 400,500 {object} rest.Response
// @Router /api/v1/articles [get]
func (h *Handler) Articles(c echo.Context) error {
	var req ArticlesRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, ErrInvalidRequest)
	}

	ctx := c.Request().Context()

	if req.Page == nil && req.PageSize == nil {
		list, err := h.articles.ArticlesByCategory(ctx, req.Category)
		if err != nil {
			return h.handleError(c, err)
		}
		return c.JSON(http.StatusOK, Response{Success: true, Data: list})
	}

	page, pageSize := 1, defaultPageSize
	if req.Page != nil {
		page = *req.Page
	}
	if req.PageSize != nil {
		pageSize = min(*req.PageSize, maxPageSize)
	}
	if page < 1 {
		return h.handleError(c, fmt.Errorf("%w: page must be greater than 0", ErrInvalidRequest))
	}
	if pageSize < 1 {
		return h.handleError(c, fmt.Errorf("%w: pageSize must be greater than 0", ErrInvalidRequest))
	}

	list, err := h.articles.ArticlesByFilter(ctx, req.Category, page, pageSize)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// Interviews handles GET /api/v1/interviews
// @Summary List interviews
// @Description Interviews newest first by createdAt, optionally only those carrying a label.
// @Tags interviews
// @Produce json
// @Param limit query int false "Maximum number of interviews"
// @Param label query string false "Filter by label"
// @Success 200 {object} rest.Response{data=[]content.Interview}
// @Failure 400,500 {object} rest.Response
// @Router /api/v1/interviews [get]
func (h *Handler) Interviews(c echo.Context) error {
	var req InterviewsRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, ErrInvalidRequest)
	}

	limit := 0
	if req.Limit != nil {
		limit = *req.Limit
	}

	list, err := h.interviews.LatestInterviews(c.Request().Context(), limit, req.Label)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// NewsDocument handles GET /data/news.json with the document as the site reads it.
func (h *Handler) NewsDocument(c echo.Context) error {
	articles, err := h.articles.Articles(c.Request().Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, content.NewsDocument{Articles: articles})
}

// InterviewsDocument handles GET /data/interviews.json.
func (h *Handler) InterviewsDocument(c echo.Context) error {
	interviews, err := h.interviews.Interviews(c.Request().Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, interviews)
}

func operation(id RecordID) string {
	if id == 0 {
		return "create"
	}
	return "update"
}
