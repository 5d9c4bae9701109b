package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/daniilsolovey/sitecontent/internal/assets"
	"github.com/daniilsolovey/sitecontent/internal/content"
	"github.com/daniilsolovey/sitecontent/internal/db"
	"github.com/labstack/echo/v4"
)

var (
	ErrInvalidCredential = errors.New("invalid password")
	ErrInvalidAction     = errors.New("invalid action")
	ErrNoFile            = errors.New("no file uploaded or upload error")
	ErrInvalidRequest    = errors.New("invalid request parameters")
)

// statusOf maps a failure onto the HTTP status and the message shown to the
// client. Anything unexpected is reported generically.
func statusOf(err error) (int, string) {
	var verr *content.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, ErrInvalidCredential):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, ErrNoFile):
		return http.StatusBadRequest, ErrNoFile.Error()
	case errors.Is(err, assets.ErrTooLarge):
		return http.StatusBadRequest, assets.ErrTooLarge.Error()
	case errors.Is(err, ErrInvalidAction), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, assets.ErrUnsupportedType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, db.ErrConflict):
		return http.StatusConflict, "content was changed by another request, reload and try again"
	}

	return http.StatusInternalServerError, "internal error"
}

func (h *Handler) handleError(c echo.Context, err error) error {
	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("handleError", "error", err, "statusCode", status, "path", c.Path())
	} else {
		h.log.Warn("handleError", "error", err, "statusCode", status, "path", c.Path())
	}

	return c.JSON(status, Response{Success: false, Message: message})
}

// HTTPErrorHandler renders echo's own errors (unknown route, wrong method,
// body too large, panics) in the same envelope as the handlers do.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// the body limit trips before the upload handler can report the asset limit
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) && isUpload(c) {
		if werr := h.handleError(c, assets.ErrTooLarge); werr != nil {
			h.log.Error("failed to write error response", "error", werr)
		}
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	} else {
		h.log.Error("unhandled error", "error", err, "path", c.Request().URL.Path)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, Response{Success: false, Message: message})
	}
	if werr != nil {
		h.log.Error("failed to write error response", "error", werr)
	}
}

func isUpload(c echo.Context) bool {
	return c.Param("action") == actionUpload ||
		strings.HasSuffix(c.Request().URL.Path, "/"+actionUpload)
}
