package rest

import (
	"net"
	"net/http"

	_ "github.com/daniilsolovey/sitecontent/docs"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

const (
	apiV1Prefix = "/api/v1"

	articlesPath   = "/articles"
	interviewsPath = "/interviews"
	actionSuffix   = "/:action"

	newsDocumentPath       = "/data/news.json"
	interviewsDocumentPath = "/data/interviews.json"

	healthPath  = "/health"
	metricsPath = "/metrics"
	swaggerPath = "/swagger/doc.json"
	rpcPath     = "/rpc/"
)

// Options configures the parts of the router that come from configuration.
type Options struct {
	PublicDir string
	BodyLimit string
	RateLimit float64
	RateBurst int
	// TrustedProxies may set X-Forwarded-For. Without any the client IP is
	// the peer address and forwarding headers are ignored.
	TrustedProxies []*net.IPNet

	// RPC is mounted at /rpc/ when set.
	RPC http.Handler
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes builds the echo engine with every route of the service.
func (h *Handler) RegisterRoutes(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = h.HTTPErrorHandler
	e.IPExtractor = ipExtractor(opts.TrustedProxies)

	e.Use(middleware.Recover())
	e.Use(h.loggingMiddleware)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, passwordHeader},
	}))
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	h.registerAPIRoutes(e, opts)
	h.registerServiceRoutes(e, opts)

	if opts.PublicDir != "" {
		e.Static("/", opts.PublicDir)
	}

	return e
}

func (h *Handler) registerAPIRoutes(e *echo.Echo, opts Options) {
	api := e.Group(apiV1Prefix)

	api.GET(articlesPath, h.Articles)
	api.GET(interviewsPath, h.Interviews)

	limiter := newClientLimiter(opts.RateLimit, opts.RateBurst)
	admin := api.Group("", h.rateLimitMiddleware(limiter))
	admin.POST(articlesPath+actionSuffix, h.ArticleAction)
	admin.POST(interviewsPath+actionSuffix, h.InterviewAction)

	// mutations are POST only, also when a static file route would match
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		api.Add(method, articlesPath+actionSuffix, methodNotAllowed)
		api.Add(method, interviewsPath+actionSuffix, methodNotAllowed)
	}

	e.GET(newsDocumentPath, h.NewsDocument)
	e.GET(interviewsDocumentPath, h.InterviewsDocument)
}

func (h *Handler) registerServiceRoutes(e *echo.Echo, opts Options) {
	e.GET(healthPath, h.handleHealth)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET(metricsPath, echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	e.GET(swaggerPath, h.handleSwagger)

	if opts.RPC != nil {
		e.POST(rpcPath, echo.WrapHandler(opts.RPC))
		e.GET(rpcPath, echo.WrapHandler(opts.RPC))
	}
}

func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}

	trust := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, ipNet := range trusted {
		trust = append(trust, echo.TrustIPRange(ipNet))
	}

	return echo.ExtractIPFromXFFHeader(trust...)
}

func methodNotAllowed(echo.Context) error {
	return echo.ErrMethodNotAllowed
}

func (h *Handler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSwagger(c echo.Context) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		h.log.Error("failed to read swagger doc", "error", err)
		return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "internal error"})
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, []byte(doc))
}
