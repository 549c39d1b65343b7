// Package adminapi is the JSON-over-HTTP surface for content mutation, tool
// invocation, and the context document. Every write path the system has
// flows through it, and every mutating handler emits its content event
// before responding, which is what makes the context cache's invalidation
// list exhaustive.
package adminapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/assistant"
	"netpress/internal/infra/netcontext"
	"netpress/internal/infra/telemetry"
	"netpress/internal/infra/tools"
)

// ContentStore is the mutable platform surface the API serves. The SQLite
// store satisfies it.
type ContentStore interface {
	domain.Platform

	CreateSite(ctx context.Context, site domain.Site) (domain.Site, error)
	UpdateSite(ctx context.Context, site domain.Site) (domain.Site, error)
	DeleteSite(ctx context.Context, id int64) error

	CreatePost(ctx context.Context, post domain.Post) (domain.Post, error)
	UpdatePost(ctx context.Context, post domain.Post) (domain.Post, error)
	DeletePost(ctx context.Context, siteID, postID int64) error
	PostByID(ctx context.Context, siteID, postID int64) (domain.Post, error)
	Posts(ctx context.Context, siteID int64) ([]domain.Post, error)
	SetPostMeta(ctx context.Context, siteID, postID int64, meta map[string][]string) error

	CreateTerm(ctx context.Context, term domain.Term) (domain.Term, error)
	UpdateTerm(ctx context.Context, term domain.Term) (domain.Term, error)
	DeleteTerm(ctx context.Context, siteID, termID int64) error
	Terms(ctx context.Context, siteID int64, taxonomy string) ([]domain.Term, error)
	SetPostTerms(ctx context.Context, siteID, postID int64, termIDs []int64) error

	SetSiteOption(ctx context.Context, siteID int64, name, value string) error
}

// Deps wires the server. Metrics and Assistant may be nil.
type Deps struct {
	Store     ContentStore
	Emitter   domain.ContentEmitter
	Invoker   *tools.Invoker
	Registry  *domain.Registry
	Cache     *netcontext.Cache
	Assistant *assistant.Assistant
	Metrics   domain.Metrics
	Health    telemetry.HealthFunc
	Logger    *zap.Logger
}

type Server struct {
	cfg  domain.AdminConfig
	deps Deps
	log  *zap.Logger
}

func NewServer(cfg domain.AdminConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NewNoopMetrics()
	}
	return &Server{cfg: cfg, deps: deps, log: logger.Named("adminapi")}
}

// Router builds the gin engine. Exposed separately so tests can drive the
// handlers without a listener.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(s.requestMiddleware())
	router.Use(gin.Recovery())

	router.GET("/healthz", gin.WrapH(telemetry.HealthHandler(s.deps.Health)))

	api := router.Group("/api/v1")
	{
		api.GET("/sites", s.listSites)
		api.POST("/sites", s.createSite)
		api.PATCH("/sites/:id", s.updateSite)
		api.DELETE("/sites/:id", s.deleteSite)
		api.PUT("/sites/:id/options/:key", s.setSiteOption)

		api.GET("/sites/:id/posts", s.listPosts)
		api.POST("/sites/:id/posts", s.createPost)
		api.PATCH("/sites/:id/posts/:postID", s.updatePost)
		api.DELETE("/sites/:id/posts/:postID", s.deletePost)
		api.PUT("/sites/:id/posts/:postID/terms", s.setPostTerms)
		api.PUT("/sites/:id/posts/:postID/meta", s.setPostMeta)

		api.GET("/sites/:id/terms", s.listTerms)
		api.POST("/sites/:id/terms", s.createTerm)
		api.PATCH("/sites/:id/terms/:termID", s.updateTerm)
		api.DELETE("/sites/:id/terms/:termID", s.deleteTerm)

		api.GET("/tools", s.listTools)
		api.POST("/tools/:name", s.invokeTool)

		api.GET("/context", s.getContext)
		api.DELETE("/context", s.invalidateContext)

		api.POST("/ask", s.ask)
	}
	return router
}

// Run serves until ctx is canceled, then shuts down gracefully. It blocks.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("admin api listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("admin api failed to start: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Error("admin api shutdown error", zap.Error(err))
			return err
		}
		s.log.Info("admin api stopped")
		return nil
	}
}

// requestMiddleware attaches correlation from the x-job-id header, applies
// the request timeout, and observes the request.
func (s *Server) requestMiddleware() gin.HandlerFunc {
	timeout := time.Duration(s.cfg.RequestTimeoutSeconds) * time.Second
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		ctx, meta := telemetry.EnsureJobMeta(ctx, c.GetHeader(telemetry.JobIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(telemetry.JobIDHeader, meta.JobID)

		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.deps.Metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(started))
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps the flat error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code, _ := domain.CodeFrom(err)
	switch code {
	case domain.CodeInvalidArgument:
		status = http.StatusBadRequest
	case domain.CodeNotFound, domain.CodeSiteUnresolved:
		status = http.StatusNotFound
	case domain.CodeNetworkDisabled:
		status = http.StatusConflict
	case domain.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, errorBody{Error: err.Error(), Code: string(code)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: string(domain.CodeInvalidArgument)})
}

func (s *Server) emit(event domain.ContentEvent) {
	if s.deps.Emitter != nil {
		s.deps.Emitter.EmitContentEvent(event)
	}
}
