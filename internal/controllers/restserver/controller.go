package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/pcfseg/internal/constants"
	"github.com/chrissnell/pcfseg/internal/log"
	"github.com/chrissnell/pcfseg/internal/perarm"
	"github.com/chrissnell/pcfseg/internal/storage"
	"github.com/chrissnell/pcfseg/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	cfg        *config.ConfigData
	restConfig config.RESTServerData
	Server     http.Server
	store      storage.Store
	exec       perarm.Executor
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller. store may be nil, in
// which case runs are not persisted. exec runs the per-arm tasks of each
// request; nil runs them on the request goroutine.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, store storage.Store, exec perarm.Executor, logger *zap.SugaredLogger) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("REST server requires a configuration")
	}
	logger = log.OrNop(logger)

	rc := cfg.REST
	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}

	if rc.MaxSeriesLength == 0 {
		rc.MaxSeriesLength = config.DefaultMaxSeriesLength
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		cfg:        cfg,
		restConfig: rc,
		store:      store,
		exec:       exec,
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server and stops it when the controller
// context is cancelled.
func (c *Controller) StartController() error {
	c.logger.Infof("starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("shutting down the REST server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the router serving every endpoint.
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.loggingMiddleware)

	api := router.PathPrefix(constants.APIPrefix).Subrouter()
	api.HandleFunc("/segment", c.handlers.PostSegment).Methods(http.MethodPost)
	api.HandleFunc("/arms", c.handlers.PostArms).Methods(http.MethodPost)
	api.HandleFunc("/runs/{id}", c.handlers.GetRun).Methods(http.MethodGet)
	api.HandleFunc("/status", c.handlers.GetStatus).Methods(http.MethodGet)

	// The subrouter reports method mismatches itself, so both need handlers.
	notAllowed := http.HandlerFunc(c.handlers.MethodNotAllowed)
	notFound := http.HandlerFunc(c.handlers.NotFound)
	router.MethodNotAllowedHandler = notAllowed
	router.NotFoundHandler = notFound
	api.MethodNotAllowedHandler = notAllowed
	api.NotFoundHandler = notFound

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (c *Controller) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		c.logger.Debugw("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
