package server

import (
	"log/slog"
	"net/http"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/netutil/httputil"
	"github.com/MrEthical07/fittrack"
	"github.com/MrEthical07/fittrack/internal/stores"
	"github.com/MrEthical07/fittrack/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config is the configuration of a [Server].
type Config struct {
	// Engine issues and resolves sessions.  It must not be nil.
	Engine *fittrack.Engine

	// Store is the data layer.  It must not be nil.
	Store *stores.Store

	// Logger is used for request logs and handler errors.  Nil means a
	// discard logger.
	Logger *slog.Logger

	// Registry receives the HTTP metrics and is served on /metrics.  Nil
	// means a fresh registry.
	Registry *prometheus.Registry
}

// Server is the HTTP API.  It implements [http.Handler].
type Server struct {
	engine   *fittrack.Engine
	store    *stores.Store
	logger   *slog.Logger
	validate *validator.Validate
	registry *prometheus.Registry
	metrics  *httpMetrics
	handler  http.Handler
}

// type check
var _ http.Handler = (*Server)(nil)

// New returns a server with every route registered.
func New(c *Config) (s *Server) {
	l := c.Logger
	if l == nil {
		l = slogutil.NewDiscardLogger()
	}

	reg := c.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s = &Server{
		engine:   c.Engine,
		store:    c.Store,
		logger:   l,
		validate: newValidator(),
		registry: reg,
	}

	mux := http.NewServeMux()
	s.route(mux)
	s.metrics = newHTTPMetrics(reg, mux)

	s.handler = withMiddlewares(
		mux,
		&recoverMiddleware{logger: l},
		httputil.NewLogMiddleware(l, slog.LevelDebug),
		s.metrics,
		requestInfoMiddleware{},
	)

	return s
}

// ServeHTTP implements the [http.Handler] interface for *Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Route pattern constants.
const (
	routePatternLogin          = http.MethodPost + " /login"
	routePatternLogout         = http.MethodPost + " /logout/{userId}"
	routePatternListUsers      = http.MethodGet + " /users"
	routePatternGetMe          = http.MethodGet + " /users/me"
	routePatternGetUser        = http.MethodGet + " /users/{userId}"
	routePatternCreateUser     = http.MethodPost + " /users/create"
	routePatternUpdateUser     = http.MethodPatch + " /users/{userId}"
	routePatternChangePassword = http.MethodPost + " /users/{userId}/change-password"
	routePatternListWeights    = http.MethodGet + " /users/{userId}/weights"
	routePatternAddWeight      = http.MethodPost + " /users/{userId}/weights"
	routePatternListWorkouts   = http.MethodGet + " /users/{userId}/workouts"
	routePatternCreateWorkout  = http.MethodPost + " /users/{userId}/workouts"
	routePatternListFoods      = http.MethodGet + " /foods"
	routePatternCreateFood     = http.MethodPost + " /foods"
	routePatternListExercises  = http.MethodGet + " /exercises"
	routePatternCreateExercise = http.MethodPost + " /exercises"
	routePatternHealth         = http.MethodGet + " /healthz"
	routePatternMetrics        = http.MethodGet + " /metrics"
)

// gate is the access level a route requires.
type gate uint8

const (
	gateNone gate = iota
	gateSession
	gateAdmin
)

// route registers all handlers in mux.
func (s *Server) route(mux *http.ServeMux) {
	routes := []struct {
		handler http.HandlerFunc
		pattern string
		gate    gate
	}{
		{s.handleLogin, routePatternLogin, gateNone},
		{s.handleLogout, routePatternLogout, gateSession},
		{s.handleListUsers, routePatternListUsers, gateAdmin},
		{s.handleGetMe, routePatternGetMe, gateSession},
		{s.handleGetUser, routePatternGetUser, gateAdmin},
		{s.handleCreateUser, routePatternCreateUser, gateAdmin},
		{s.handleUpdateUser, routePatternUpdateUser, gateSession},
		{s.handleChangePassword, routePatternChangePassword, gateSession},
		{s.handleListWeights, routePatternListWeights, gateSession},
		{s.handleAddWeight, routePatternAddWeight, gateSession},
		{s.handleListWorkouts, routePatternListWorkouts, gateSession},
		{s.handleCreateWorkout, routePatternCreateWorkout, gateSession},
		{s.handleListFoods, routePatternListFoods, gateAdmin},
		{s.handleCreateFood, routePatternCreateFood, gateSession},
		{s.handleListExercises, routePatternListExercises, gateAdmin},
		{s.handleCreateExercise, routePatternCreateExercise, gateAdmin},
		{s.handleHealth, routePatternHealth, gateNone},
	}

	requireSession := middleware.RequireSession(s.engine, s.logger)
	for _, rt := range routes {
		var h http.Handler = rt.handler
		switch rt.gate {
		case gateAdmin:
			h = requireSession(middleware.RequireAdmin(h))
		case gateSession:
			h = requireSession(h)
		}

		mux.Handle(rt.pattern, h)
	}

	mux.Handle(routePatternMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}
