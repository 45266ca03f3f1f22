package httpx

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/splax/shiftwatch/internal/service/activity"
	"github.com/splax/shiftwatch/internal/service/admin"
	"github.com/splax/shiftwatch/internal/service/analytics"
	"github.com/splax/shiftwatch/internal/service/auth"
	"github.com/splax/shiftwatch/internal/service/employee"
	"github.com/splax/shiftwatch/internal/service/project"
	"github.com/splax/shiftwatch/internal/service/screenshot"
	"github.com/splax/shiftwatch/internal/service/shift"
	"github.com/splax/shiftwatch/internal/service/task"
	"github.com/splax/shiftwatch/internal/service/team"
)

// Services groups the application services the router dispatches to.
type Services struct {
	Auth       auth.Service
	Admin      admin.Service
	Employee   employee.Service
	Team       team.Service
	Project    project.Service
	Task       task.Service
	Shift      shift.Service
	Analytics  analytics.Service
	Screenshot screenshot.Service
	Activity   activity.Service
}

// Options tunes the HTTP surface.
type Options struct {
	APIPrefix      string
	CORSOrigins    []string
	DBHealth       func(context.Context) error
	WriteTimeout   time.Duration
	StreamInterval time.Duration
}

// Router wires HTTP endpoints to services.
type Router struct {
	mux       chi.Router
	logger    *slog.Logger
	auth      auth.Service
	admins    admin.Service
	employees employee.Service
	teams     team.Service
	projects  project.Service
	tasks     task.Service
	shifts    shift.Service
	analytics analytics.Service
	shots     screenshot.Service
	activity  activity.Service
	upgrader  websocket.Upgrader
	limiter   RateLimiter
	validate  *validator.Validate
	metrics   *metrics
	dbHealth  func(context.Context) error
	opts      Options
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitLogin     = 12
	rateLimitAPI       = 600
	rateLimitStream    = 30
	healthCheckTimeout = 2 * time.Second
	defaultHeartbeat   = 25 * time.Second
	requestIDHeader    = "X-Request-ID"
)

// NewRouter assembles routes with dependencies. A nil limiter falls back to the in-memory one.
func NewRouter(logger *slog.Logger, svc Services, limiter RateLimiter, opts Options) *Router {
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}
	if opts.StreamInterval <= 0 {
		opts.StreamInterval = defaultHeartbeat
	}
	r := &Router{
		mux:       chi.NewRouter(),
		logger:    logger,
		auth:      svc.Auth,
		admins:    svc.Admin,
		employees: svc.Employee,
		teams:     svc.Team,
		projects:  svc.Project,
		tasks:     svc.Task,
		shifts:    svc.Shift,
		analytics: svc.Analytics,
		shots:     svc.Screenshot,
		activity:  svc.Activity,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(opts.CORSOrigins),
		},
		limiter:  limiter,
		validate: newValidator(),
		metrics:  newMetrics(),
		dbHealth: opts.DBHealth,
		opts:     opts,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.Use(requestID, r.audit, cors.Handler(cors.Options{
		AllowedOrigins:   r.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.mux.Get("/healthz", r.handleHealthz)
	r.mux.Method(http.MethodGet, "/metrics", r.metrics.handler())

	r.mux.Group(func(stream chi.Router) {
		stream.Use(r.requireStreamAuth, r.rateLimit(rateLimitStream, rateWindowRealtime, rateLimitKeyPrincipal))
		stream.Get("/ws/activity", r.handleActivityWS)
		stream.Get("/events/activity", r.handleActivitySSE)
	})

	r.mux.Route(r.opts.APIPrefix, func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Use(r.rateLimit(rateLimitLogin, rateWindowDefault, rateLimitKeyIP))
			ar.Post("/login", r.handleLogin)
			ar.Post("/admin/login", r.handleAdminLogin)
			ar.Post("/admin/api-key", r.handleAdminAPIKey)
		})

		api.Group(func(pr chi.Router) {
			pr.Use(r.requireAuth, r.rateLimit(rateLimitAPI, rateWindowDefault, rateLimitKeyPrincipal))

			pr.Route("/admin", func(c chi.Router) {
				c.Post("/", r.handleAdminCreate)
				c.Get("/", r.handleAdminList)
				c.Get("/{id}", r.handleAdminGet)
				c.Put("/{id}", r.handleAdminUpdate)
				c.Delete("/{id}", r.handleAdminDelete)
			})
			pr.Route("/employee", func(c chi.Router) {
				c.Post("/", r.handleEmployeeCreate)
				c.Get("/", r.handleEmployeeList)
				c.Get("/{id}", r.handleEmployeeGet)
				c.Put("/{id}", r.handleEmployeeUpdate)
				c.Post("/{id}/set-password", r.handleEmployeeSetPassword)
				c.Put("/deactivate/{id}", r.handleEmployeeDeactivate)
			})
			pr.Route("/team", func(c chi.Router) {
				c.Post("/", r.handleTeamCreate)
				c.Get("/", r.handleTeamList)
				c.Get("/{id}", r.handleTeamGet)
			})
			pr.Route("/project", func(c chi.Router) {
				c.Post("/", r.handleProjectCreate)
				c.Get("/", r.handleProjectList)
				c.Get("/{id}", r.handleProjectGet)
				c.Put("/{id}", r.handleProjectUpdate)
				c.Delete("/{id}", r.handleProjectDelete)
			})
			pr.Route("/task", func(c chi.Router) {
				c.Post("/", r.handleTaskCreate)
				c.Get("/", r.handleTaskList)
				c.Get("/{id}", r.handleTaskGet)
				c.Put("/{id}", r.handleTaskUpdate)
				c.Delete("/{id}", r.handleTaskDelete)
			})
			pr.Route("/time-tracking", func(c chi.Router) {
				c.Route("/shift", func(sc chi.Router) {
					sc.Post("/", r.handleShiftCreate)
					sc.Get("/", r.handleShiftList)
					sc.Get("/{id}", r.handleShiftGet)
					sc.Put("/{id}", r.handleShiftUpdate)
					sc.Delete("/{id}", r.handleShiftDelete)
				})
				c.Get("/analytics/project-time", r.handleProjectTime)
			})
			pr.Route("/analytics/screenshot", func(c chi.Router) {
				c.Post("/", r.handleScreenshotCreate)
				c.Get("/", r.handleScreenshotList)
				c.Get("/paginate", r.handleScreenshotPaginate)
				c.Delete("/{id}", r.handleScreenshotDelete)
			})
		})
	})
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

// requestID propagates or mints the request id header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimSpace(req.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
			req.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, req)
	})
}

func (r *Router) audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		route := routePattern(req)
		r.recordRequestMetrics(req.Method, route, status, duration)

		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"route", route,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get(requestIDHeader)); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if p, ok := principalFromContext(ctx); ok {
			actor = string(p.Kind)
			fields = append(fields, "principal_id", p.ID, "organization_id", p.OrganizationID, "token_kind", string(p.TokenKind))
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		// Upgraded connections report 101 in the audit line.
		sr.status = http.StatusSwitchingProtocols
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

// originChecker mirrors the CORS allow-list for websocket upgrades. An empty list only admits same-origin or non-browser clients.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			wildcard = true
		}
		set[origin] = struct{}{}
	}
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		if _, ok := set[strings.TrimRight(origin, "/")]; ok {
			return true
		}
		return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://"), req.Host)
	}
}
