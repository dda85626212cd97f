// Package httpapi exposes the generation manager, the history and the viewer
// state as a local JSON API for UIs.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"forge3d/internal/generation"
	"forge3d/internal/genapi"
	"forge3d/internal/history"
	"forge3d/internal/viewer"
	"forge3d/pkg/types"
)

// Jobs is the generation manager as seen by the HTTP layer.
type Jobs interface {
	Start(ctx context.Context, in generation.Input) error
	Snapshot() generation.Snapshot
	Cancel() bool
	Reset() error
	Subscribe() (<-chan generation.Event, func())
}

// History is the history store as seen by the HTTP layer.
type History interface {
	List() []history.Entry
	Get(id string) (history.Entry, bool)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Import(ctx context.Context, src string) (history.Entry, error)
}

// Remote probes the generation service.
type Remote interface {
	Health(ctx context.Context) (genapi.HealthResponse, error)
}

// Services bundles the handlers' dependencies.
type Services struct {
	Jobs    Jobs
	History History
	Remote  Remote
	Viewer  *viewer.State
	// Samples lists the bundled sample models; nil means none.
	Samples func() ([]types.Asset, error)
}

func NewMux(svc Services) http.Handler {
	if svc.Viewer == nil {
		svc.Viewer = viewer.New()
	}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		methods := corsAllowedMethods
		if len(methods) == 0 {
			methods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
		}
		headers := corsAllowedHeaders
		if len(headers) == 0 {
			headers = []string{"Content-Type", "X-Log-Level", "X-Request-Id"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: methods,
			AllowedHeaders: headers,
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Remote != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if h, err := svc.Remote.Health(ctx); err == nil && strings.EqualFold(h.Status, "ok") {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("ready"))
				return
			}
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("remote unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/remote/health", remoteHealthHandler(svc.Remote))

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", createJobHandler(svc.Jobs))
		r.Get("/current", currentJobHandler(svc.Jobs))
		r.Delete("/current", cancelJobHandler(svc.Jobs))
		r.Post("/current/reset", resetJobHandler(svc.Jobs))
	})
	r.Get("/events", eventsHandler(svc.Jobs))

	r.Route("/history", func(r chi.Router) {
		r.Get("/", listHistoryHandler(svc.History))
		r.Delete("/", clearHistoryHandler(svc.History))
		r.Post("/import", importHandler(svc.History))
		r.Patch("/{id}", renameHandler(svc.History))
		r.Delete("/{id}", deleteEntryHandler(svc.History))
	})

	r.Get("/samples", samplesHandler(svc.Samples))

	r.Route("/viewer", func(r chi.Router) {
		r.Get("/", viewerStateHandler(svc.Viewer))
		r.Post("/load", viewerLoadHandler(svc.Viewer, svc.History))
		r.Post("/rotate", viewerRotateHandler(svc.Viewer))
		r.Post("/scale", viewerScaleHandler(svc.Viewer))
		r.Post("/reset", viewerResetHandler(svc.Viewer))
	})

	MountSwagger(r)
	return r
}

// decodeJSON enforces the content type and body size, then decodes into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// @Summary      Remote service health
// @Tags         remote
// @Produce      json
// @Success      200  {object}  types.RemoteHealth
// @Failure      502  {object}  types.ErrorResponse
// @Router       /remote/health [get]
func remoteHealthHandler(remote Remote) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if remote == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "remote service not configured")
			return
		}
		h, err := remote.Health(r.Context())
		if err != nil {
			zlog.Warn().Err(err).Msg("remote health failed")
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, remoteHealthView(h))
	}
}
