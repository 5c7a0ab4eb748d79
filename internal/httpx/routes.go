package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Predict *service.PredictService
	Submit  *service.SubmitService
	Queries *service.TaskQueryService
	Closure *service.ClosureService
	Health  HealthCheckers
	Logger  *slog.Logger // Optional
}

// HealthCheckers bundles the collaborators probed by the health endpoint.
type HealthCheckers struct {
	DB    interface{ PingContext(context.Context) error } // Optional
	Cache *core.ResultCache                               // Optional
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	predictHandlers := &PredictHandlers{Svc: services.Predict}
	taskHandlers := &TaskHandlers{Submit: services.Submit, Queries: services.Queries}
	closureHandlers := &ClosureHandlers{Svc: services.Closure}

	mux.HandleFunc("POST /predict", predictHandlers.Predict)
	mux.HandleFunc("POST /simple_predict", predictHandlers.SimplePredict)
	mux.HandleFunc("POST /async_predict", taskHandlers.AsyncPredict)
	mux.HandleFunc("GET /moderation_result/{task_id}", taskHandlers.ModerationResult)
	mux.HandleFunc("POST /close_ad", closureHandlers.CloseAd)
	mux.HandleFunc("GET /healthz", healthHandler(services.Health))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return requestLogging(logger, mux)
}

// healthHandler reports liveness plus reachability of the store and cache.
// Cache unreachability degrades the report but never the status code: the
// service still works without it.
func healthHandler(checkers HealthCheckers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok", "database": "ok", "cache": "ok"}
		code := http.StatusOK

		if checkers.DB != nil {
			if err := checkers.DB.PingContext(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		if err := checkers.Cache.Health(ctx); err != nil {
			status["cache"] = err.Error()
		}

		WriteJSON(w, code, status)
	}
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
