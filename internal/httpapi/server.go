package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classd/internal/dispatch"
	"classd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Classify(ctx context.Context, modes string, pdf []byte, traceName string) (types.ClassifyResponse, error)
	ClassifyURLs(urls []string) map[string]float64
	Models() []types.Endpoint
	Status() types.StatusResponse
	Ready() bool
}

// uploadField is the multipart form field carrying the PDF bytes.
const uploadField = "pdf_content"

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ModelsResponse{Models: svc.Models()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	// Static /url route is matched ahead of the {modes} parameter route.
	r.Post("/classify/research-pub/url", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.URLClassifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(req.URLs) == 0 {
			writeJSONError(w, http.StatusBadRequest, "urls is required")
			return
		}
		preds := svc.ClassifyURLs(req.URLs)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.URLClassifyResponse{Predictions: preds}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/classify/research-pub/{modes}", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "multipart/form-data") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be multipart/form-data")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		file, header, err := r.FormFile(uploadField)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, uploadField+" file is required")
			return
		}
		defer file.Close()
		pdf, err := io.ReadAll(file)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "failed to read upload")
			return
		}

		modes := chi.URLParam(r, "modes")
		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo {
			fields := map[string]any{"path": r.URL.Path, "modes": modes, "file": header.Filename, "bytes": len(pdf)}
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				fields["request_id"] = rid
			}
			logEvent(fields, "classify start")
		}

		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Classify(joinedCtx, modes, pdf, header.Filename)
		status := http.StatusOK
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			switch {
			case dispatch.IsEmptyMode(err):
				status = http.StatusBadRequest
			case dispatch.IsAllBackendsFailed(err):
				status = http.StatusBadGateway
			default:
				if he, ok := err.(HTTPError); ok {
					status = he.StatusCode()
				} else {
					status = http.StatusInternalServerError
				}
			}
			writeJSONError(w, status, err.Error())
		} else {
			w.Header().Set("Content-Type", "application/json")
			if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
				writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
				return
			}
		}
		if lvl >= LevelInfo {
			fields := map[string]any{"status": status, "dur": time.Since(start).String(), "modes": modes}
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				fields["request_id"] = rid
			}
			if err != nil {
				fields["err"] = err.Error()
			}
			logEvent(fields, "classify end")
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Swagger UI (enabled with -tags=swagger)
	MountSwagger(r)

	return r
}
