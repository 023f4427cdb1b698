// Package httpapi serves the search wire contract over chi: structured
// text queries plus voice and image uploads resolved through the AI
// collaborator and the query cache.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/domain"
	"github.com/webntricks/unisearch/internal/domain/query"
	domsearch "github.com/webntricks/unisearch/internal/domain/search"
	logpkg "github.com/webntricks/unisearch/internal/logger"
	"github.com/webntricks/unisearch/internal/metrics"
	"github.com/webntricks/unisearch/internal/transport/openai"
	healthuc "github.com/webntricks/unisearch/internal/usecase/health"
	"github.com/webntricks/unisearch/internal/usecase/querycache"
)

const (
	maxVoiceUpload = 20 << 20
	maxImageUpload = 10 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// QueryRunner executes a structured query.
type QueryRunner interface {
	Run(ctx context.Context, q query.StructuredQuery) (domsearch.Results, error)
}

// Assistant is the AI collaborator boundary. All methods return zero
// values on failure.
type Assistant interface {
	Transcribe(ctx context.Context, audio []byte, mime string) string
	ExtractQuery(ctx context.Context, text string) query.StructuredQuery
	AnalyzeImage(ctx context.Context, image []byte, mime string) openai.ImageLabels
}

// QueryCache memoizes AI-derived queries by media digest.
type QueryCache interface {
	Get(ctx context.Context, digest string) (query.StructuredQuery, bool)
	Put(ctx context.Context, digest string, q query.StructuredQuery, ttl time.Duration) error
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API server.
type Server struct {
	search    QueryRunner
	assistant Assistant
	cache     QueryCache
	health    HealthChecker
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search QueryRunner, assistant Assistant, cache QueryCache, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		search:    search,
		assistant: assistant,
		cache:     cache,
		health:    health,
		logger:    logger,
	}
}

// Router assembles the route tree with the standard middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Post("/api/search", s.runSearch)
	r.Post("/api/search/voice", s.voiceSearch)
	r.Post("/api/search/image", s.imageSearch)
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type searchResponse struct {
	Results domsearch.Results `json:"results"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// runSearch handles POST /api/search: a structured query in the body.
func (s *Server) runSearch(w http.ResponseWriter, r *http.Request) {
	var q query.StructuredQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respond(w, r, q)
}

// voiceSearch handles POST /api/search/voice: multipart audio under
// "file", transcribed and distilled into a structured query.
func (s *Server) voiceSearch(w http.ResponseWriter, r *http.Request) {
	audio, mime, ok := s.readUpload(w, r, "file", maxVoiceUpload, "audio too large (max 20MB)")
	if !ok {
		return
	}
	if mime == "" {
		mime = "audio/webm"
	}

	digest := querycache.Digest(audio)
	if cached, hit := s.cache.Get(r.Context(), digest); hit {
		s.respond(w, r, cached)
		return
	}

	transcript := s.assistant.Transcribe(r.Context(), audio, mime)
	if transcript == "" {
		writeError(w, http.StatusBadRequest, "could not transcribe audio")
		return
	}
	q := s.assistant.ExtractQuery(r.Context(), transcript)
	if q.Query == "" && len(q.Filters.Types) == 0 {
		writeError(w, http.StatusBadRequest, "could not extract query")
		return
	}

	if err := s.cache.Put(r.Context(), digest, q, querycache.TTLVoice); err != nil {
		s.logger.Warn("query cache write failed", zap.Error(err))
	}
	s.respond(w, r, q)
}

// imageSearch handles POST /api/search/image: multipart image under
// "image", analyzed into labels and folded into a structured query.
func (s *Server) imageSearch(w http.ResponseWriter, r *http.Request) {
	image, mime, ok := s.readUpload(w, r, "image", maxImageUpload, "image too large (max 10MB)")
	if !ok {
		return
	}
	if !allowedImageTypes[mime] {
		writeError(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	digest := querycache.Digest(image)
	if cached, hit := s.cache.Get(r.Context(), digest); hit {
		s.respond(w, r, cached)
		return
	}

	labels := s.assistant.AnalyzeImage(r.Context(), image, mime)
	if labels.Empty() {
		writeError(w, http.StatusBadRequest, "could not analyze image")
		return
	}
	q := openai.LabelsToQuery(labels)

	if err := s.cache.Put(r.Context(), digest, q, querycache.TTLImage); err != nil {
		s.logger.Warn("query cache write failed", zap.Error(err))
	}
	s.respond(w, r, q)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	code := http.StatusOK
	if report.Status != healthuc.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// respond runs a structured query and writes the wire response. Internal
// failure detail is logged, never exposed.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, q query.StructuredQuery) {
	results, err := s.search.Run(r.Context(), q)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, searchResponse{Results: results})
	case errors.Is(err, domain.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid query")
	default:
		logpkg.FromContext(r.Context()).Error("search failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "search service unavailable, please try again later")
	}
}

// readUpload extracts one multipart file field, enforcing the byte cap.
// On failure it writes the error response and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64, tooLarge string) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+4096)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusBadRequest, tooLarge)
		} else {
			writeError(w, http.StatusBadRequest, "no "+field+" upload")
		}
		return nil, "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no "+field+" upload")
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable "+field+" upload")
		return nil, "", false
	}
	if int64(len(data)) > limit {
		writeError(w, http.StatusBadRequest, tooLarge)
		return nil, "", false
	}

	return data, header.Header.Get("Content-Type"), true
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Message: msg})
}
