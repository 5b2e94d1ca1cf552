package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	applex "github.com/0Calories/kotoba-plus/internal/application/lexicon"
	"github.com/0Calories/kotoba-plus/internal/domain/analyst"
	"github.com/0Calories/kotoba-plus/internal/domain/lexicon"
	"github.com/0Calories/kotoba-plus/internal/logger"
	"github.com/0Calories/kotoba-plus/internal/middleware"
)

// client-facing messages; details stay in the logs
const (
	msgInvalidBody   = "Invalid request body"
	msgWordRequired  = "Word is required"
	msgAnalyzeFailed = "Failed to analyze word"
)

type Router struct {
	svc *applex.Service
}

// Options for NewRouter
type Options struct {
	AllowedOrigins []string
	Dependencies   []middleware.Dependency
}

func NewRouter(svc *applex.Service, opt Options) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.MetricsMiddleware)

	origins := opt.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opt.Dependencies))
	mux.Get("/readyz", middleware.ReadinessHandler(opt.Dependencies))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/api/analyze", r.wrap(r.handleAnalyze))

	mux.Route("/v1/analyses", func(rt chi.Router) {
		rt.Get("/", r.wrap(r.handleAnalysisList))
		rt.Get("/{id}", r.wrap(r.handleAnalysisGet))
	})

	return mux
}

// httpError is a failure with a fixed client message
type httpError struct {
	status int
	msg    string
	err    error
}

func (e *httpError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *httpError) Unwrap() error { return e.err }

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var he *httpError
		switch {
		case errors.As(err, &he):
			writeError(w, he.status, he.msg)
		case errors.Is(err, analyst.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, applex.ErrHistoryDisabled):
			writeError(w, http.StatusServiceUnavailable, "history disabled")
		default:
			logger.Named(req.Context(), "httpserver").Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

type analyzeRequest struct {
	Word string `json:"word" validate:"required,notblank"`
}

// POST /api/analyze
// Body: {"word": "<word>"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	body, err := middleware.DecodeJSON[analyzeRequest](req)
	if err != nil {
		var fe *middleware.FieldError
		if errors.As(err, &fe) || isWordTypeError(err) {
			return &httpError{status: http.StatusBadRequest, msg: msgWordRequired, err: err}
		}
		return &httpError{status: http.StatusBadRequest, msg: msgInvalidBody, err: err}
	}

	done := middleware.AnalysisStarted()
	res, err := r.svc.Analyze(req.Context(), body.Word)
	kind := lexicon.KindOf(err)
	done(string(kind))

	switch kind {
	case lexicon.KindNone:
		return writeJSON(w, http.StatusOK, res)
	case lexicon.KindValidation:
		return &httpError{status: http.StatusBadRequest, msg: msgWordRequired, err: err}
	default:
		// the service already logged stage, kind and provider details
		return &httpError{status: http.StatusInternalServerError, msg: msgAnalyzeFailed, err: err}
	}
}

// isWordTypeError reports a word that is present but not a string
func isWordTypeError(err error) bool {
	var te *json.UnmarshalTypeError
	return errors.As(err, &te) && te.Field == "word"
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleAnalysisList(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	page = middleware.ValidatePage(page)
	size = middleware.ValidateLimit(size)

	list, err := r.svc.ListAnalyses(req.Context(), page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"items":     list,
		"page":      page,
		"page_size": size,
	})
}

// GET /v1/analyses/{id}
func (r *Router) handleAnalysisGet(w http.ResponseWriter, req *http.Request) error {
	a, err := r.svc.GetAnalysis(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}
