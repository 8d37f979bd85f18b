package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/sentinel-ai/internal/application/analysis"
	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
	"github.com/bryanwahyu/sentinel-ai/internal/middleware"
)

const (
	notConfiguredDetail = "Gemini API key is not configured on the server."
	uploadField         = "file"
	// multipart framing on top of the file itself
	multipartOverhead = 1 << 20
)

// Options bounds request sizes and configures CORS.
type Options struct {
	MaxBodyBytes   int64
	MaxUploadBytes int64
	AllowedOrigins []string
}

type Router struct {
	svc     *appanalysis.Service
	metrics *middleware.Metrics
	logger  *slog.Logger
	opts    Options
}

func NewRouter(svc *appanalysis.Service, metrics *middleware.Metrics, logger *slog.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = middleware.NewMetrics()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{svc: svc, metrics: metrics, logger: logger, opts: opts}

	mux := chi.NewRouter()
	mux.Use(
		middleware.RequestID,
		metrics.Middleware,
		middleware.Logging(logger),
		chimw.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           600,
		}),
	)

	mux.Get("/", r.handleRoot)
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler(map[string]middleware.HealthChecker{
		"model": middleware.CheckFunc(r.checkModel),
	}))
	mux.Method(http.MethodGet, "/metrics", metrics.Handler())

	jsonBody := mux.With(middleware.LimitBody(opts.MaxBodyBytes))
	jsonBody.Post("/analyze", r.wrap(domain.KindText, r.handleAnalyze))
	jsonBody.Post("/analyze-url", r.wrap(domain.KindURL, r.handleAnalyzeURL))

	var uploadLimit int64
	if opts.MaxUploadBytes > 0 {
		uploadLimit = opts.MaxUploadBytes + multipartOverhead
	}
	mux.With(middleware.LimitBody(uploadLimit)).
		Post("/analyze-image", r.wrap(domain.KindImage, r.handleAnalyzeImage))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// requestError is a request body the server could not decode.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func (r *Router) wrap(kind domain.Kind, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		r.metrics.ObserveAnalysis(string(kind), outcome(err))
		if err == nil {
			return
		}

		var (
			upErr  *domain.UpstreamError
			maxErr *http.MaxBytesError
			reqErr *requestError
		)
		switch {
		case errors.Is(err, domain.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, notConfiguredDetail)
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		case errors.As(err, &reqErr):
			writeError(w, http.StatusUnprocessableEntity, reqErr.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &upErr):
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error analyzing %s: %v", upErr.Kind, upErr.Err))
		default:
			r.logger.ErrorContext(req.Context(), "unhandled error", "kind", kind, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func outcome(err error) string {
	var upErr *domain.UpstreamError
	switch {
	case err == nil:
		return middleware.OutcomeSuccess
	case errors.Is(err, domain.ErrNotConfigured):
		return middleware.OutcomeNotConfigured
	case errors.As(err, &upErr):
		return middleware.OutcomeUpstreamError
	default:
		return middleware.OutcomeInvalidInput
	}
}

// GET /
func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Sentinel AI API is running",
	})
}

func (r *Router) checkModel(_ context.Context) error {
	if !r.svc.Configured() {
		return errors.New("GEMINI_API_KEY is not set")
	}
	return nil
}

// POST /analyze
// Body: {"message": "<text>"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if !r.svc.Configured() {
		return domain.ErrNotConfigured
	}
	var body struct {
		Message *string `json:"message"`
	}
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if body.Message == nil {
		return missingField("message")
	}

	res, err := r.svc.AnalyzeText(req.Context(), *body.Message)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /analyze-url
// Body: {"url": "<url>"}
func (r *Router) handleAnalyzeURL(w http.ResponseWriter, req *http.Request) error {
	if !r.svc.Configured() {
		return domain.ErrNotConfigured
	}
	var body struct {
		URL *string `json:"url"`
	}
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if body.URL == nil {
		return missingField("url")
	}

	res, err := r.svc.AnalyzeURL(req.Context(), middleware.SanitizeString(*body.URL))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /analyze-image
// Multipart form with the image in field "file".
func (r *Router) handleAnalyzeImage(w http.ResponseWriter, req *http.Request) error {
	if !r.svc.Configured() {
		return domain.ErrNotConfigured
	}

	file, header, err := req.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return err
		case errors.Is(err, http.ErrMissingFile):
			return fmt.Errorf("%w: form field %q is required", domain.ErrInvalidInput, uploadField)
		default:
			return &requestError{err: err}
		}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if limit := r.opts.MaxUploadBytes; limit > 0 && int64(len(data)) > limit {
		return &http.MaxBytesError{Limit: limit}
	}

	img := domain.Image{
		Data:     data,
		MIMEType: uploadContentType(header.Header.Get("Content-Type"), data),
	}
	res, err := r.svc.AnalyzeImage(req.Context(), img)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// uploadContentType trusts any declared part type and only sniffs the bytes
// when the part has no Content-Type at all. Parameters are dropped; an
// unparseable type yields "" so the upload is rejected as a non-image.
func uploadContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		declared = mimetype.Detect(data).String()
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return ""
	}
	return mediaType
}

func missingField(name string) error {
	return &requestError{err: fmt.Errorf("field %q is required", name)}
}

func decodeJSON(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return &requestError{err: fmt.Errorf("invalid JSON body: %w", err)}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	_ = writeJSON(w, status, map[string]string{"detail": detail})
}
