// Package httpserver exposes the dashboard read model and ingestion over a
// small JSON API.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alexanderramin/parada/internal/contract"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/importer"
	"github.com/alexanderramin/parada/internal/repository"
	"github.com/alexanderramin/parada/internal/scheduler"
	"github.com/alexanderramin/parada/internal/service"
)

const maxUploadBytes = 32 << 20

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Ingest       service.IngestService
	Status       service.StatusService
	Snapshots    service.SnapshotService
	CriticalPath service.CriticalPathService
}

type Server struct {
	svc    Services
	db     Pinger
	logger *zap.Logger
	now    func() time.Time
}

func New(svc Services, db Pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:    svc,
		db:     db,
		logger: logger.Named("http"),
		now:    time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/critical-path", s.handleCriticalPath)
		r.Post("/ingest/{format}", s.handleIngest)

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Get("/latest/{format}", s.handleLatestSnapshot)
			r.Get("/{id}", s.handleGetSnapshot)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]any{
		"ok":   true,
		"time": s.now().UTC().Format(time.RFC3339Nano),
	}
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			status["ok"] = false
			status["db"] = "down"
			status["error"] = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	status["db"] = "up"
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	req := contract.NewStatusRequest()
	q := r.URL.Query()
	if v := q.Get("horizon"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, string(contract.ErrInvalidInput), "horizon must be an integer")
			return
		}
		req.MilestoneHorizonDays = n
	}
	for _, inc := range strings.Split(q.Get("include"), ",") {
		if strings.TrimSpace(inc) == "schedule" {
			req.IncludeSchedule = true
		}
	}
	resp, err := s.svc.Status.GetStatus(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCriticalPath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := contract.CriticalPathRequest{OnlyCritical: q.Get("only") == "critical"}
	if v := q.Get("format"); v != "" {
		f, err := contract.ParseFormat(v)
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		req.Format = f
	}
	resp, err := s.svc.CriticalPath.CriticalPath(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleIngest takes the raw export as the request body. The {format} path
// segment may be "auto" to detect it from the header row.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	req := contract.IngestRequest{Name: r.URL.Query().Get("name")}
	if f := chi.URLParam(r, "format"); f != "auto" {
		format, err := contract.ParseFormat(f)
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		req.Format = format
	}
	if v := r.URL.Query().Get("dry_run"); v != "" {
		dry, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, string(contract.ErrInvalidInput), "dry_run must be a boolean")
			return
		}
		req.DryRun = dry
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, string(contract.ErrInvalidInput), err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, string(contract.ErrInvalidInput), err.Error())
		return
	}
	req.Data = data

	res, err := s.svc.Ingest.Ingest(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if req.DryRun || res.Unchanged {
		status = http.StatusOK
	}
	respondJSON(w, status, res)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := contract.SnapshotListRequest{}
	if v := q.Get("format"); v != "" {
		req.Format = domain.SourceFormat(v)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, string(contract.ErrInvalidInput), "limit must be a non-negative integer")
			return
		}
		req.Limit = n
	}
	snaps, err := s.svc.Snapshots.List(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	format, err := contract.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	snap, err := s.svc.Snapshots.Latest(r.Context(), format)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshots.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// respondServiceError maps service errors onto HTTP statuses. Anything not
// recognised is logged and reported as internal.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	var (
		appErr   *contract.Error
		parseErr *importer.ParseError
		validErr *importer.ValidationError
		cycleErr *scheduler.CycleError
	)
	switch {
	case errors.As(err, &appErr):
		status := http.StatusBadRequest
		if appErr.Code == contract.ErrNoData {
			status = http.StatusNotFound
		}
		respondError(w, status, string(appErr.Code), appErr.Message)
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &validErr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "export failed validation",
			"code":   string(importer.CodeValidation),
			"report": validErr.Report,
		})
	case errors.As(err, &parseErr):
		respondError(w, http.StatusBadRequest, string(importer.CodeParse), err.Error())
	case errors.Is(err, importer.ErrUnknownFormat):
		respondError(w, http.StatusBadRequest, string(contract.ErrInvalidFormat), err.Error())
	case errors.As(err, &cycleErr):
		respondError(w, http.StatusUnprocessableEntity, "CIRCULAR_DEPENDENCY", cycleErr.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
		"code":  code,
	})
}
