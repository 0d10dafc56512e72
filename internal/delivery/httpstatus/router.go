package httpstatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"icecatimport/internal/bootstrap/logging"
	"icecatimport/internal/errs"
	"icecatimport/internal/usecase/recurringimport"
)

// StatusReader is the read side of the import service.
type StatusReader interface {
	CurrentRun(ctx context.Context) (recurringimport.StatusView, bool, error)
	LastRun(ctx context.Context) (recurringimport.StatusView, bool, error)
	Status(ctx context.Context) (recurringimport.StatusView, bool, error)
}

type Handler struct {
	reader StatusReader
	logCtx context.Context
}

// NewRouter serves the run ledger for external monitors:
//
//	GET /healthz
//	GET /imports/status   running run, else last finished run
//	GET /imports/current  running run or 404
//	GET /imports/last     last finished run or 404
func NewRouter(ctx context.Context, reader StatusReader) http.Handler {
	h := &Handler{
		reader: reader,
		logCtx: logging.WithAttrs(ctx, slog.String("component", "delivery.httpstatus")),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.accessLog)

	r.Get("/healthz", h.health)
	r.Route("/imports", func(r chi.Router) {
		r.Get("/status", h.lookup(reader.Status))
		r.Get("/current", h.lookup(reader.CurrentRun))
		r.Get("/last", h.lookup(reader.LastRun))
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) lookup(fn func(context.Context) (recurringimport.StatusView, bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok, err := fn(r.Context())
		if err != nil {
			logging.Error(h.logCtx, "read import status failed",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.Any("err", errs.Loggable(err)),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no import run found"})
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Debug(h.logCtx, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
