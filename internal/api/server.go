// Package api exposes the planning, validation, import, export and stats
// operations over an HTTP JSON API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"planhebdo/internal/config"
	"planhebdo/internal/export"
	"planhebdo/internal/importer"
	"planhebdo/internal/planning"
	"planhebdo/internal/stats"
	"planhebdo/internal/store"
	"planhebdo/internal/validation"
)

// HTTPServer serves the planning API.
type HTTPServer struct {
	store      *store.Store
	plans      *planning.Manager
	validation *validation.Manager
	importer   *importer.Importer
	exports    *export.Service
	stats      *stats.Service
	sheets     *export.SheetsExporter
	shops      atomic.Pointer[config.ShopsConfig]
	logger     zerolog.Logger
}

// NewHTTPServer wires the API over its services. sheets may be nil.
func NewHTTPServer(
	st *store.Store,
	plans *planning.Manager,
	val *validation.Manager,
	imp *importer.Importer,
	exports *export.Service,
	statsSvc *stats.Service,
	sheets *export.SheetsExporter,
	shops *config.ShopsConfig,
	logger zerolog.Logger,
) *HTTPServer {
	s := &HTTPServer{
		store:      st,
		plans:      plans,
		validation: val,
		importer:   imp,
		exports:    exports,
		stats:      statsSvc,
		sheets:     sheets,
		logger:     logger,
	}
	s.shops.Store(shops)
	return s
}

// SetShops swaps the shop roster after a hot reload.
func (s *HTTPServer) SetShops(cfg *config.ShopsConfig) {
	s.shops.Store(cfg)
}

func (s *HTTPServer) shopsConfig() *config.ShopsConfig {
	return s.shops.Load()
}

// Router builds the API mux.
func (s *HTTPServer) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/shops", s.handleShops)

	mux.HandleFunc("/api/planning", s.handlePlanningGet)
	mux.HandleFunc("/api/planning/save", s.handlePlanningSave)
	mux.HandleFunc("/api/planning/toggle", s.handleToggle)
	mux.HandleFunc("/api/planning/paint", s.handlePaint)
	mux.HandleFunc("/api/planning/advance-day", s.handleAdvanceDay)
	mux.HandleFunc("/api/planning/copy", s.handleCopyWeek)
	mux.HandleFunc("/api/planning/reset", s.handleResetWeek)
	mux.HandleFunc("/api/notes", s.handleNotes)

	mux.HandleFunc("/api/validation/validate", s.handleValidateWeek)
	mux.HandleFunc("/api/validation/unlock", s.handleUnlockEmployee)
	mux.HandleFunc("/api/validation/unlock-all", s.handleUnlockAll)
	mux.HandleFunc("/api/validation/revalidate", s.handleRevalidate)

	mux.HandleFunc("/api/import/ca", s.handleImportCA)
	mux.HandleFunc("/api/import/complete", s.handleImportComplete)
	mux.HandleFunc("/api/import/complete-data", s.handleImportCompleteData)

	mux.HandleFunc("/api/export/week.xlsx", s.handleExportWeekXLSX)
	mux.HandleFunc("/api/export/week.pdf", s.handleExportWeekPDF)
	mux.HandleFunc("/api/export/month.xlsx", s.handleExportMonthXLSX)
	mux.HandleFunc("/api/export/sheets", s.handleExportSheets)

	mux.HandleFunc("/api/stats/monthly", s.handleMonthlyStats)

	return s.withRequestID(mux)
}

// Run serves the API until ctx is canceled.
func (s *HTTPServer) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// withRequestID tags every request with an ID for log correlation.
func (s *HTTPServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)
		s.logger.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request")
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeConflict reports a blocked mutation with a machine-readable code so
// the client can offer the force/unlock flow.
func writeConflict(w http.ResponseWriter, code, msg string) {
	writeJSON(w, http.StatusConflict, errorResponse{Error: msg, Code: code})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// requireShopWeek validates the shop and week identifiers shared by most
// endpoints and resolves the shop's grid configuration.
func (s *HTTPServer) requireShopWeek(w http.ResponseWriter, shopID, weekKey string) (*config.ShopConfig, bool) {
	cfg := s.shopsConfig()
	shop := cfg.Shop(shopID)
	if shop == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown shop %q", shopID))
		return nil, false
	}
	if weekKey == "" {
		writeError(w, http.StatusBadRequest, "week is required")
		return nil, false
	}
	return shop, true
}
