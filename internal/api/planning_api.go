package api

import (
	"errors"
	"net/http"

	"planhebdo/internal/metrics"
	"planhebdo/internal/models"
	"planhebdo/internal/planning"
	"planhebdo/internal/timeslots"
)

// WeekResponse bundles everything a client needs to render a week grid.
type WeekResponse struct {
	ShopID            string                 `json:"shop_id"`
	WeekKey           string                 `json:"week_key"`
	Planning          models.Planning        `json:"planning"`
	SelectedEmployees []string               `json:"selected_employees"`
	Validation        models.ValidationState `json:"validation"`
	ValidatedSlots    map[string]bool        `json:"validated_slots"`
	Grid              timeslots.GridConfig   `json:"grid"`
}

// handlePlanningGet returns the week state.
// GET /api/planning?shop=...&week=YYYY-MM-DD
func (s *HTTPServer) handlePlanningGet(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("planning_get")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	shopID := r.URL.Query().Get("shop")
	weekKey := r.URL.Query().Get("week")
	if _, ok := s.requireShopWeek(w, shopID, weekKey); !ok {
		return
	}

	grid, _ := s.shopsConfig().GridFor(shopID)
	week, err := s.plans.LoadWeek(r.Context(), shopID, weekKey, grid)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := s.validation.Load(r.Context(), shopID, weekKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	validated, err := s.store.LoadValidatedSlots(r.Context(), shopID, weekKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, WeekResponse{
		ShopID:            shopID,
		WeekKey:           weekKey,
		Planning:          week.Planning,
		SelectedEmployees: week.SelectedEmployees,
		Validation:        state,
		ValidatedSlots:    validated,
		Grid:              grid,
	})
}

// SavePlanningRequest is the wholesale save payload.
type SavePlanningRequest struct {
	ShopID            string          `json:"shop"`
	WeekKey           string          `json:"week"`
	Planning          models.Planning `json:"planning"`
	SelectedEmployees []string        `json:"selected_employees"`
}

// handlePlanningSave persists the full week state.
// POST /api/planning/save
func (s *HTTPServer) handlePlanningSave(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("planning_save")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	var req SavePlanningRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := s.requireShopWeek(w, req.ShopID, req.WeekKey); !ok {
		return
	}

	grid, _ := s.shopsConfig().GridFor(req.ShopID)
	week, err := s.plans.LoadWeek(r.Context(), req.ShopID, req.WeekKey, grid)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Planning != nil {
		week.Planning = req.Planning
	}
	if req.SelectedEmployees != nil {
		week.SelectedEmployees = req.SelectedEmployees
	}
	if err := s.plans.SaveWeek(r.Context(), week); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// ToggleRequest mutates a single slot (or a drag range for paint).
type ToggleRequest struct {
	ShopID   string `json:"shop"`
	WeekKey  string `json:"week"`
	Employee string `json:"employee"`
	DayKey   string `json:"day"`
	Slot     int    `json:"slot"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	Value    bool   `json:"value"`
	Force    bool   `json:"force"`
}

// ToggleResponse returns the mutated day and its derived hours.
type ToggleResponse struct {
	Slots []bool              `json:"slots"`
	Hours timeslots.WorkHours `json:"hours"`
}

// handleToggle flips one slot under the lock/validated guards.
// POST /api/planning/toggle
func (s *HTTPServer) handleToggle(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("planning_toggle")
	s.mutateSlots(w, r, false)
}

// handlePaint applies one drag value across a slot range.
// POST /api/planning/paint
func (s *HTTPServer) handlePaint(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("planning_paint")
	s.mutateSlots(w, r, true)
}

func (s *HTTPServer) mutateSlots(w http.ResponseWriter, r *http.Request, paint bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	var req ToggleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := s.requireShopWeek(w, req.ShopID, req.WeekKey); !ok {
		return
	}

	ctx := r.Context()
	grid, _ := s.shopsConfig().GridFor(req.ShopID)
	week, err := s.plans.LoadWeek(ctx, req.ShopID, req.WeekKey, grid)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := s.validation.Load(ctx, req.ShopID, req.WeekKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	validated, err := s.store.LoadValidatedSlots(ctx, req.ShopID, req.WeekKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	guard := planning.Guard{
		Locks:          state,
		ValidatedSlots: validated,
	}
	if paint {
		err = week.PaintSlots(req.Employee, req.DayKey, req.From, req.To, req.Value, guard, req.Force)
	} else {
		err = week.ToggleSlot(req.Employee, req.DayKey, req.Slot, guard, req.Force)
	}
	switch {
	case errors.Is(err, planning.ErrEmployeeLocked):
		writeConflict(w, "employee_locked", err.Error())
		return
	case errors.Is(err, planning.ErrSlotValidated):
		writeConflict(w, "slot_validated", err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The toggle request is the autosave callback of the grid.
	if err := s.plans.SaveWeek(ctx, week); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slots := week.Planning[req.Employee][req.DayKey]
	writeJSON(w, http.StatusOK, ToggleResponse{
		Slots: slots,
		Hours: timeslots.CalculateWorkHours(slots, grid),
	})
}

// AdvanceDayRequest applies the day-commit lock transition.
type AdvanceDayRequest struct {
	ShopID          string `json:"shop"`
	WeekKey         string `json:"week"`
	FromDay         int    `json:"from_day"`
	ToDay           int    `json:"to_day"`
	LastModifiedDay int    `json:"last_modified_day"`
}

// handleAdvanceDay commits the previous day when navigating forward past
// a modified one: selected employees get locked.
// POST /api/planning/advance-day
func (s *HTTPServer) handleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("planning_advance_day")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	var req AdvanceDayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := s.requireShopWeek(w, req.ShopID, req.WeekKey); !ok {
		return
	}

	ctx := r.Context()
	selected, err := s.store.LoadSelectedEmployees(ctx, req.ShopID, req.WeekKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	state, err := s.validation.Load(ctx, req.ShopID, req.WeekKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	next := planning.AdvanceDay(state, selected, req.FromDay, req.ToDay, req.LastModifiedDay)
	if len(next.LockedEmployees) != len(state.LockedEmployees) {
		if err := s.store.SaveValidation(ctx, req.ShopID, req.WeekKey, next); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, next)
}

// CopyWeekRequest copies one week's planning onto another.
type CopyWeekRequest struct {
	ShopID   string `json:"shop"`
	FromWeek string `json:"from_week"`
	ToWeek   string `json:"to_week"`
}

// handleCopyWeek overwrites the destination week wholesale.
// POST /api/planning/copy
func (s *HTTPServer) handleCopyWeek(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("planning_copy")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	var req CopyWeekRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := s.requireShopWeek(w, req.ShopID, req.FromWeek); !ok {
		return
	}
	grid, _ := s.shopsConfig().GridFor(req.ShopID)
	if err := s.plans.CopyWeek(r.Context(), req.ShopID, req.FromWeek, req.ToWeek, grid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"copied": true})
}

// ResetWeekRequest empties a week's planning.
type ResetWeekRequest struct {
	ShopID  string `json:"shop"`
	WeekKey string `json:"week"`
}

// handleResetWeek overwrites the week with an empty planning.
// POST /api/planning/reset
func (s *HTTPServer) handleResetWeek(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("planning_reset")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	var req ResetWeekRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := s.requireShopWeek(w, req.ShopID, req.WeekKey); !ok {
		return
	}
	grid, _ := s.shopsConfig().GridFor(req.ShopID)
	if err := s.plans.ResetWeek(r.Context(), req.ShopID, req.WeekKey, grid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// handleNotes reads or replaces the week note.
// GET|PUT /api/notes?shop=...&week=...
func (s *HTTPServer) handleNotes(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("notes")
	shopID := r.URL.Query().Get("shop")
	weekKey := r.URL.Query().Get("week")
	if _, ok := s.requireShopWeek(w, shopID, weekKey); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		note, err := s.store.LoadNote(r.Context(), shopID, weekKey)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, note)
	case http.MethodPut:
		var body struct {
			Text string `json:"text"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if err := s.store.SaveNote(r.Context(), shopID, weekKey, body.Text); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleShops lists the configured shops.
// GET /api/shops
func (s *HTTPServer) handleShops(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("shops")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.shopsConfig().ModelShops())
}
