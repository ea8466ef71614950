package api

import (
	"net/http"

	"planhebdo/internal/metrics"
)

// ValidationRequest identifies the week (and optionally the employee) a
// validation operation targets.
type ValidationRequest struct {
	ShopID   string `json:"shop"`
	WeekKey  string `json:"week"`
	Employee string `json:"employee,omitempty"`
}

func (s *HTTPServer) decodeValidationRequest(w http.ResponseWriter, r *http.Request, needEmployee bool) (*ValidationRequest, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return nil, false
	}
	var req ValidationRequest
	if !decodeBody(w, r, &req) {
		return nil, false
	}
	if _, ok := s.requireShopWeek(w, req.ShopID, req.WeekKey); !ok {
		return nil, false
	}
	if needEmployee && req.Employee == "" {
		writeError(w, http.StatusBadRequest, "employee is required")
		return nil, false
	}
	return &req, true
}

// handleValidateWeek locks all currently selected employees and marks the
// week validated.
// POST /api/validation/validate
func (s *HTTPServer) handleValidateWeek(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("validation_validate")
	req, ok := s.decodeValidationRequest(w, r, false)
	if !ok {
		return
	}

	selected, err := s.store.LoadSelectedEmployees(r.Context(), req.ShopID, req.WeekKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	state, err := s.validation.ValidateWeek(r.Context(), req.ShopID, req.WeekKey, selected)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleUnlockEmployee removes one employee's lock.
// POST /api/validation/unlock
func (s *HTTPServer) handleUnlockEmployee(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("validation_unlock")
	req, ok := s.decodeValidationRequest(w, r, true)
	if !ok {
		return
	}
	state, err := s.validation.UnlockEmployee(r.Context(), req.ShopID, req.WeekKey, req.Employee)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleUnlockAll resets the whole validation state of the week.
// POST /api/validation/unlock-all
func (s *HTTPServer) handleUnlockAll(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("validation_unlock_all")
	req, ok := s.decodeValidationRequest(w, r, false)
	if !ok {
		return
	}
	state, err := s.validation.UnlockAll(r.Context(), req.ShopID, req.WeekKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleRevalidate re-locks a previously unlocked employee.
// POST /api/validation/revalidate
func (s *HTTPServer) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("validation_revalidate")
	req, ok := s.decodeValidationRequest(w, r, true)
	if !ok {
		return
	}
	state, err := s.validation.RevalidateEmployee(r.Context(), req.ShopID, req.WeekKey, req.Employee)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}
