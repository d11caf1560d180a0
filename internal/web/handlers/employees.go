package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matiasrios/facegate/internal/attendance"
)

// EmployeesHandler serves the employee registry endpoints.
type EmployeesHandler struct {
	svc *attendance.Service
}

// NewEmployeesHandler creates a new EmployeesHandler.
func NewEmployeesHandler(svc *attendance.Service) *EmployeesHandler {
	return &EmployeesHandler{svc: svc}
}

type registerRequest struct {
	ID        string    `json:"id"`
	Area      string    `json:"area"`
	Role      string    `json:"role"`
	Shift     string    `json:"shift"`
	Embedding []float32 `json:"embedding"`
}

// Register handles POST /employees.
func (h *EmployeesHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	result := h.svc.RegisterEmployee(r.Context(), req.ID, req.Area, req.Role, req.Shift, req.Embedding)
	if !result.OK {
		log.Printf("registration rejected for %s: %s", sanitizeForLog(req.ID), result.Reason)
	}
	respondJSON(w, statusFor(result.Reason), result)
}

// List handles GET /employees.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"employees": h.svc.ListEmployees(r.Context()),
	})
}

// History handles GET /employees/{id}/history with optional from/to date
// query parameters (inclusive, YYYY-MM-DD).
func (h *EmployeesHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	events, err := h.svc.EmployeeHistory(r.Context(), id, from, to)
	if err != nil {
		if errors.Is(err, attendance.ErrUnknownEmployee) {
			respondError(w, http.StatusNotFound, "employee not found")
			return
		}
		log.Printf("history query for %s failed: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "could not read attendance history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"employee_id": id,
		"events":      events,
	})
}
