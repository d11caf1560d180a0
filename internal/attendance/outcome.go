package attendance

import (
	"github.com/matiasrios/facegate/internal/shift"
	"github.com/matiasrios/facegate/internal/storage"
)

// Reason is a structured rejection code. Business-rule rejections are
// first-class outcomes, never error returns; callers render a precise
// message from the code.
type Reason string

const (
	ReasonInvalidInput           Reason = "invalid_input"
	ReasonUnknownEmployee        Reason = "unknown_employee"
	ReasonDuplicateEmployee      Reason = "duplicate_employee"
	ReasonInvalidEmbedding       Reason = "invalid_embedding"
	ReasonNoMatch                Reason = "no_match"
	ReasonShiftMismatch          Reason = "shift_mismatch"
	ReasonAlreadyRegisteredToday Reason = "already_registered_today"
	ReasonConfigurationError     Reason = "configuration_error"
	ReasonPersistenceFailure     Reason = "persistence_failure"
	ReasonInternalError          Reason = "internal_error"
)

// RegisterResult is the outcome of a registration attempt.
type RegisterResult struct {
	OK      bool   `json:"ok"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// RecognizeResult is the outcome of one recognition-and-record attempt.
// On success EventKind and Timing carry the recorded values; on rejection
// Reason and Message explain why, and Distance/AssignedShift carry
// diagnostic context where applicable.
type RecognizeResult struct {
	OK            bool              `json:"ok"`
	EmployeeID    string            `json:"employee_id,omitempty"`
	EventKind     storage.EventKind `json:"event_kind,omitempty"`
	Timing        shift.Timing      `json:"timing,omitempty"`
	Distance      float64           `json:"distance,omitempty"`
	AssignedShift shift.Shift       `json:"assigned_shift,omitempty"`
	Reason        Reason            `json:"reason,omitempty"`
	Message       string            `json:"message,omitempty"`
}

// ClaimResult is the outcome of a shift-claim pre-check.
type ClaimResult struct {
	Valid         bool        `json:"valid"`
	AssignedShift shift.Shift `json:"assigned_shift,omitempty"`
	Reason        Reason      `json:"reason,omitempty"`
	Message       string      `json:"message,omitempty"`
}

// EmployeeSummary is a listing entry. Embeddings are never included in
// listings.
type EmployeeSummary struct {
	ID    string `json:"id"`
	Area  string `json:"area"`
	Role  string `json:"role"`
	Shift string `json:"shift"`
}

func registerRejected(reason Reason, message string) RegisterResult {
	return RegisterResult{Reason: reason, Message: message}
}

func recognizeRejected(reason Reason, message string) RecognizeResult {
	return RecognizeResult{Reason: reason, Message: message}
}
