// Package attendance composes the face matcher, shift validator, and
// attendance ledger into the end-to-end decision for one recognition
// attempt. The service is stateless across attempts; attendance state lives
// in the ledger and employee state in the store.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/matiasrios/facegate/internal/embedding"
	"github.com/matiasrios/facegate/internal/ledger"
	"github.com/matiasrios/facegate/internal/matcher"
	"github.com/matiasrios/facegate/internal/shift"
	"github.com/matiasrios/facegate/internal/storage"
	"github.com/matiasrios/facegate/internal/store"
)

// ErrUnknownEmployee is returned by history lookups for an unregistered ID.
var ErrUnknownEmployee = errors.New("unknown employee")

// searchShortlist is how many shortlist candidates to re-rank exactly when
// search mode goes through the HNSW index.
const searchShortlist = 16

// Service is the attendance orchestrator.
type Service struct {
	employees *store.Store
	matcher   *matcher.Matcher
	schedule  *shift.Schedule
	ledger    *ledger.Ledger

	// rejectOutOfWindow rejects attempts whose (shift, kind) window is
	// undefined in configuration. Early/late attempts are never rejected,
	// only recorded.
	rejectOutOfWindow bool
}

// New creates the orchestrator.
func New(employees *store.Store, m *matcher.Matcher, schedule *shift.Schedule, l *ledger.Ledger, rejectOutOfWindow bool) *Service {
	return &Service{
		employees:         employees,
		matcher:           m,
		schedule:          schedule,
		ledger:            l,
		rejectOutOfWindow: rejectOutOfWindow,
	}
}

// RegisterEmployee validates and stores a new employee record.
func (s *Service) RegisterEmployee(ctx context.Context, id, area, role, shiftName string, emb []float32) RegisterResult {
	id = strings.TrimSpace(id)
	area = strings.TrimSpace(area)
	role = strings.TrimSpace(role)
	if id == "" || area == "" || role == "" || strings.TrimSpace(shiftName) == "" {
		return registerRejected(ReasonInvalidInput, "id, area, role and shift are required")
	}

	sh := shift.Normalize(shiftName)
	if !s.schedule.Known(sh) {
		return registerRejected(ReasonInvalidInput, fmt.Sprintf("shift %q is not defined in the schedule", sh))
	}

	err := s.employees.Register(ctx, storage.EmployeeRecord{
		ID:        id,
		Area:      area,
		Role:      role,
		Shift:     string(sh),
		Embedding: emb,
	})
	switch {
	case err == nil:
		return RegisterResult{OK: true, Message: "employee registered"}
	case errors.Is(err, storage.ErrDuplicateEmployee):
		return registerRejected(ReasonDuplicateEmployee, fmt.Sprintf("employee %s is already registered", id))
	case errors.Is(err, embedding.ErrWrongDimension), errors.Is(err, embedding.ErrNotFinite):
		return registerRejected(ReasonInvalidEmbedding, err.Error())
	default:
		log.Printf("register employee %s: %v", id, err)
		return registerRejected(ReasonPersistenceFailure, "could not store employee")
	}
}

// ValidateClaim checks a claimed shift without touching the face matcher or
// the ledger. Used by the pre-check endpoint before capturing a face.
func (s *Service) ValidateClaim(ctx context.Context, claimedID, claimedShift string) ClaimResult {
	claimedID = strings.TrimSpace(claimedID)
	if claimedID == "" || strings.TrimSpace(claimedShift) == "" {
		return ClaimResult{Reason: ReasonInvalidInput, Message: "employee id and shift are required"}
	}

	snap := s.employees.Snapshot()
	result := s.validator(snap).ValidateShift(claimedID, claimedShift)
	switch result.Status {
	case shift.ClaimValid:
		return ClaimResult{Valid: true, AssignedShift: result.Assigned}
	case shift.ClaimUnknownEmployee:
		return ClaimResult{
			Reason:  ReasonUnknownEmployee,
			Message: fmt.Sprintf("employee %s is not registered", claimedID),
		}
	default:
		return ClaimResult{
			Reason:        ReasonShiftMismatch,
			AssignedShift: result.Assigned,
			Message:       fmt.Sprintf("assigned shift is %s", result.Assigned),
		}
	}
}

// RecognizeAndRecord runs the per-attempt state machine: identity check,
// shift authorization, duplicate-event guard, timing classification, commit.
// Any rejection short-circuits with a structured reason. With an empty
// claimed ID the probe is searched against every registered employee.
func (s *Service) RecognizeAndRecord(ctx context.Context, claimedID, claimedShift string, probe []float32) RecognizeResult {
	claimedID = strings.TrimSpace(claimedID)
	if strings.TrimSpace(claimedShift) == "" {
		return recognizeRejected(ReasonInvalidInput, "shift is required")
	}

	// The attempt runs against one consistent snapshot of the employee
	// store for its whole duration.
	snap := s.employees.Snapshot()

	// Step 1: identity. Pure and lock-free.
	match, reject := s.matchIdentity(snap, claimedID, probe)
	if reject != nil {
		return *reject
	}
	employeeID := claimedID
	if employeeID == "" {
		employeeID = match.EmployeeID
	}

	// Step 2: shift authorization.
	claim := s.validator(snap).ValidateShift(employeeID, claimedShift)
	switch claim.Status {
	case shift.ClaimUnknownEmployee:
		return recognizeRejected(ReasonUnknownEmployee, fmt.Sprintf("employee %s is not registered", employeeID))
	case shift.ClaimMismatch:
		r := recognizeRejected(ReasonShiftMismatch, fmt.Sprintf("assigned shift is %s", claim.Assigned))
		r.AssignedShift = claim.Assigned
		return r
	}

	// Steps 3-5 run serialized per employee: two concurrent attempts must
	// not both observe the same expected kind and both append.
	unlock := s.ledger.LockEmployee(employeeID)
	defer unlock()

	// Step 3: duplicate-event guard.
	expected, err := s.ledger.NextExpectedKind(ctx, employeeID)
	if err != nil {
		log.Printf("next expected kind for %s: %v", employeeID, err)
		return recognizeRejected(ReasonPersistenceFailure, "could not read attendance history")
	}
	today := s.ledger.Today()
	dup, err := s.ledger.HasEventToday(ctx, employeeID, expected, today)
	if err != nil {
		log.Printf("has event today for %s: %v", employeeID, err)
		return recognizeRejected(ReasonPersistenceFailure, "could not read attendance history")
	}
	if dup {
		return recognizeRejected(ReasonAlreadyRegisteredToday, fmt.Sprintf("a %s was already recorded today", expected))
	}

	// Step 4: timing classification. Early and late are informational
	// states recorded with the event, never rejection reasons.
	timing := s.schedule.Classify(claim.Assigned, expected, s.ledger.Now())
	if timing == shift.TimingOutOfWindow && s.rejectOutOfWindow {
		return recognizeRejected(ReasonConfigurationError,
			fmt.Sprintf("no %s window configured for shift %s", expected, claim.Assigned))
	}

	// Step 5: commit.
	ev, err := s.ledger.Append(ctx, employeeID, claim.Assigned, expected, timing)
	if err != nil {
		log.Printf("append event for %s: %v", employeeID, err)
		return recognizeRejected(ReasonPersistenceFailure, "could not record attendance")
	}

	return RecognizeResult{
		OK:            true,
		EmployeeID:    employeeID,
		EventKind:     ev.Kind,
		Timing:        timing,
		Distance:      match.Distance,
		AssignedShift: claim.Assigned,
		Message:       fmt.Sprintf("%s recorded", ev.Kind),
	}
}

// ListEmployees returns every registered employee without embeddings,
// sorted by ID.
func (s *Service) ListEmployees(ctx context.Context) []EmployeeSummary {
	snap := s.employees.Snapshot()
	out := make([]EmployeeSummary, 0, snap.Len())
	for _, id := range snap.IDs() {
		rec := snap.Get(id)
		out = append(out, EmployeeSummary{ID: rec.ID, Area: rec.Area, Role: rec.Role, Shift: rec.Shift})
	}
	return out
}

// EmployeeHistory returns an employee's attendance events, newest first.
// Returns ErrUnknownEmployee for unregistered IDs.
func (s *Service) EmployeeHistory(ctx context.Context, id, fromDate, toDate string) ([]storage.AttendanceEvent, error) {
	if s.employees.Snapshot().Get(id) == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmployee, id)
	}
	return s.ledger.History(ctx, id, fromDate, toDate)
}

// Refresh reloads the employee registry from the persistence backend.
func (s *Service) Refresh(ctx context.Context) error {
	return s.employees.Refresh(ctx)
}

func (s *Service) validator(snap *store.Snapshot) *shift.Validator {
	return shift.NewValidator(func(id string) (string, bool) {
		rec := snap.Get(id)
		if rec == nil {
			return "", false
		}
		return rec.Shift, true
	})
}

// matchIdentity runs step 1 against the snapshot. A nil reject means the
// probe matched; for search mode the result carries the identified employee.
func (s *Service) matchIdentity(snap *store.Snapshot, claimedID string, probe []float32) (matcher.Result, *RecognizeResult) {
	if claimedID != "" {
		rec := snap.Get(claimedID)
		if rec == nil {
			r := recognizeRejected(ReasonUnknownEmployee, fmt.Sprintf("employee %s is not registered", claimedID))
			return matcher.Result{}, &r
		}
		result, err := s.matcher.CompareOne(probe, rec.Embedding)
		if err != nil {
			r := recognizeRejected(ReasonInvalidEmbedding, err.Error())
			return matcher.Result{}, &r
		}
		if !result.Accepted {
			r := recognizeRejected(ReasonNoMatch,
				fmt.Sprintf("face does not match employee %s (distance %.4f, threshold %.4f)", claimedID, result.Distance, result.Threshold))
			r.Distance = result.Distance
			return matcher.Result{}, &r
		}
		result.EmployeeID = claimedID
		return result, nil
	}

	// Search mode: identify the probe against every employee. Large
	// registries go through the HNSW shortlist with an exact re-rank.
	candidates := snap.Candidates()
	if ix := snap.Index(); ix != nil {
		if shortlist, err := ix.Shortlist(probe, searchShortlist); err == nil && len(shortlist) > 0 {
			candidates = shortlist
		}
	}
	if len(candidates) == 0 {
		r := recognizeRejected(ReasonNoMatch, "no employees registered")
		return matcher.Result{}, &r
	}

	result, err := s.matcher.SearchBest(probe, candidates)
	if err != nil {
		if errors.Is(err, matcher.ErrInvalidVector) {
			r := recognizeRejected(ReasonInvalidEmbedding, err.Error())
			return matcher.Result{}, &r
		}
		r := recognizeRejected(ReasonNoMatch, err.Error())
		return matcher.Result{}, &r
	}
	if !result.Accepted {
		r := recognizeRejected(ReasonNoMatch,
			fmt.Sprintf("no registered face matches the probe (minimum distance %.4f, threshold %.4f)", result.Distance, result.Threshold))
		r.Distance = result.Distance
		return matcher.Result{}, &r
	}
	return result, nil
}
