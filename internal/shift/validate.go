package shift

// ClaimStatus is the outcome of validating a claimed shift.
type ClaimStatus string

const (
	ClaimValid ClaimStatus = "valid"

	// ClaimUnknownEmployee means the claimed employee does not exist.
	// Validation fails closed.
	ClaimUnknownEmployee ClaimStatus = "unknown-employee"

	// ClaimMismatch means the claimed shift is not the employee's assigned
	// shift. The result carries the assigned shift for caller feedback.
	ClaimMismatch ClaimStatus = "shift-mismatch"
)

// ClaimResult is the outcome of ValidateShift.
type ClaimResult struct {
	Status   ClaimStatus
	Claimed  Shift
	Assigned Shift
}

// Validator authorizes claimed shifts against assigned shifts.
// The lookup function resolves an employee ID to its assigned shift name;
// it runs against an immutable per-request snapshot of the employee store.
type Validator struct {
	lookup func(employeeID string) (assigned string, ok bool)
}

// NewValidator creates a validator over the given employee lookup.
func NewValidator(lookup func(string) (string, bool)) *Validator {
	return &Validator{lookup: lookup}
}

// ValidateShift checks that the claimed shift is the employee's assigned
// shift. Comparison is case-insensitive, trimmed, and diacritics-folded.
func (v *Validator) ValidateShift(employeeID, claimed string) ClaimResult {
	claimedShift := Normalize(claimed)

	assignedName, ok := v.lookup(employeeID)
	if !ok {
		return ClaimResult{Status: ClaimUnknownEmployee, Claimed: claimedShift}
	}

	assigned := Normalize(assignedName)
	if claimedShift != assigned {
		return ClaimResult{Status: ClaimMismatch, Claimed: claimedShift, Assigned: assigned}
	}
	return ClaimResult{Status: ClaimValid, Claimed: claimedShift, Assigned: assigned}
}
