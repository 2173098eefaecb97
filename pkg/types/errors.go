package types

import (
	"errors"
	"strings"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("go-proposals: validation failed")
	// ErrDuplicateSubmission indicates a recent pending proposal already exists
	// for the same target profile and submitter.
	ErrDuplicateSubmission = errors.New("go-proposals: duplicate pending submission")
	// ErrInvalidStateTransition indicates a decision on a non-pending proposal.
	ErrInvalidStateTransition = errors.New("go-proposals: invalid state transition")
	// ErrMergeFailure matches every *MergeError.
	ErrMergeFailure = errors.New("go-proposals: merge failed")
	// ErrMissingRequiredField indicates a decision input omitted a required value.
	ErrMissingRequiredField = errors.New("go-proposals: missing required field")
	// ErrProposalNotFound indicates the proposal id is unknown.
	ErrProposalNotFound = errors.New("go-proposals: proposal not found")
	// ErrProposalIDRequired indicates the proposal id was omitted.
	ErrProposalIDRequired = errors.New("go-proposals: proposal id required")
	// ErrProfileNotFound indicates the target profile does not exist.
	ErrProfileNotFound = errors.New("go-proposals: profile not found")
	// ErrProfileRequired indicates a nil profile was supplied.
	ErrProfileRequired = errors.New("go-proposals: profile required")
	// ErrUnknownLinkField indicates a link key outside the whitelist.
	ErrUnknownLinkField = errors.New("go-proposals: unknown link field")
	// ErrSubmissionsDisabled indicates submissions are switched off via feature gate.
	ErrSubmissionsDisabled = errors.New("go-proposals: submissions disabled")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-proposals: service not ready")
	// ErrMissingDatabase occurs when the service is built without a *bun.DB.
	ErrMissingDatabase = errors.New("go-proposals: missing database")
	// ErrMissingUnitOfWork occurs when commands lack a transaction runner.
	ErrMissingUnitOfWork = errors.New("go-proposals: missing unit of work")
	// ErrMissingProposalRepository occurs when queries lack proposal storage.
	ErrMissingProposalRepository = errors.New("go-proposals: missing proposal repository")
	// ErrMissingProfileRepository occurs when no profile store was supplied.
	ErrMissingProfileRepository = errors.New("go-proposals: missing profile repository")
	// ErrMissingRelationshipRepository occurs when no relationship store was supplied.
	ErrMissingRelationshipRepository = errors.New("go-proposals: missing relationship repository")
	// ErrMissingEntryRepository occurs when no entry store was supplied.
	ErrMissingEntryRepository = errors.New("go-proposals: missing entry repository")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field-level failures for a submission.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Empty reports whether no failure was collected.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Err returns nil when no failure was collected.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Has reports whether a failure was recorded for field.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// FieldMap returns the failures keyed by field, joining repeated messages.
func (e *ValidationError) FieldMap() map[string]string {
	if e == nil {
		return nil
	}
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if prev, ok := out[f.Field]; ok {
			out[f.Field] = prev + "; " + f.Message
			continue
		}
		out[f.Field] = f.Message
	}
	return out
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MergeError reports which merge step failed. It matches ErrMergeFailure and
// unwraps to the underlying cause.
type MergeError struct {
	Step string
	Err  error
}

func (e *MergeError) Error() string {
	if e.Err == nil {
		return ErrMergeFailure.Error() + " at " + e.Step
	}
	return ErrMergeFailure.Error() + " at " + e.Step + ": " + e.Err.Error()
}

// Unwrap exposes both the sentinel and the cause.
func (e *MergeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMergeFailure}
	}
	return []error{ErrMergeFailure, e.Err}
}
