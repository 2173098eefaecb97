package types

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation             = "VALIDATION_FAILED"
	TextCodeDuplicateSubmission    = "DUPLICATE_SUBMISSION"
	TextCodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	TextCodeMergeFailure           = "MERGE_FAILURE"
	TextCodeMissingRequiredField   = "MISSING_REQUIRED_FIELD"
	TextCodeNotFound               = "NOT_FOUND"
	TextCodeSubmissionsDisabled    = "SUBMISSIONS_DISABLED"
	TextCodeInternal               = "INTERNAL"
)

// RichError maps workflow errors onto go-errors so forms and admin banners can
// render a category, status code, text code, and per-field metadata.
func RichError(err error) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	var validation *ValidationError
	var merge *MergeError
	// Merge failures may wrap a ValidationError; match them first.
	switch {
	case errors.As(err, &merge):
		metadata := map[string]any{"step": merge.Step}
		if errors.As(merge.Err, &validation) {
			metadata["fields"] = validation.FieldMap()
		}
		return goerrors.Wrap(err, goerrors.CategoryValidation, "go-proposals: proposal could not be merged").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeMergeFailure).
			WithMetadata(metadata)
	case errors.As(err, &validation):
		metadata := make(map[string]any, len(validation.Fields))
		for field, message := range validation.FieldMap() {
			metadata[field] = message
		}
		return goerrors.Wrap(err, goerrors.CategoryValidation, "go-proposals: submission is invalid").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeValidation).
			WithMetadata(metadata)
	case errors.Is(err, ErrDuplicateSubmission):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "you already have a pending request for this profile").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeDuplicateSubmission)
	case errors.Is(err, ErrMissingRequiredField):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "go-proposals: a required field is missing").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeMissingRequiredField)
	case errors.Is(err, ErrInvalidStateTransition):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "go-proposals: proposal has already been decided").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeInvalidStateTransition)
	case errors.Is(err, ErrProposalNotFound), errors.Is(err, ErrProfileNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "go-proposals: record not found").
			WithCode(goerrors.CodeNotFound).
			WithTextCode(TextCodeNotFound)
	case errors.Is(err, ErrSubmissionsDisabled):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "go-proposals: submissions are disabled").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(TextCodeSubmissionsDisabled)
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "go-proposals: proposal workflow failed").
			WithCode(goerrors.CodeInternal).
			WithTextCode(TextCodeInternal)
	}
}
