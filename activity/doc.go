// Package activity persists the audit trail of proposal workflow decisions.
// The Repository implements types.ActivitySink and masks submitter data before
// it reaches storage.
package activity
