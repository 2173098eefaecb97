// Package command exposes go-command compatible handlers for the proposal
// review workflow (submit, approve, reject, rematch). Commands are wired by
// the service layer and can be invoked by any transport.
package command
