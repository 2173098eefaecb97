package proposals

import "github.com/goliatone/go-proposals/service"

// Re-export the service package entry point so consumers can do
// `proposals.New(...)` without importing internal wiring helpers.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// New constructs the go-proposals runtime using the provided configuration.
func New(cfg Config) *Service {
	return service.New(cfg)
}
