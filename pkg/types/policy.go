package types

// TransitionPolicy validates proposal state transitions.
type TransitionPolicy interface {
	Validate(current, target ProposalState) error
	AllowedTargets(current ProposalState) []ProposalState
}

// StaticTransitionPolicy enforces a fixed transition graph.
type StaticTransitionPolicy struct {
	graph map[ProposalState]map[ProposalState]struct{}
}

// NewStaticTransitionPolicy creates a policy from a transition graph.
func NewStaticTransitionPolicy(graph map[ProposalState][]ProposalState) *StaticTransitionPolicy {
	internal := make(map[ProposalState]map[ProposalState]struct{}, len(graph))
	for from, targets := range graph {
		targetSet := make(map[ProposalState]struct{}, len(targets))
		for _, to := range targets {
			if to == "" {
				continue
			}
			targetSet[to] = struct{}{}
		}
		internal[from] = targetSet
	}
	return &StaticTransitionPolicy{graph: internal}
}

// DefaultProposalPolicy returns the review state machine:
// pending→approved and pending→rejected. Both targets are terminal.
func DefaultProposalPolicy() *StaticTransitionPolicy {
	return NewStaticTransitionPolicy(map[ProposalState][]ProposalState{
		ProposalStatePending: {ProposalStateApproved, ProposalStateRejected},
	})
}

// Validate ensures the target is allowed from the current state.
func (p *StaticTransitionPolicy) Validate(current, target ProposalState) error {
	if current == "" || target == "" {
		return ErrInvalidStateTransition
	}
	targets, ok := p.graph[current]
	if !ok {
		return ErrInvalidStateTransition
	}
	if _, ok := targets[target]; !ok {
		return ErrInvalidStateTransition
	}
	return nil
}

// AllowedTargets returns the slice of valid targets from the provided state.
func (p *StaticTransitionPolicy) AllowedTargets(current ProposalState) []ProposalState {
	targets := p.graph[current]
	if len(targets) == 0 {
		return nil
	}
	out := make([]ProposalState, 0, len(targets))
	for target := range targets {
		out = append(out, target)
	}
	return out
}
