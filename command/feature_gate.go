package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

const featureProposalsSubmit = "proposals.submit"

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, targetProfileID uuid.UUID) (bool, error) {
	if gate == nil {
		return true, nil
	}
	if targetProfileID == uuid.Nil {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeSet(featuregate.ScopeSet{
		System: true,
		UserID: targetProfileID.String(),
	}))
}
