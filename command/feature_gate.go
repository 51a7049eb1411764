package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
)

const featureClockIn = "timeclock.clock_in"

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key, tenantID, actorID string) (bool, error) {
	if gate == nil {
		return true, nil
	}
	if tenantID == "" && actorID == "" {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeSet(featuregate.ScopeSet{
		System:   true,
		TenantID: tenantID,
		UserID:   actorID,
	}))
}
