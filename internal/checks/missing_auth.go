package checks

import (
	"context"
	"net/http"

	"github.com/termul/termul/internal/prober"
	"github.com/termul/termul/pkg/types"
)

// MissingAuth probes a protected-looking API path without credentials. A
// 200 here means the endpoint serves data with no authentication at all.
type MissingAuth struct {
	URL string
}

func (c *MissingAuth) Name() string { return "missing-auth" }

func (c *MissingAuth) Type() types.FindingType { return types.FindingMissingAuth }

func (c *MissingAuth) Run(ctx context.Context, env *Env) error {
	if err := env.Gate.Await(ctx); err != nil {
		return err
	}
	if env.State.ShouldStop() {
		return nil
	}

	out, err := env.probe(ctx, prober.Request{
		Method: http.MethodGet,
		URL:    c.URL,
	})
	if err != nil {
		return err
	}

	if out.OK && out.Status == http.StatusOK {
		env.record(types.Finding{
			Type:     types.FindingMissingAuth,
			Endpoint: c.URL,
			Risk:     types.RiskCritical,
		})
	}

	return nil
}
