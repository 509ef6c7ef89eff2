package checks

import (
	"context"
	"net/http"

	"github.com/termul/termul/internal/prober"
	"github.com/termul/termul/pkg/types"
)

// ExposedRoute probes an admin or debug route that should not answer
// unauthenticated GET requests at all.
type ExposedRoute struct {
	URL string
}

func (c *ExposedRoute) Name() string { return "exposed-route" }

func (c *ExposedRoute) Type() types.FindingType { return types.FindingExposedRoute }

func (c *ExposedRoute) Run(ctx context.Context, env *Env) error {
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
			Type:     types.FindingExposedRoute,
			Endpoint: c.URL,
			Risk:     types.RiskHigh,
		})
	}

	return nil
}
