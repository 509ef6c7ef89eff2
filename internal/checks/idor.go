package checks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/termul/termul/internal/prober"
	"github.com/termul/termul/pkg/types"
)

// IDOR walks sequential object ids on a profile endpoint with the caller's
// own bearer token. Every id that answers 200 is an independent critical
// finding; the breaker is re-checked before each id so a tripped scan
// abandons the remaining ids without recording partial results for them.
type IDOR struct {
	BaseURL     string
	Path        string
	Token       string
	MaxObjectID int
}

func (c *IDOR) Name() string { return "idor" }

func (c *IDOR) Type() types.FindingType { return types.FindingIDOR }

func (c *IDOR) Run(ctx context.Context, env *Env) error {
	if err := env.Gate.Await(ctx); err != nil {
		return err
	}

	for id := 1; id <= c.MaxObjectID; id++ {
		if env.State.ShouldStop() {
			return nil
		}

		url := fmt.Sprintf("%s%s?id=%d", c.BaseURL, c.Path, id)

		out, err := env.probe(ctx, prober.Request{
			Method:      http.MethodGet,
			URL:         url,
			BearerToken: c.Token,
		})
		if err != nil {
			return err
		}

		if out.OK && out.Status == http.StatusOK {
			env.record(types.Finding{
				Type:     types.FindingIDOR,
				Endpoint: url,
				Risk:     types.RiskCritical,
			})
			env.State.Correlate(types.FindingIDOR, types.ImpactDataDisclosure)
		}
	}

	return nil
}
