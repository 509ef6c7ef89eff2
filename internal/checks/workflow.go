package checks

import (
	"context"
	"net/http"

	"github.com/termul/termul/internal/prober"
	"github.com/termul/termul/pkg/types"
)

// WorkflowBypass posts a terminal state transition directly to an order
// endpoint, skipping the intermediate steps (payment, fulfilment) a real
// workflow would require.
type WorkflowBypass struct {
	URL   string
	Token string
}

func (c *WorkflowBypass) Name() string { return "workflow-bypass" }

func (c *WorkflowBypass) Type() types.FindingType { return types.FindingWorkflowBypass }

func (c *WorkflowBypass) Run(ctx context.Context, env *Env) error {
	if err := env.Gate.Await(ctx); err != nil {
		return err
	}
	if env.State.ShouldStop() {
		return nil
	}

	out, err := env.probe(ctx, prober.Request{
		Method:      http.MethodPost,
		URL:         c.URL,
		BearerToken: c.Token,
		JSONBody:    map[string]string{"status": "completed"},
	})
	if err != nil {
		return err
	}

	if out.OK && out.Status == http.StatusOK {
		env.record(types.Finding{
			Type:     types.FindingWorkflowBypass,
			Endpoint: c.URL,
			Risk:     types.RiskHigh,
		})
		env.State.Correlate(types.FindingWorkflowBypass, types.ImpactFinancialImpact)
	}

	return nil
}
