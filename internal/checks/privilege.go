package checks

import (
	"context"
	"net/http"

	"github.com/termul/termul/internal/prober"
	"github.com/termul/termul/pkg/types"
)

// PrivilegeEscalation fires an admin action with a plain user token. A 200
// means the action executed for a caller who should not be allowed to.
type PrivilegeEscalation struct {
	URL   string
	Token string
}

func (c *PrivilegeEscalation) Name() string { return "privilege-escalation" }

func (c *PrivilegeEscalation) Type() types.FindingType { return types.FindingPrivilegeEscalation }

func (c *PrivilegeEscalation) Run(ctx context.Context, env *Env) error {
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
	})
	if err != nil {
		return err
	}

	if out.OK && out.Status == http.StatusOK {
		env.record(types.Finding{
			Type:     types.FindingPrivilegeEscalation,
			Endpoint: c.URL,
			Risk:     types.RiskCritical,
		})
		env.State.Correlate(types.FindingPrivilegeEscalation, types.ImpactAdminAction)
	}

	return nil
}
