// Package checks implements the probe battery: five independent check task
// variants that share the scan state, the pacing gate, the circuit breaker,
// and the bounded network slots.
//
// Classification policy: a bare 200 response is conclusive evidence of a
// vulnerability for every variant. There is no baseline comparison and no
// content inspection; classification is a pure function of the variant and
// the observed status code.
package checks

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/termul/termul/internal/config"
	"github.com/termul/termul/internal/logger"
	"github.com/termul/termul/internal/prober"
	"github.com/termul/termul/internal/ratelimit"
	"github.com/termul/termul/internal/scan"
	"github.com/termul/termul/pkg/types"
)

// Check is one unit of probe work against a target endpoint (or, for IDOR,
// a small sequence of endpoints). Run returns a non-nil error only when the
// surrounding context is cancelled; network failures and negative signals
// are not errors.
type Check interface {
	Name() string
	Type() types.FindingType
	Run(ctx context.Context, env *Env) error
}

// Env carries the collaborators shared by all concurrently running checks.
type Env struct {
	Prober  *prober.Prober
	Gate    *ratelimit.Gate
	Limiter *ratelimit.Limiter
	State   *scan.State
	Slots   *semaphore.Weighted
	Log     *logger.Logger
}

// probe waits for the global rate limiter and a network slot, then executes
// one request. The slot is held only for the duration of the request so
// pacing delays never starve the connection budget.
func (e *Env) probe(ctx context.Context, req prober.Request) (prober.Outcome, error) {
	if err := e.Limiter.Wait(ctx); err != nil {
		return prober.Outcome{}, err
	}
	if err := e.Slots.Acquire(ctx, 1); err != nil {
		return prober.Outcome{}, err
	}
	defer e.Slots.Release(1)

	return e.Prober.Do(ctx, req), nil
}

// record appends a finding and logs it.
func (e *Env) record(f types.Finding) {
	e.State.Record(f)
	e.Log.Warnw("Vulnerability detected",
		"type", f.Type,
		"endpoint", f.Endpoint,
		"risk", f.Risk,
	)
}

// Build assembles the full task battery for one target: one task per
// endpoint for the list-driven variants, one looping task for IDOR.
func Build(cfg config.ChecksConfig, baseURL, token string) []Check {
	var battery []Check

	for _, path := range cfg.ExposedPaths {
		battery = append(battery, &ExposedRoute{
			URL: fmt.Sprintf("%s/%s", baseURL, path),
		})
	}

	for _, path := range cfg.MissingAuthPaths {
		battery = append(battery, &MissingAuth{
			URL: baseURL + path,
		})
	}

	battery = append(battery, &IDOR{
		BaseURL:     baseURL,
		Path:        cfg.IDORPath,
		Token:       token,
		MaxObjectID: cfg.IDORMaxObjectID,
	})

	for _, path := range cfg.AdminActionPaths {
		battery = append(battery, &PrivilegeEscalation{
			URL:   baseURL + path,
			Token: token,
		})
	}

	battery = append(battery, &WorkflowBypass{
		URL:   baseURL + cfg.WorkflowPath,
		Token: token,
	})

	return battery
}
