// Package orchestrator builds and runs the full probe battery for a target.
package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/termul/termul/internal/checks"
	"github.com/termul/termul/internal/config"
	"github.com/termul/termul/internal/httpclient"
	"github.com/termul/termul/internal/logger"
	"github.com/termul/termul/internal/prober"
	"github.com/termul/termul/internal/ratelimit"
	"github.com/termul/termul/internal/scan"
	"github.com/termul/termul/pkg/types"
)

// Target is the per-scan input supplied by the configuration collaborator.
type Target struct {
	BaseURL string
	Token   string
}

// Engine coordinates check tasks over a shared connection-limited network
// resource. It does not retry and does not escalate individual failures: a
// scan completes once every task returns, whatever its outcome.
type Engine struct {
	cfg    *config.Config
	log    *logger.Logger
	client *http.Client
}

func NewEngine(cfg *config.Config, log *logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		log:    log.WithComponent("orchestrator"),
		client: httpclient.New(cfg.HTTP),
	}
}

// Run executes the complete battery against target and returns the final
// scan result. The returned error is non-nil only when the context is
// cancelled from outside; in that case the partial result is still valid.
func (e *Engine) Run(ctx context.Context, target Target) (*types.ScanResult, error) {
	state := scan.NewState(e.cfg.Scan.CriticalStopThreshold)
	log := e.log.WithScanID(state.ID()).WithTarget(target.BaseURL)

	ctx, span := log.StartSpan(ctx, "scan.run")
	defer span.End()

	battery := checks.Build(e.cfg.Checks, target.BaseURL, target.Token)

	env := &checks.Env{
		Prober:  prober.New(e.client, e.cfg.HTTP.Timeout, log),
		Gate:    ratelimit.NewGate(e.cfg.Scan.PacingDelay),
		Limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: e.cfg.Scan.RequestsPerSecond,
			BurstSize:         e.cfg.Scan.BurstSize,
		}),
		State: state,
		Slots: semaphore.NewWeighted(int64(e.cfg.Scan.MaxConcurrency)),
		Log:   log,
	}

	log.Infow("Starting scan",
		"tasks", len(battery),
		"max_concurrency", e.cfg.Scan.MaxConcurrency,
		"critical_stop_threshold", e.cfg.Scan.CriticalStopThreshold,
		"pacing_delay", e.cfg.Scan.PacingDelay.String(),
	)

	startedAt := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for _, check := range battery {
		c := check
		g.Go(func() error {
			return c.Run(gctx, env)
		})
	}

	runErr := g.Wait()
	completedAt := time.Now()

	result := state.Result(target.BaseURL, startedAt, completedAt)

	log.Infow("Scan completed",
		"findings", result.Summary.Total,
		"critical", state.CriticalCount(),
		"stopped_early", result.Stopped,
		"duration", completedAt.Sub(startedAt).String(),
	)

	if runErr != nil {
		return result, fmt.Errorf("scan interrupted: %w", runErr)
	}
	return result, nil
}
