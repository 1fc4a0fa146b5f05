package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs several configurations side by side, each on its own engine
// and simulated clock.
type Ensemble struct {
	configs []*config.Config
	limit   int
	log     *zap.Logger
}

func NewEnsemble(configs []*config.Config, logger *zap.Logger) *Ensemble {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ensemble{configs: configs, limit: runtime.NumCPU(), log: logger}
}

// SetLimit bounds the number of concurrent runs.
func (e *Ensemble) SetLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

// Run executes every configuration and returns results in input order. The
// first failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, recordEvery int) ([]*Result, error) {
	results := make([]*Result, len(e.configs))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i, cfg := range e.configs {
		i, cfg := i, cfg
		g.Go(func() error {
			engine, err := FromConfig(cfg, dynamo.NewManualClock(0), e.log)
			if err != nil {
				return err
			}
			for _, m := range metrics.Standard() {
				engine.AddMetric(m)
			}

			res, err := engine.Run(groupCtx, RunConfig{
				Dt:            cfg.Dt,
				Duration:      cfg.Duration,
				RecordEvery:   recordEvery,
				ValidateState: true,
			})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CompareIntegrators runs cfg once per integrator name.
func CompareIntegrators(ctx context.Context, cfg *config.Config, names []string, logger *zap.Logger) ([]*Result, error) {
	configs := make([]*config.Config, 0, len(names))
	for _, name := range names {
		c := cfg.Clone()
		c.Integrator = name
		configs = append(configs, c)
	}
	return NewEnsemble(configs, logger).Run(ctx, 1)
}
