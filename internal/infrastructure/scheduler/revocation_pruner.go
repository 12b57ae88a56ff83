// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	DefaultPruneSchedule = "@every 15m"
	pruneTimeout         = time.Minute
)

// Pruner forgets revoked tokens whose expiry has passed.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// RevocationPruner calls Pruner on a cron schedule.
type RevocationPruner struct {
	pruner   Pruner
	schedule string
	cron     *cron.Cron
	log      zerolog.Logger
	onPrune  func(removed int64)
}

// NewRevocationPruner returns a pruner running on schedule (standard cron
// spec or descriptor such as "@every 15m"). onPrune may be nil.
func NewRevocationPruner(pruner Pruner, schedule string, log zerolog.Logger, onPrune func(removed int64)) *RevocationPruner {
	if schedule == "" {
		schedule = DefaultPruneSchedule
	}
	return &RevocationPruner{
		pruner:   pruner,
		schedule: schedule,
		cron:     cron.New(),
		log:      log,
		onPrune:  onPrune,
	}
}

// Start registers the job and starts the scheduler in its own goroutine.
func (p *RevocationPruner) Start(ctx context.Context) error {
	if _, err := p.cron.AddFunc(p.schedule, func() { _, _ = p.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule revocation pruning %q: %w", p.schedule, err)
	}
	p.cron.Start()
	p.log.Info().Str("schedule", p.schedule).Msg("revocation pruner started")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish or ctx to
// be done.
func (p *RevocationPruner) Stop(ctx context.Context) {
	select {
	case <-p.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce performs a single pruning pass.
func (p *RevocationPruner) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, pruneTimeout)
	defer cancel()

	removed, err := p.pruner.Prune(ctx)
	if err != nil {
		p.log.Error().Err(err).Msg("revocation pruning failed")
		return 0, err
	}
	if p.onPrune != nil {
		p.onPrune(removed)
	}
	p.log.Debug().Int64("removed", removed).Msg("revocation pruning done")
	return removed, nil
}
