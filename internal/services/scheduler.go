package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/logger"
)

// StartAutoDraw schedules PickWinner on a fixed interval, invoked as the pool
// operator. Rounds with no participants are skipped. The caller owns the
// returned scheduler and must shut it down.
func StartAutoDraw(ctx context.Context, pool *PoolService, interval time.Duration) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("draw interval must be positive, got %s", interval)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { runAutoDraw(ctx, pool) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule draw: %w", err)
	}

	sched.Start()
	logger.Infof("[Scheduler] automatic draw every %s", interval)
	return sched, nil
}

func runAutoDraw(ctx context.Context, pool *PoolService) {
	if ctx.Err() != nil {
		return
	}
	if len(pool.GetPlayers()) == 0 {
		logger.Infof("[Scheduler] pool is empty, skipping draw")
		return
	}

	settlement, err := pool.PickWinner(ctx, pool.Operator())
	if err != nil {
		if errors.Is(err, ErrEmptyPool) {
			return
		}
		logger.Errorf("[Scheduler] draw failed: %v", err)
		return
	}
	logger.Infof("[Scheduler] %s won %s", settlement.Winner, settlement.Payout)
}
