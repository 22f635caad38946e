package services

import (
	"context"
	"testing"
	"time"

	"wagerpool/internal/entropy"
	"wagerpool/internal/models"
)

func TestRunAutoDraw(t *testing.T) {
	ctx := context.Background()

	t.Run("skips an empty pool", func(t *testing.T) {
		pool, _ := newTestPool(t, entropy.Fixed(0))
		runAutoDraw(ctx, pool)
		if pool.Balance() != 0 {
			t.Errorf("Expected zero balance, got %s", pool.Balance())
		}
	})

	t.Run("settles as the operator", func(t *testing.T) {
		pool, l := newTestPool(t, entropy.Fixed(0))
		if err := pool.Enter(ctx, "carol", models.MinimumStake); err != nil {
			t.Fatal(err)
		}
		before := mustBalance(t, l, "carol")

		runAutoDraw(ctx, pool)

		if len(pool.GetPlayers()) != 0 {
			t.Errorf("Expected pool to be reset, got %v", pool.GetPlayers())
		}
		if got := mustBalance(t, l, "carol") - before; got != models.MinimumStake {
			t.Errorf("Expected carol to gain %s, got %s", models.MinimumStake, got)
		}
	})

	t.Run("does nothing after cancellation", func(t *testing.T) {
		pool, _ := newTestPool(t, entropy.Fixed(0))
		if err := pool.Enter(ctx, "carol", models.MinimumStake); err != nil {
			t.Fatal(err)
		}
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		runAutoDraw(cancelled, pool)
		if len(pool.GetPlayers()) != 1 {
			t.Errorf("Expected the entry to remain, got %v", pool.GetPlayers())
		}
	})
}

func TestStartAutoDraw(t *testing.T) {
	pool, _ := newTestPool(t, entropy.Fixed(0))

	if _, err := StartAutoDraw(context.Background(), pool, 0); err == nil {
		t.Fatal("Expected an error for a zero interval")
	}

	sched, err := StartAutoDraw(context.Background(), pool, time.Hour)
	if err != nil {
		t.Fatalf("StartAutoDraw: %v", err)
	}
	if n := len(sched.Jobs()); n != 1 {
		t.Errorf("Expected 1 scheduled job, got %d", n)
	}
	if err := sched.Shutdown(); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
