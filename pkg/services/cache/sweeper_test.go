package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flakyClearer struct {
	calls atomic.Int32
}

func (f *flakyClearer) ClearExpired(context.Context) (int64, error) {
	switch f.calls.Add(1) {
	case 1:
		return 0, errors.New("store unavailable")
	case 2:
		panic("unexpected row")
	default:
		return 3, nil
	}
}

func TestSweeper_SurvivesFailures(t *testing.T) {
	clearer := &flakyClearer{}
	sweeper := NewSweeper(clearer, SweeperConfig{
		Interval:     5 * time.Millisecond,
		InitialDelay: time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Run(ctx)

	assert.Eventually(t, func() bool {
		return clearer.calls.Load() >= 4
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-sweeper.Done():
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSweeper_StopsDuringInitialDelay(t *testing.T) {
	clearer := &flakyClearer{}
	sweeper := NewSweeper(clearer, SweeperConfig{Interval: time.Hour, InitialDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Run(ctx)
	cancel()

	select {
	case <-sweeper.Done():
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
	assert.Equal(t, int32(0), clearer.calls.Load())
}
