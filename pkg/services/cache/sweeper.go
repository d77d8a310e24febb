package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type SweeperConfig struct {
	Interval     time.Duration
	InitialDelay time.Duration
}

func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:     time.Hour,
		InitialDelay: time.Minute,
	}
}

type expiredClearer interface {
	ClearExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically removes expired rows from the result cache.
type Sweeper struct {
	cache  expiredClearer
	config SweeperConfig
	done   chan struct{}
}

func NewSweeper(c expiredClearer, config SweeperConfig) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}
	return &Sweeper{
		cache:  c,
		config: config,
		done:   make(chan struct{}),
	}
}

func (s *Sweeper) Done() <-chan struct{} {
	return s.done
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	defer close(s.done)
	logger := zerolog.Ctx(ctx).With().Str("component", "cache_sweeper").Logger()

	delay := time.NewTimer(s.config.InitialDelay)
	defer delay.Stop()
	select {
	case <-ctx.Done():
		return
	case <-delay.C:
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		s.sweep(logger.WithContext(ctx), &logger)

		select {
		case <-ctx.Done():
			logger.Info().Msg("cache sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context, logger *zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Err(fmt.Errorf("panic: %v", r)).Msg("cache sweep panicked")
		}
	}()

	n, err := s.cache.ClearExpired(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to clear expired cache entries")
		return
	}
	if n > 0 {
		logger.Info().Int64("deleted", n).Msg("cleared expired cache entries")
	}
}
