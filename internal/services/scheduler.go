package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dangtran89/finwatch/internal/models"
	"github.com/dangtran89/finwatch/internal/repositories"
)

// PriceScheduler periodically resolves prices for all tracked stock assets.
// Passes run sequentially on a single goroutine, so two passes can never
// overlap; ticks that fire while a pass is still running are dropped.
type PriceScheduler struct {
	interval time.Duration
	repo     repositories.AssetRepository
	resolver PriceResolver
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewPriceScheduler(interval time.Duration, repo repositories.AssetRepository, resolver PriceResolver, logger *zap.Logger) *PriceScheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &PriceScheduler{
		interval: interval,
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

// Start launches the polling loop. Starting a running scheduler is a no-op.
func (s *PriceScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Info("price scheduler already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("price scheduler started", zap.Duration("interval", s.interval))
}

// Stop halts future firings. An in-flight pass is interrupted at its next
// provider call via context cancellation.
func (s *PriceScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("price scheduler stopped")
}

// Running reports whether the scheduler is started.
func (s *PriceScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *PriceScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunPass(ctx)
		}
	}
}

// RunPass resolves every stock asset once, sequentially. A failure on one
// asset never aborts the pass; the pass reports successes against total.
func (s *PriceScheduler) RunPass(ctx context.Context) (updated, total int) {
	assets, err := s.repo.ListByKind(ctx, models.AssetKindStock)
	if err != nil {
		s.logger.Error("failed to list stock assets", zap.Error(err))
		return 0, 0
	}

	for _, asset := range assets {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.resolver.Resolve(ctx, asset); err != nil {
			s.logger.Warn("price resolution failed",
				zap.String("symbol", asset.Symbol),
				zap.Error(err))
			continue
		}
		updated++
	}

	s.logger.Info("price pass completed",
		zap.Int("updated", updated),
		zap.Int("total", len(assets)))
	return updated, len(assets)
}
