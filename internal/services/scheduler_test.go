package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dangtran89/finwatch/internal/models"
)

// stubResolver counts concurrent resolutions and can fail chosen symbols.
type stubResolver struct {
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	calls       atomic.Int64
	delay       time.Duration
	failSymbols map[string]bool
}

func (r *stubResolver) Resolve(ctx context.Context, asset *models.Asset) (decimal.Decimal, error) {
	cur := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		peak := r.maxInFlight.Load()
		if cur <= peak || r.maxInFlight.CompareAndSwap(peak, cur) {
			break
		}
	}
	r.calls.Add(1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.failSymbols[asset.Symbol] {
		return decimal.Zero, errors.New("resolution failed")
	}
	return decimal.NewFromInt(100), nil
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	s := NewPriceScheduler(time.Hour, repo, &stubResolver{}, zap.NewNop())

	s.Start()
	s.Start()
	require.True(t, s.Running())

	s.Stop()
	require.False(t, s.Running())
	s.Stop() // stopping again is harmless
}

func TestSchedulerPassesNeverOverlap(t *testing.T) {
	repo := newTestRepo(t)
	mustCreateAsset(t, repo, models.AssetKindStock, "AAPL")
	mustCreateAsset(t, repo, models.AssetKindStock, "MSFT")

	// each pass takes ~40ms while ticks fire every 5ms
	resolver := &stubResolver{delay: 20 * time.Millisecond}
	s := NewPriceScheduler(5*time.Millisecond, repo, resolver, zap.NewNop())

	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	require.Greater(t, resolver.calls.Load(), int64(0))
	require.EqualValues(t, 1, resolver.maxInFlight.Load())
}

func TestRunPassIsolatesFailures(t *testing.T) {
	repo := newTestRepo(t)
	mustCreateAsset(t, repo, models.AssetKindStock, "AAPL")
	mustCreateAsset(t, repo, models.AssetKindStock, "FAIL")
	mustCreateAsset(t, repo, models.AssetKindStock, "MSFT")
	mustCreateAsset(t, repo, models.AssetKindCrypto, "BITCOIN")

	resolver := &stubResolver{failSymbols: map[string]bool{"FAIL": true}}
	s := NewPriceScheduler(time.Hour, repo, resolver, zap.NewNop())

	updated, total := s.RunPass(context.Background())
	// crypto assets are not part of the pass
	require.Equal(t, 3, total)
	require.Equal(t, 2, updated)
	require.EqualValues(t, 3, resolver.calls.Load())
}

func TestRunPassStopsOnCancel(t *testing.T) {
	repo := newTestRepo(t)
	for _, sym := range []string{"A", "B", "C"} {
		mustCreateAsset(t, repo, models.AssetKindStock, sym)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := &stubResolver{}
	s := NewPriceScheduler(time.Hour, repo, resolver, zap.NewNop())
	updated, _ := s.RunPass(ctx)
	require.Zero(t, updated)
	require.Zero(t, resolver.calls.Load())
}
