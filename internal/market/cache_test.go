package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asxwatch/internal/ann"
)

type countingProvider struct {
	historyCalls int
	fundCalls    int
	earningCalls int
	err          error
}

func (p *countingProvider) History(context.Context, ann.Symbol, int) ([]Bar, error) {
	p.historyCalls++
	if p.err != nil {
		return nil, p.err
	}
	return []Bar{{Close: 1.0, Volume: 100}}, nil
}

func (p *countingProvider) Fundamentals(context.Context, ann.Symbol) (Fundamentals, error) {
	p.fundCalls++
	if p.err != nil {
		return Fundamentals{}, p.err
	}
	return Fundamentals{MarketCap: 1e8}, nil
}

func (p *countingProvider) Earnings(context.Context, ann.Symbol) ([]EarningsPeriod, error) {
	p.earningCalls++
	if p.err != nil {
		return nil, p.err
	}
	return []EarningsPeriod{{Period: "1Q2026", Actual: 0.1}}, nil
}

func TestCacheHit(t *testing.T) {
	inner := &countingProvider{}
	c := NewCache(inner, time.Minute)
	ctx := context.Background()
	sym := ann.NewSymbol("BHP")

	for i := 0; i < 3; i++ {
		_, err := c.History(ctx, sym, 60)
		require.NoError(t, err)
		_, err = c.Fundamentals(ctx, sym)
		require.NoError(t, err)
		_, err = c.Earnings(ctx, sym)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, inner.historyCalls)
	assert.Equal(t, 1, inner.fundCalls)
	assert.Equal(t, 1, inner.earningCalls)
}

func TestCacheKeyIncludesDays(t *testing.T) {
	inner := &countingProvider{}
	c := NewCache(inner, time.Minute)
	ctx := context.Background()
	sym := ann.NewSymbol("BHP")

	_, err := c.History(ctx, sym, 60)
	require.NoError(t, err)
	_, err = c.History(ctx, sym, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.historyCalls)
}

func TestCacheExpiry(t *testing.T) {
	inner := &countingProvider{}
	c := NewCache(inner, time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	sym := ann.NewSymbol("BHP")

	_, err := c.History(ctx, sym, 60)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.History(ctx, sym, 60)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.historyCalls)
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("boom")}
	c := NewCache(inner, time.Minute)
	ctx := context.Background()
	sym := ann.NewSymbol("BHP")

	_, err := c.Fundamentals(ctx, sym)
	require.Error(t, err)
	_, err = c.Fundamentals(ctx, sym)
	require.Error(t, err)

	assert.Equal(t, 2, inner.fundCalls)
}
