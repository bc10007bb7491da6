package rates

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

// ErrRateUnavailable is returned when no benchmark rate can be fetched.
// Consumers fall back to a hardcoded rate and must say so in reports.
var ErrRateUnavailable = errors.New("market rate unavailable")

// Provider yields the annual yield benchmark used for opportunity-cost
// calculations.
type Provider interface {
	AnnualRate() (models.MarketRate, error)
}

// StaticProvider always returns the same rate. Useful in tests and for
// offline runs.
type StaticProvider struct {
	Rate models.MarketRate
}

func (p StaticProvider) AnnualRate() (models.MarketRate, error) {
	return p.Rate, nil
}

// CachedProvider memoizes another provider's rate. The key rate changes
// a handful of times a year, so a half-day TTL loses nothing. When a
// refresh fails and a stale value exists, the stale value is served.
type CachedProvider struct {
	inner  Provider
	ttl    time.Duration
	logger *logrus.Logger

	mu        sync.RWMutex
	rate      models.MarketRate
	fetchedAt time.Time
}

// DefaultCacheTTL keeps fetched rates for half a day.
const DefaultCacheTTL = 12 * time.Hour

func NewCachedProvider(inner Provider, ttl time.Duration, logger *logrus.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &CachedProvider{inner: inner, ttl: ttl, logger: logger}
}

func (p *CachedProvider) AnnualRate() (models.MarketRate, error) {
	p.mu.RLock()
	if !p.fetchedAt.IsZero() && time.Since(p.fetchedAt) < p.ttl {
		rate := p.rate
		p.mu.RUnlock()
		return rate, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.fetchedAt.IsZero() && time.Since(p.fetchedAt) < p.ttl {
		return p.rate, nil
	}

	rate, err := p.inner.AnnualRate()
	if err != nil {
		if !p.fetchedAt.IsZero() {
			p.logger.WithError(err).Warn("Rate refresh failed, serving stale value")
			return p.rate, nil
		}
		return models.MarketRate{}, err
	}

	p.rate = rate
	p.fetchedAt = time.Now()
	p.logger.WithFields(logrus.Fields{
		"annual_rate": rate.AnnualRate,
		"source":      rate.Source,
	}).Info("Market rate refreshed")
	return rate, nil
}
