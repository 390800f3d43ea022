package platform

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/elonfeng/hotradar/internal/metrics"
)

const maxConcurrentFetches = 5

// FetchAll fetches every platform concurrently and returns the
// combined item set. Platforms that fail are logged and omitted;
// absence from the result means "not seen this run".
func FetchAll(ctx context.Context, platforms []Platform, log *zap.Logger) []RawItem {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		mu  sync.Mutex
		all []RawItem
		wg  sync.WaitGroup
		sem = make(chan struct{}, maxConcurrentFetches)
	)

	for _, p := range platforms {
		wg.Add(1)
		go func(p Platform) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := p.Fetch(ctx)
			if err != nil {
				metrics.FetchErrorsTotal.WithLabelValues(p.ID()).Inc()
				log.Warn("platform fetch failed, omitting from this run",
					zap.String("platform", p.ID()), zap.Error(err))
				return
			}
			metrics.FetchItemsTotal.WithLabelValues(p.ID()).Add(float64(len(items)))
			log.Info("platform fetched",
				zap.String("platform", p.ID()), zap.Int("items", len(items)))

			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return all
}
