package trend

import (
	"time"

	"go.uber.org/zap"

	"github.com/elonfeng/hotradar/internal/window"
	"github.com/elonfeng/hotradar/pkg/platform"
)

// Options configures the aggregation engine. Values are assumed
// validated by the config layer before they reach the engine.
type Options struct {
	RankWeight          float64
	FrequencyWeight     float64
	KeywordWeight       float64
	PlatformWeights     map[string]float64
	PlatformPriority    map[string]int
	Keywords            map[string]float64
	WindowDays          int
	TopN                int
	MaxRank             int
	SimilarityThreshold float64
	MaxTitleLength      int
	BoilerplateTokens   []string
}

// Engine runs the per-run aggregation pipeline: normalize, cluster,
// consult and update window history, score, rank. It performs no
// network I/O and no output formatting.
type Engine struct {
	norm       *Normalizer
	dedup      *Deduper
	scorer     *Scorer
	window     window.Store
	windowDays int
	topN       int
	log        *zap.Logger
}

// Result is the outcome of one engine run.
type Result struct {
	Date         time.Time
	Items        []RankedItem
	ItemCount    int
	ClusterCount int
	// Degraded is set when window state could not be persisted: this
	// run's scores are still valid, the next run just misses today's
	// frequency update.
	Degraded bool
}

// NewEngine creates an engine over the given window store.
func NewEngine(ws window.Store, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	windowDays := opts.WindowDays
	if windowDays < 1 {
		windowDays = 1
	}
	return &Engine{
		norm:  NewNormalizer(opts.MaxTitleLength, opts.BoilerplateTokens),
		dedup: NewDeduper(opts.SimilarityThreshold, opts.PlatformPriority),
		scorer: NewScorer(ScorerOptions{
			RankWeight:      opts.RankWeight,
			FrequencyWeight: opts.FrequencyWeight,
			KeywordWeight:   opts.KeywordWeight,
			PlatformWeights: opts.PlatformWeights,
			Keywords:        opts.Keywords,
			WindowDays:      windowDays,
			MaxRank:         opts.MaxRank,
		}),
		window:     ws,
		windowDays: windowDays,
		topN:       opts.TopN,
		log:        log,
	}
}

// Run aggregates one run's fetched items into a ranked list. Platforms
// that failed to fetch are simply absent from items. An empty input
// yields an empty ranked list, not an error.
func (e *Engine) Run(items []platform.RawItem, today time.Time) (*Result, error) {
	res := &Result{Date: today}

	normalized := e.normalizeAll(items)
	res.ItemCount = len(normalized)
	if len(normalized) == 0 {
		return res, nil
	}

	clusters := e.dedup.Group(normalized)
	res.ClusterCount = len(clusters)

	if err := e.window.Load(today, e.windowDays); err != nil {
		// No prior history; frequency scores default to zero.
		e.log.Warn("window load failed, scoring without history", zap.Error(err))
	}

	// Historical counts and first-seen dates are read before today is
	// recorded, so a topic never seen before scores frequency 0.
	scored := make([]RankedItem, 0, len(clusters))
	for i := range clusters {
		c := clusters[i]
		if first, ok := e.earliestSeen(c); ok && first.Before(c.FirstSeen) {
			c.FirstSeen = first
		}
		scored = append(scored, RankedItem{
			Cluster: c,
			Scores:  e.scorer.Score(c, e.window.Count(c.Key)),
		})
	}

	e.window.Record(todayKeys(clusters), today)
	res.Items = Rank(scored, e.topN)

	if err := e.window.Persist(); err != nil {
		e.log.Error("window persist failed, next run loses today's frequency update", zap.Error(err))
		res.Degraded = true
	}
	return res, nil
}

// normalizeAll normalizes raw items, skipping anomalies: items with no
// platform, no usable title, or a non-positive rank position.
func (e *Engine) normalizeAll(items []platform.RawItem) []NormalizedItem {
	out := make([]NormalizedItem, 0, len(items))
	for _, raw := range items {
		if raw.PlatformID == "" || raw.Rank <= 0 {
			continue
		}
		n := e.norm.Normalize(raw)
		if n.Title == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

// earliestSeen returns the earliest window-store date across the
// cluster's member keys.
func (e *Engine) earliestSeen(c Cluster) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, key := range c.MemberKeys() {
		t, ok := e.window.FirstSeen(key)
		if !ok {
			continue
		}
		if !found || t.Before(earliest) {
			earliest = t
			found = true
		}
	}
	return earliest, found
}

// todayKeys collects the distinct member keys across all clusters.
func todayKeys(clusters []Cluster) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, c := range clusters {
		for _, k := range c.MemberKeys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}
