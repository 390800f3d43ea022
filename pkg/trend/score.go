package trend

import "strings"

// Scorer computes the weighted composite score of a cluster. All
// configuration is assumed validated; the scorer applies it as-is.
type Scorer struct {
	rankWeight      float64
	frequencyWeight float64
	keywordWeight   float64
	platformWeights map[string]float64
	keywords        map[string]float64
	windowDays      int
	maxRank         int
}

// ScorerOptions configures a Scorer.
type ScorerOptions struct {
	RankWeight      float64
	FrequencyWeight float64
	KeywordWeight   float64
	PlatformWeights map[string]float64
	Keywords        map[string]float64
	WindowDays      int
	MaxRank         int
}

// NewScorer creates a scorer. Keyword matching is case-insensitive.
func NewScorer(opts ScorerOptions) *Scorer {
	if opts.WindowDays < 1 {
		opts.WindowDays = 1
	}
	if opts.MaxRank < 1 {
		opts.MaxRank = 50
	}
	keywords := make(map[string]float64, len(opts.Keywords))
	for kw, w := range opts.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords[kw] = w
		}
	}
	return &Scorer{
		rankWeight:      opts.RankWeight,
		frequencyWeight: opts.FrequencyWeight,
		keywordWeight:   opts.KeywordWeight,
		platformWeights: opts.PlatformWeights,
		keywords:        keywords,
		windowDays:      opts.WindowDays,
		maxRank:         opts.MaxRank,
	}
}

// Score computes the component scores for a cluster. frequencyCount is
// the number of distinct days the topic appeared within the trailing
// window; 0 for topics never seen before.
func (s *Scorer) Score(c Cluster, frequencyCount int) Scores {
	sc := Scores{
		Rank:      s.rankScore(c),
		Frequency: s.frequencyScore(frequencyCount),
		Keyword:   s.keywordScore(c.Title),
	}
	sc.Final = s.rankWeight*sc.Rank + s.frequencyWeight*sc.Frequency + s.keywordWeight*sc.Keyword
	return sc
}

// rankScore is the platform-weighted mean of per-member position
// scores, so a topic near the top of several lists beats a topic
// ranked first on a single low-weight platform.
func (s *Scorer) rankScore(c Cluster) float64 {
	if len(c.Members) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range c.Members {
		pos := float64(s.maxRank - m.Rank + 1)
		if pos < 0 {
			pos = 0
		}
		sum += pos / float64(s.maxRank) * s.platformWeight(m.PlatformID)
	}
	return sum / float64(len(c.Members))
}

func (s *Scorer) frequencyScore(count int) float64 {
	score := float64(count) / float64(s.windowDays)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// keywordScore sums the weight of every configured keyword found in the
// lowercase title, each keyword counted once.
func (s *Scorer) keywordScore(title string) float64 {
	lower := strings.ToLower(title)
	sum := 0.0
	for kw, w := range s.keywords {
		if strings.Contains(lower, kw) {
			sum += w
		}
	}
	return sum
}

func (s *Scorer) platformWeight(id string) float64 {
	if w, ok := s.platformWeights[id]; ok {
		return w
	}
	return 1.0
}
