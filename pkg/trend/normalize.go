package trend

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/elonfeng/hotradar/pkg/platform"
)

const defaultMaxTitleLength = 80

// Normalizer canonicalizes raw titles for display and derives the
// matching key used by the deduplicator. Normalize is a pure function:
// it never fails, and applying it to its own output is a no-op.
type Normalizer struct {
	maxTitleLen int
	boilerplate []string
}

// NewNormalizer creates a normalizer. boilerplate lists platform filler
// tokens (e.g. "直播", "热议") removed from keys before comparison.
func NewNormalizer(maxTitleLen int, boilerplate []string) *Normalizer {
	if maxTitleLen <= 0 {
		maxTitleLen = defaultMaxTitleLength
	}
	cleaned := make([]string, 0, len(boilerplate))
	for _, tok := range boilerplate {
		tok = strings.ToLower(width.Fold.String(strings.TrimSpace(tok)))
		if tok != "" {
			cleaned = append(cleaned, tok)
		}
	}
	return &Normalizer{maxTitleLen: maxTitleLen, boilerplate: cleaned}
}

// Normalize converts a raw platform item into a NormalizedItem.
// Empty titles produce an empty key; callers decide whether to skip them.
func (n *Normalizer) Normalize(raw platform.RawItem) NormalizedItem {
	title := n.CanonicalTitle(raw.Title)
	return NormalizedItem{
		PlatformID: raw.PlatformID,
		Title:      title,
		Key:        n.Key(title),
		Rank:       raw.Rank,
		URL:        raw.URL,
		FetchedAt:  raw.FetchedAt,
	}
}

// CanonicalTitle decodes HTML entities, strips control characters,
// collapses whitespace, and truncates to the display limit.
func (n *Normalizer) CanonicalTitle(raw string) string {
	s := html.UnescapeString(raw)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	return truncate(s, n.maxTitleLen)
}

// Key derives the matching key from a canonical title: fold full-width
// forms, lowercase, replace punctuation and symbols with spaces, drop
// boilerplate tokens, and collapse whitespace.
func (n *Normalizer) Key(title string) string {
	s := width.Fold.String(title)
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	for _, tok := range n.boilerplate {
		s = strings.ReplaceAll(s, tok, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
