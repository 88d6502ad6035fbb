package ontology

import (
	"crypto/sha256"
	"math"
	"sort"
	"strings"
)

// Source-given scoring constants. They have no documented derivation and are
// deliberately preserved rather than re-tuned; override via Config if needed.
const (
	// DefaultDim is the synthetic embedding length, matching the dimension
	// of the real embedding model the matcher stands in for.
	DefaultDim = 1536

	// DefaultMaxCandidates bounds the candidate phrase set. The cap is a
	// contract that bounds worst-case work, not an approximation to fix.
	DefaultMaxCandidates = 220

	// DefaultThreshold is the minimum confidence a hit must clear.
	DefaultThreshold = 0.78

	// DefaultExactAliasScore is the fixed confidence assigned when a phrase
	// equals an entry alias exactly, overriding geometric similarity.
	DefaultExactAliasScore = 0.92

	// DefaultMaxPerDomain caps how many hits a single domain block may keep.
	DefaultMaxPerDomain = 4

	// snippetLimit is the maximum evidence snippet length in characters.
	snippetLimit = 80
)

// TechHint is one inferred technology, produced fresh per matching call and
// never persisted.
type TechHint struct {
	// CanonicalName is the matched ontology entry's primary key.
	CanonicalName string `json:"canonical_name"`

	// DomainBlock is the entry's coarse category.
	DomainBlock string `json:"domain_block"`

	// SubtechOf names the parent entry, when the entry has one.
	SubtechOf string `json:"subtech_of,omitempty"`

	// Confidence is the match score in [0,1].
	Confidence float64 `json:"confidence"`

	// EvidenceSnippet is the matched phrase, at most 80 characters.
	EvidenceSnippet string `json:"evidence_snippet"`
}

// Config holds the matcher's tunable constants. The zero value of each field
// falls back to the source-given default.
type Config struct {
	// Dim is the synthetic embedding length.
	Dim int
	// MaxCandidates caps the candidate phrase set.
	MaxCandidates int
	// Threshold is the minimum confidence to keep a hit.
	Threshold float64
	// ExactAliasScore is the fixed score for exact alias matches.
	ExactAliasScore float64
}

// Matcher scores candidate phrases against the ontology using deterministic
// synthetic embeddings. It is immutable after construction and safe for
// concurrent use.
type Matcher struct {
	cfg Config

	// entryVectors holds the precomputed synthetic embedding of each table
	// row, parallel to Entries().
	entryVectors [][]float64
}

// NewMatcher constructs a Matcher, precomputing the synthetic embedding of
// every ontology entry from its canonical name joined with its aliases.
func NewMatcher(cfg Config) *Matcher {
	if cfg.Dim <= 0 {
		cfg.Dim = DefaultDim
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.ExactAliasScore <= 0 {
		cfg.ExactAliasScore = DefaultExactAliasScore
	}

	m := &Matcher{cfg: cfg}
	m.entryVectors = make([][]float64, len(entries))
	for i, e := range entries {
		m.entryVectors[i] = m.embed(e.CanonicalName + " " + strings.Join(e.Aliases, " "))
	}
	return m
}

// defaultMatcher backs the package-level RetrieveHints convenience.
var defaultMatcher = NewMatcher(Config{})

// RetrieveHints runs the default matcher over text. maxPerDomain <= 0 falls
// back to DefaultMaxPerDomain.
func RetrieveHints(text string, maxPerDomain int) []TechHint {
	return defaultMatcher.RetrieveHints(text, maxPerDomain)
}

// RetrieveHints infers which ontology entries are evidenced in text.
//
// Candidate phrases are every unigram, bigram, and trigram of the normalized
// text plus every alias appearing as a substring, deduplicated in insertion
// order and capped. Each phrase is scored against each entry: a phrase equal
// to one of the entry's aliases scores ExactAliasScore, otherwise the score
// is the cosine similarity of the two synthetic embeddings rescaled from
// [-1,1] into [0,1]. Hits below Threshold are discarded, one best hit is
// kept per canonical name, each domain block keeps at most maxPerDomain hits,
// and the flattened result is sorted descending by confidence with ties left
// in per-domain order.
//
// Identical input always yields identical output — the matcher never
// iterates a map without an ordering slice.
func (m *Matcher) RetrieveHints(text string, maxPerDomain int) []TechHint {
	if maxPerDomain <= 0 {
		maxPerDomain = DefaultMaxPerDomain
	}

	phrases := m.extractCandidates(text)

	var scored []TechHint
	for _, phrase := range phrases {
		phraseVec := m.embed(phrase)
		for i, e := range entries {
			score := 0.0
			if containsExact(e.Aliases, phrase) {
				score = m.cfg.ExactAliasScore
			} else {
				score = rescaledCosine(phraseVec, m.entryVectors[i])
			}
			if score < m.cfg.Threshold {
				continue
			}
			scored = append(scored, TechHint{
				CanonicalName:   e.CanonicalName,
				DomainBlock:     e.DomainBlock,
				SubtechOf:       e.SubtechOf,
				Confidence:      score,
				EvidenceSnippet: truncate(phrase, snippetLimit),
			})
		}
	}

	// One hit per canonical name, keeping the highest confidence.
	// First-seen key order is preserved for the grouping step.
	best := make(map[string]TechHint, len(scored))
	var nameOrder []string
	for _, hint := range scored {
		key := strings.ToLower(hint.CanonicalName)
		prev, seen := best[key]
		if !seen {
			nameOrder = append(nameOrder, key)
			best[key] = hint
			continue
		}
		if hint.Confidence > prev.Confidence {
			best[key] = hint
		}
	}

	// Group by domain block in first-seen order.
	groups := make(map[string][]TechHint)
	var domainOrder []string
	for _, key := range nameOrder {
		hint := best[key]
		if _, seen := groups[hint.DomainBlock]; !seen {
			domainOrder = append(domainOrder, hint.DomainBlock)
		}
		groups[hint.DomainBlock] = append(groups[hint.DomainBlock], hint)
	}

	var out []TechHint
	for _, domain := range domainOrder {
		group := groups[domain]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Confidence > group[j].Confidence
		})
		if len(group) > maxPerDomain {
			group = group[:maxPerDomain]
		}
		out = append(out, group...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// normalize lowercases text, collapses whitespace runs to single spaces, and
// trims the result.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// extractCandidates returns the deduplicated candidate phrase list: all
// uni/bi/trigrams in token-scan order, then substring-matched aliases, capped
// at MaxCandidates.
func (m *Matcher) extractCandidates(text string) []string {
	normalized := normalize(text)
	if normalized == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var phrases []string
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		phrases = append(phrases, p)
	}

	words := strings.Split(normalized, " ")
	for i := range words {
		add(words[i])
		if i+1 < len(words) {
			add(words[i] + " " + words[i+1])
		}
		if i+2 < len(words) {
			add(words[i] + " " + words[i+1] + " " + words[i+2])
		}
	}

	for _, e := range entries {
		for _, alias := range e.Aliases {
			if strings.Contains(normalized, alias) {
				add(alias)
			}
		}
	}

	if len(phrases) > m.cfg.MaxCandidates {
		phrases = phrases[:m.cfg.MaxCandidates]
	}
	return phrases
}

// embed produces the deterministic synthetic embedding of text: the sha256
// digest of its UTF-8 bytes, with digest byte i mod 32 mapped into [-1,1] for
// each of the Dim output positions. Identical text yields a bit-identical
// vector; the result carries no learned semantics, only reproducibility.
func (m *Matcher) embed(text string) []float64 {
	h := sha256.Sum256([]byte(text))
	out := make([]float64, m.cfg.Dim)
	for i := range out {
		out[i] = float64(h[i%len(h)])/255*2 - 1
	}
	return out
}

// rescaledCosine maps the cosine similarity of a and b from [-1,1] into
// [0,1], clamped. Mismatched lengths and zero vectors score 0.
func rescaledCosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0
	}
	cos := dot / den
	return math.Max(0, math.Min(1, (cos+1)/2))
}

// containsExact reports whether phrase equals one of the aliases.
func containsExact(aliases []string, phrase string) bool {
	for _, alias := range aliases {
		if alias == phrase {
			return true
		}
	}
	return false
}

// truncate cuts s to at most limit characters.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
