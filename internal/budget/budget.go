// Package budget provides token budget estimation for embedding inputs.
// Because semctx supports multiple embedding backends with different
// tokenizers, this package uses a conservative character-based heuristic:
// 1 token ≈ 4 characters (English prose and Dutch business text). This
// deliberately under-estimates token counts to leave headroom for
// model-specific overhead.
package budget

import "fmt"

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English and code; using 3
	// would be more aggressive but risks exceeding backend input limits.
	charsPerToken = 4

	// DefaultMaxEmbedTokens is the default input budget for one embedding
	// call. Conservative enough to fit within the 8192-token limit of
	// text-embedding-3-large while leaving room for tokenizer variance.
	DefaultMaxEmbedTokens = 7500
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// Check returns an error when s is estimated to exceed maxTokens.
// A maxTokens of zero or less falls back to DefaultMaxEmbedTokens.
func Check(s string, maxTokens int) error {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxEmbedTokens
	}
	if got := Estimate(s); got > maxTokens {
		return fmt.Errorf("budget: text estimated at %d tokens exceeds the %d token limit", got, maxTokens)
	}
	return nil
}

// Truncate cuts s down so its estimated token count fits within maxTokens.
// The cut falls on a byte boundary of the heuristic, not a word boundary;
// callers that need clean prose should trim beforehand.
func Truncate(s string, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxEmbedTokens
	}
	maxChars := maxTokens * charsPerToken
	if len(s) <= maxChars {
		return s
	}
	// Back up past any UTF-8 continuation bytes so the cut is rune-safe.
	for maxChars > 0 && s[maxChars]&0xC0 == 0x80 {
		maxChars--
	}
	return s[:maxChars]
}
