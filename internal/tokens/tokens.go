// Package tokens bounds text to a model's token budget before embedding.
package tokens

import (
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter reports how many model tokens a text occupies. Exact tokenization
// is model-specific, so counters are injected; callers must tolerate an
// approximate counter degrading gracefully.
type Counter func(text string) int

// ApproxCounter is a conservative character-based estimate (~4 runes per
// token, rounded up). Used when no exact encoder is available.
func ApproxCounter(text string) int {
	n := len([]rune(text))
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}

// TiktokenCounter returns an exact counter for the named encoding.
func TiktokenCounter(encoding string) (Counter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}

// DefaultCounter tries the cl100k_base encoder and falls back to the
// approximate counter if the encoding cannot be loaded.
func DefaultCounter(logger *slog.Logger) Counter {
	c, err := TiktokenCounter("cl100k_base")
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("tiktoken unavailable, using approximate token counter", "error", err)
		return ApproxCounter
	}
	return c
}

// Truncate bounds text to maxTokens. Text already within budget is returned
// unchanged, so truncation is idempotent. Otherwise whitespace-delimited
// words are accumulated greedily until the next word would exceed the
// budget; a single word that alone exceeds the budget degrades to greedy
// rune-level accumulation of that word.
func Truncate(text string, count Counter, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if count(text) <= maxTokens {
		return text
	}

	kept := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if kept != "" {
			candidate = kept + " " + word
		}
		if count(candidate) > maxTokens {
			if kept == "" {
				return truncateWord(word, count, maxTokens)
			}
			break
		}
		kept = candidate
	}
	return kept
}

// truncateWord accumulates runes of a single oversized word.
func truncateWord(word string, count Counter, maxTokens int) string {
	runes := []rune(word)
	kept := ""
	for i := 1; i <= len(runes); i++ {
		candidate := string(runes[:i])
		if count(candidate) > maxTokens {
			break
		}
		kept = candidate
	}
	return kept
}
