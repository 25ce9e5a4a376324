package text

import (
	"regexp"
	"strings"
)

// wordPattern matches word-like tokens: runs of letters, digits and
// underscores. Unicode letter and number classes keep accented and
// non-Latin words whole.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Words returns the word-like tokens of the text in order.
// Returns nil when the text contains no tokens.
func Words(s string) []string {
	return wordPattern.FindAllString(s, -1)
}

// WordCount counts the word-like tokens in the text.
func WordCount(s string) int {
	return len(Words(s))
}

// Sentences splits the text into sentences on '.', '!' and '?' boundaries.
// Consecutive terminators collapse into a single boundary, and segments that
// contain only whitespace are dropped. Returns nil for terminator-free
// whitespace-only input.
func Sentences(s string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(b.String())
		b.Reset()
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	for _, r := range s {
		switch r {
		case '.', '!', '?':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()

	return sentences
}
