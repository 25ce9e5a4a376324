// Package scoring implements the heuristic text scorers that build an
// article's Classification: reading level, information density, bias,
// propaganda, topic tags and region. Every function is pure and total;
// empty or degenerate input yields the neutral default instead of an error,
// so scoring can never abort ingestion.
package scoring

import (
	"strings"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/utils/text"
)

// neutralScore is returned whenever a scorer has nothing to measure.
const neutralScore = 5

// ReadingLevel maps mean sentence length to a 1-10 scale:
// clamp(avg_words_per_sentence / 3, 1, 10). Empty or sentence-free text
// scores the neutral default.
func ReadingLevel(s string) float64 {
	if s == "" {
		return neutralScore
	}

	sentences := text.Sentences(s)
	if len(sentences) == 0 {
		return neutralScore
	}

	totalWords := 0
	for _, sentence := range sentences {
		totalWords += len(strings.Fields(sentence))
	}
	avg := float64(totalWords) / float64(len(sentences))

	return clamp(avg/3, 1, 10)
}

// InformationDensity maps the distinct-to-total word token ratio to a 1-10
// scale: clamp(ratio * 20, 1, 10). Token-free text scores the neutral
// default.
func InformationDensity(s string) float64 {
	if s == "" {
		return neutralScore
	}

	words := text.Words(strings.ToLower(s))
	if len(words) == 0 {
		return neutralScore
	}

	distinct := make(map[string]struct{}, len(words))
	for _, w := range words {
		distinct[w] = struct{}{}
	}
	ratio := float64(len(distinct)) / float64(len(words))

	return clamp(ratio*20, 1, 10)
}

// Bias scores keyword balance between the two opposing vocabularies on a
// 1-10 scale where 10 is neutral. Each term counts once if present. Equal
// counts (including zero on both sides) score exactly 10; otherwise the
// score falls with imbalance: clamp(10 - |L-R|/(L+R)*9, 1, 10).
func Bias(s string) float64 {
	if s == "" {
		return neutralScore
	}

	lowered := strings.ToLower(s)
	left := countPresent(lowered, leftBiasTerms)
	right := countPresent(lowered, rightBiasTerms)

	if left == right {
		return 10
	}

	imbalance := abs(left-right) / (left + right)
	return clamp(10-imbalance*9, 1, 10)
}

// Propaganda scores indicator density per 100 words on a 1-10 scale where
// 10 means no indicators detected: clamp(10 - density, 1, 10). Each
// indicator counts once if present. Word-free text scores the neutral
// default.
func Propaganda(s string) float64 {
	if s == "" {
		return neutralScore
	}

	lowered := strings.ToLower(s)
	indicators := countPresent(lowered, propagandaIndicators)

	wordCount := len(text.Words(lowered))
	if wordCount == 0 {
		return neutralScore
	}

	density := indicators / (float64(wordCount) / 100)
	return clamp(10-density, 1, 10)
}

// Topics tags the combined title and body text against the topic table.
// Multiple topics may co-occur; text matching no topic is tagged with the
// single fallback topic.
func Topics(title, body string) []string {
	if title == "" && body == "" {
		return []string{FallbackTopic}
	}

	combined := strings.ToLower(title + " " + body)

	var topics []string
	for _, entry := range topicTable {
		if containsAny(combined, entry.Keywords) {
			topics = append(topics, entry.Topic)
		}
	}

	if len(topics) == 0 {
		return []string{FallbackTopic}
	}
	return topics
}

// Region tags the text against the region table; the first matching table
// entry wins. Text matching no region, or empty text, falls back to the
// feed's configured region.
func Region(body, feedRegion string) string {
	if body == "" {
		return feedRegion
	}

	lowered := strings.ToLower(body)
	for _, entry := range regionTable {
		if containsAny(lowered, entry.Keywords) {
			return entry.Region
		}
	}

	return feedRegion
}

// WordCount counts the word-like tokens of the text.
func WordCount(s string) int {
	return text.WordCount(s)
}

// Classify runs the full scorer suite over an article's title and extracted
// body and assembles the resulting Classification.
func Classify(title, body, feedRegion string) entity.Classification {
	return entity.Classification{
		ReadingLevel:       ReadingLevel(body),
		InformationDensity: InformationDensity(body),
		BiasScore:          Bias(body),
		PropagandaScore:    Propaganda(body),
		WordCount:          WordCount(body),
		Topics:             Topics(title, body),
		Region:             Region(body, feedRegion),
	}
}

// countPresent counts how many terms occur in the text at least once.
func countPresent(s string, terms []string) float64 {
	var n float64
	for _, term := range terms {
		if strings.Contains(s, term) {
			n++
		}
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
