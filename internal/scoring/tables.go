package scoring

// Keyword tables driving the heuristic scorers. All matching is done by
// substring presence against lowercased input; tables are ordered slices so
// iteration order (and the region tie-break) stays deterministic.

// leftBiasTerms and rightBiasTerms are the two opposing vocabularies the
// bias scorer counts. The lists are small, English-only and tied to one
// political context; only the count-to-score arithmetic is load-bearing.
var (
	leftBiasTerms = []string{
		"progressive", "liberal", "democrat", "socialism",
		"green new deal", "universal healthcare",
	}
	rightBiasTerms = []string{
		"conservative", "republican", "trump",
		"tax cuts", "border wall", "deregulation",
	}
)

// propagandaIndicators are absolutist and sensational markers. The two
// uppercase entries are kept verbatim even though matching is performed on
// lowercased text and they can therefore never fire.
var propagandaIndicators = []string{
	"must", "always", "never", "every", "all", "none", "everyone", "nobody",
	"undoubtedly", "certainly", "absolutely", "obviously", "clearly", "definitely",
	"!!", "??", "BREAKING", "EXCLUSIVE",
}

// topicTable maps topic tags to their trigger keywords, matched against the
// combined title and body text.
var topicTable = []struct {
	Topic    string
	Keywords []string
}{
	{"politics", []string{"politics", "government", "election", "president", "congress", "senate", "democracy"}},
	{"business", []string{"business", "economy", "market", "stock", "finance", "company", "industry"}},
	{"technology", []string{"technology", "tech", "ai", "software", "hardware", "internet", "app", "digital"}},
	{"science", []string{"science", "research", "study", "discovery", "scientist", "physics", "chemistry", "biology"}},
	{"health", []string{"health", "medical", "medicine", "disease", "doctor", "patient", "hospital", "wellness"}},
	{"sports", []string{"sports", "game", "team", "player", "tournament", "championship", "league", "score"}},
	{"entertainment", []string{"entertainment", "movie", "film", "music", "celebrity", "actor", "director", "tv", "television"}},
	{"world", []string{"world", "international", "global", "foreign", "country", "nation", "diplomatic", "crisis"}},
}

// regionTable maps region tags to their trigger keywords. The first
// matching entry wins, so table order is the tie-break.
var regionTable = []struct {
	Region   string
	Keywords []string
}{
	{"north_america", []string{"united states", "u.s.", "us", "america", "canada", "mexico"}},
	{"europe", []string{"europe", "european union", "eu", "uk", "britain", "germany", "france", "italy", "spain"}},
	{"asia", []string{"asia", "china", "japan", "india", "korea", "singapore", "thailand", "vietnam"}},
	{"middle_east", []string{"middle east", "israel", "palestine", "iran", "iraq", "saudi arabia", "turkey"}},
	{"africa", []string{"africa", "nigeria", "egypt", "south africa", "kenya", "ethiopia"}},
	{"south_america", []string{"south america", "brazil", "argentina", "colombia", "chile", "peru"}},
	{"oceania", []string{"australia", "new zealand", "pacific", "oceania"}},
}

// FallbackTopic tags articles whose text matched no topic keywords.
const FallbackTopic = "uncategorized"
