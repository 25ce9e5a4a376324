package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization so NormalizePath stays cheap on the hot path.
var pathPatterns = []*PathPattern{
	// Feed routes with IDs (specific sub-resources first)
	{Pattern: regexp.MustCompile(`^/api/feeds/\d+/process$`), Template: "/api/feeds/:id/process"},
	{Pattern: regexp.MustCompile(`^/api/feeds/\d+$`), Template: "/api/feeds/:id"},

	// Article routes with IDs
	{Pattern: regexp.MustCompile(`^/api/articles/\d+$`), Template: "/api/articles/:id"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /api/articles/123) to template format
// (e.g., /api/articles/:id). Static paths remain unchanged.
//
// Examples:
//
//	NormalizePath("/api/articles/123")        // "/api/articles/:id"
//	NormalizePath("/api/feeds/7")             // "/api/feeds/:id"
//	NormalizePath("/api/feeds/7/process")     // "/api/feeds/:id/process"
//	NormalizePath("/api/feeds/stats")         // "/api/feeds/stats" (unchanged)
//	NormalizePath("/health")                  // "/health" (unchanged)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/api/articles?limit=10")   // "/api/articles"
//	NormalizePath("/api/articles/123/")       // "/api/articles/:id"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// No match found, return as-is. Static paths like /health, /metrics and
	// /api/feeds/stats pass through unchanged.
	return path
}
