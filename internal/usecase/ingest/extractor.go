package ingest

import (
	"context"
	"errors"
)

// Extraction is the result of pulling readable content out of an article
// page. Text is the cleaned article body without markup; Author and ImageURL
// are nil when the page does not expose them.
type Extraction struct {
	Text     string
	Author   *string
	ImageURL *string
}

// Extractor is an interface for extracting clean article content from URLs.
// Implementations pull the readable text out of a web page using an
// extraction algorithm (e.g., Mozilla Readability, DOM heuristics).
//
// Security considerations:
//   - Implementations MUST prevent Server-Side Request Forgery (SSRF) attacks
//   - Implementations MUST enforce size limits to prevent memory exhaustion
//   - Implementations MUST enforce timeouts to prevent resource starvation
//   - Implementations MUST validate redirect targets
type Extractor interface {
	// Extract fetches the page at the given URL and extracts its article
	// content. The returned Extraction is non-nil whenever err is nil; an
	// empty Text means the page had no readable body.
	//
	// Errors:
	//   - ErrInvalidURL: URL format is invalid or uses unsupported scheme
	//   - ErrPrivateIP: URL resolves to a private IP address (SSRF prevention)
	//   - ErrTooManyRedirects: Redirect chain exceeds configured maximum
	//   - ErrBodyTooLarge: Response body exceeds size limit
	//   - ErrTimeout: Request timed out
	//   - ErrExtractionFailed: Content extraction failed
	//
	// Callers should treat any error as recoverable: the article is stored
	// with its feed summary only.
	Extract(ctx context.Context, articleURL string) (*Extraction, error)
}

// Sentinel errors for content extraction operations.
// These errors allow callers to distinguish between different failure modes.
var (
	// ErrInvalidURL indicates the URL format is invalid or uses an unsupported
	// scheme. Only http:// and https:// are supported.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private IP address.
	// This error prevents Server-Side Request Forgery (SSRF) attacks.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured
	// maximum. This prevents infinite redirect loops.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	// This prevents memory exhaustion from oversized responses.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrExtractionFailed indicates the page was fetched but no readable
	// article content could be extracted from it.
	ErrExtractionFailed = errors.New("content extraction failed")
)
