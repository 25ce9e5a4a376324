package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"balanced-news/internal/resilience/circuitbreaker"
	"balanced-news/internal/usecase/ingest"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// DOMExtractor implements ingest.Extractor with plain CSS-selector scraping.
// It is the lightweight alternative to ReadabilityExtractor for pages where
// the Readability algorithm struggles: it simply concatenates paragraph and
// heading text and picks up byline/image metadata from common markup.
//
// Extraction rules:
//   - Text: text of all p and h1-h6 elements, whitespace-normalized and
//     joined by single spaces
//   - Author: first leaf a/span/div element whose text contains "by"
//     (case-insensitive), with the leading "By"/"by" stripped
//   - Image: content attribute of meta[property="og:image"]
//
// A page without any paragraph or heading elements yields an empty Text and
// no error; callers decide what an unreadable page means.
//
// Thread safety: DOMExtractor is safe for concurrent use.
type DOMExtractor struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         ContentFetchConfig
	limiter        *rate.Limiter
}

// NewDOMExtractor creates a new DOMExtractor with the given configuration.
// The limiter is the shared outbound rate limiter; nil disables rate limiting.
func NewDOMExtractor(config ContentFetchConfig, limiter *rate.Limiter) *DOMExtractor {
	cbConfig := circuitbreaker.Config{
		Name:             "dom-extract",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}

	extractor := &DOMExtractor{
		circuitBreaker: circuitbreaker.New(cbConfig),
		config:         config,
		limiter:        limiter,
	}

	extractor.client = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= extractor.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ingest.ErrTooManyRedirects, len(via))
			}
			if err := ValidateURL(req.URL.String(), extractor.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return extractor
}

// Extract fetches the article page and scrapes its content.
// This method implements the ingest.Extractor interface.
func (e *DOMExtractor) Extract(ctx context.Context, urlStr string) (*ingest.Extraction, error) {
	if err := ValidateURL(urlStr, e.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	result, err := e.circuitBreaker.Execute(func() (interface{}, error) {
		return e.doExtract(ctx, urlStr)
	})

	if err != nil {
		return nil, err
	}

	return result.(*ingest.Extraction), nil
}

// doExtract performs the actual HTTP request and DOM scraping.
func (e *DOMExtractor) doExtract(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ingest.ErrInvalidURL, err)
	}

	req.Header.Set("User-Agent", "BalancedNewsBot/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: request exceeded %v", ingest.ErrTimeout, e.config.Timeout)
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limitedReader := io.LimitReader(resp.Body, e.config.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(htmlBytes)) > e.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			ingest.ErrBodyTooLarge, len(htmlBytes), e.config.MaxBodySize)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML: %v", ingest.ErrExtractionFailed, err)
	}

	return &ingest.Extraction{
		Text:     extractBodyText(doc),
		Author:   extractAuthor(doc),
		ImageURL: extractImage(doc),
	}, nil
}

// extractBodyText concatenates the text of paragraph and heading elements.
func extractBodyText(doc *goquery.Document) string {
	var parts []string

	doc.Find("p, h1, h2, h3, h4, h5, h6").Each(func(_ int, el *goquery.Selection) {
		// Nested markup leaves newlines and runs of spaces in Text()
		if t := strings.Join(strings.Fields(el.Text()), " "); t != "" {
			parts = append(parts, t)
		}
	})

	return strings.Join(parts, " ")
}

// extractAuthor scans for a byline element. Only leaf elements are
// considered: a wrapper div's text covers most of the page and would match
// nearly always.
func extractAuthor(doc *goquery.Document) *string {
	var author string

	doc.Find("a, span, div").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Children().Length() > 0 {
			return true
		}
		text := strings.Join(strings.Fields(el.Text()), " ")
		if text == "" || !strings.Contains(strings.ToLower(text), "by") {
			return true
		}
		author = stripBylinePrefix(text)
		return false
	})

	if author == "" {
		return nil
	}
	return &author
}

// stripBylinePrefix removes a leading "By"/"by" marker from a byline.
// Names that merely start with "By" (Byron) keep it: the marker must be
// followed by a space or colon.
func stripBylinePrefix(s string) string {
	if len(s) > 2 && strings.EqualFold(s[:2], "by") {
		if rest := s[2:]; rest[0] == ' ' || rest[0] == ':' {
			return strings.TrimSpace(strings.TrimLeft(rest, ": "))
		}
	}
	return s
}

// extractImage reads the Open Graph image URL if the page declares one.
func extractImage(doc *goquery.Document) *string {
	content, ok := doc.Find(`meta[property="og:image"]`).Attr("content")
	if !ok {
		return nil
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	return &content
}
