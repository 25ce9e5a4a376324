// Package paywall detects subscription walls on article pages.
package paywall

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"balanced-news/internal/infra/fetcher"
	"balanced-news/internal/observability/metrics"

	"golang.org/x/time/rate"
)

// indicators is the fixed paywall vocabulary. Detection is a lowercase
// substring scan of the page body against this list.
var indicators = []string{
	"subscribe now",
	"subscription required",
	"pay wall",
	"paywall",
	"subscribe to continue",
	"premium content",
	"premium article",
	"to continue reading",
	"create an account to read",
}

// Detector probes article pages for subscription walls. It implements the
// pipeline's paywall detection interface: Detect returns a plain bool and
// treats every failure as "not paywalled" (fail open), so a flaky site can
// degrade detection but never stall ingestion. Probe failures stay visible
// through the paywall check metrics.
//
// The probe shares the outbound fetch guardrails with the extraction
// strategies: URL SSRF validation, redirect validation, TLS 1.2+, timeout,
// bounded body read and the shared rate limiter.
//
// Thread safety: Detector is safe for concurrent use.
type Detector struct {
	client  *http.Client
	config  fetcher.ContentFetchConfig
	limiter *rate.Limiter
}

// NewDetector creates a Detector with the given fetch configuration.
// The limiter is the outbound rate limiter shared with content extraction;
// nil disables rate limiting.
func NewDetector(config fetcher.ContentFetchConfig, limiter *rate.Limiter) *Detector {
	detector := &Detector{
		config:  config,
		limiter: limiter,
	}

	detector.client = &http.Client{
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
			if len(via) >= detector.config.MaxRedirects {
				return fmt.Errorf("too many redirects: %d", len(via))
			}
			if err := fetcher.ValidateURL(req.URL.String(), detector.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return detector
}

// Detect reports whether the page at articleURL shows a subscription wall.
// Any failure returns false.
func (d *Detector) Detect(ctx context.Context, articleURL string) bool {
	body, err := d.fetchBody(ctx, articleURL)
	if err != nil {
		// 判定できなかった場合は未ペイウォール扱い（fail open）
		slog.Warn("paywall probe failed, treating as not paywalled",
			slog.String("url", articleURL),
			slog.String("error", err.Error()))
		metrics.RecordPaywallCheckError()
		return false
	}

	content := strings.ToLower(string(body))

	paywalled := false
	for _, indicator := range indicators {
		if strings.Contains(content, indicator) {
			paywalled = true
			break
		}
	}

	metrics.RecordPaywallCheck(paywalled)
	return paywalled
}

// fetchBody retrieves the raw page body within the configured limits.
func (d *Detector) fetchBody(ctx context.Context, urlStr string) ([]byte, error) {
	if err := fetcher.ValidateURL(urlStr, d.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "BalancedNewsBot/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// ステータスコードは見ない。ペイウォールページは 402/403 を返しつつ
	// 本文に案内文を載せることが多いため、返ってきた本文をそのまま判定する。
	limitedReader := io.LimitReader(resp.Body, d.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if int64(len(body)) > d.config.MaxBodySize {
		return nil, fmt.Errorf("response size exceeds limit %d bytes", d.config.MaxBodySize)
	}

	return body, nil
}
