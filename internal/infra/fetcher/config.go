package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ContentFetchConfig holds the configuration shared by outbound article
// fetches: the paywall probe and the content extraction strategies.
//
// Security settings:
//   - DenyPrivateIPs: Prevents SSRF attacks by blocking private IP addresses
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - MaxRedirects: Prevents infinite redirect loops
//   - Timeout: Prevents resource starvation from slow servers
//
// Politeness settings:
//   - RateLimit/RateBurst: Cap outbound requests per second across all
//     workers so a crawl pass does not hammer third-party sites
type ContentFetchConfig struct {
	// Timeout is the maximum duration for a single HTTP request.
	// This prevents resource starvation from slow or unresponsive servers.
	// Should be less than the overall crawl timeout.
	// Default: 10s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Responses exceeding this limit are rejected to prevent memory exhaustion.
	// This is enforced during response reading, not based on Content-Length header.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of HTTP redirects to follow.
	// This prevents infinite redirect loops and redirect-based attacks.
	// Each redirect target is validated for security (SSRF check).
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs controls whether to block access to private IP addresses.
	// When true, URLs resolving to private/loopback/link-local IPs are rejected.
	// This prevents Server-Side Request Forgery (SSRF) attacks.
	// Should always be true in production.
	// Default: true
	DenyPrivateIPs bool

	// RateLimit is the maximum outbound requests per second, shared between
	// the paywall probe and content extraction. Zero or negative disables
	// rate limiting.
	// Default: 5
	RateLimit float64

	// RateBurst is the token bucket size for RateLimit. Ignored when rate
	// limiting is disabled.
	// Default: 5
	RateBurst int
}

// DefaultConfig returns the default configuration for article fetching.
// These defaults are optimized for:
//   - Security: SSRF prevention enabled, size/redirect limits enforced
//   - Politeness: 5 requests/second shared across all pipeline workers
//
// Returns:
//   - ContentFetchConfig with production-ready default values
//
// Example:
//
//	config := DefaultConfig()
//	config.RateLimit = 10 // Customize as needed
//	extractor := NewReadabilityExtractor(config, NewLimiter(config))
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		RateLimit:      5,
		RateBurst:      5,
	}
}

// Validate checks if the configuration values are valid and safe.
// This prevents misconfigurations that could lead to security issues
// or performance problems.
//
// Validation rules:
//   - Timeout: > 0 (must have timeout)
//   - MaxBodySize: 1KB-100MB (prevent memory issues)
//   - MaxRedirects: 0-10 (reasonable redirect limit)
//   - RateBurst: >= 1 when rate limiting is enabled
//
// Returns:
//   - error: nil if configuration is valid, descriptive error otherwise
//
// Example:
//
//	config, err := LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal("Invalid configuration: %v", err)
//	}
func (c *ContentFetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting is enabled, got %d", c.RateBurst)
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables.
// If a variable is not set, the default value is used. After loading,
// the configuration is validated.
//
// Environment variables:
//   - CONTENT_FETCH_TIMEOUT: duration string, e.g., "10s" (default: 10s)
//   - CONTENT_FETCH_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//   - CONTENT_FETCH_MAX_REDIRECTS: integer (default: 5)
//   - CONTENT_FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
//   - CONTENT_FETCH_RATE_LIMIT: float, requests/second (default: 5)
//   - CONTENT_FETCH_RATE_BURST: integer (default: 5)
//
// Returns:
//   - ContentFetchConfig: Loaded configuration
//   - error: Validation error if configuration is invalid
//
// Example:
//
//	// Set environment: CONTENT_FETCH_RATE_LIMIT=10
//	config, err := LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal("Invalid configuration: %v", err)
//	}
//	// config.RateLimit == 10
func LoadConfigFromEnv() (ContentFetchConfig, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Load CONTENT_FETCH_TIMEOUT
	if val := os.Getenv("CONTENT_FETCH_TIMEOUT"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			cfg.Timeout = parsed
		} else {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_TIMEOUT: %v (expected format: '10s', '1m')", err)
		}
	}

	// Load CONTENT_FETCH_MAX_BODY_SIZE
	if val := os.Getenv("CONTENT_FETCH_MAX_BODY_SIZE"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.MaxBodySize = parsed
		} else {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_MAX_BODY_SIZE: %v", err)
		}
	}

	// Load CONTENT_FETCH_MAX_REDIRECTS
	if val := os.Getenv("CONTENT_FETCH_MAX_REDIRECTS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.MaxRedirects = parsed
		} else {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_MAX_REDIRECTS: %v", err)
		}
	}

	// Load CONTENT_FETCH_DENY_PRIVATE_IPS
	if val := os.Getenv("CONTENT_FETCH_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val == "true"
	}

	// Load CONTENT_FETCH_RATE_LIMIT
	if val := os.Getenv("CONTENT_FETCH_RATE_LIMIT"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.RateLimit = parsed
		} else {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_RATE_LIMIT: %v", err)
		}
	}

	// Load CONTENT_FETCH_RATE_BURST
	if val := os.Getenv("CONTENT_FETCH_RATE_BURST"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.RateBurst = parsed
		} else {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_RATE_BURST: %v", err)
		}
	}

	// Validate the loaded configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// NewLimiter builds the shared outbound rate limiter from the configuration.
// Returns nil when rate limiting is disabled; callers treat a nil limiter
// as unlimited.
func NewLimiter(cfg ContentFetchConfig) *rate.Limiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
}
