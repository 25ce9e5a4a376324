// Feed registry diagnostics. Probes every registered feed and writes a text
// report, a JSON report, and a SQL fix-up script for redirected or dead
// feeds. With DATABASE_URL set the registry is read from the sources table;
// without it the embedded seed manifest is probed instead, which is how the
// manifest gets vetted before shipping.
package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/mmcdole/gofeed"

	dbpkg "balanced-news/internal/infra/db"
)

// FeedDiagnostic represents the diagnostic result for a single feed
type FeedDiagnostic struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Status        string `json:"status"` // "OK", "HTTP_ERROR", "PARSE_ERROR", "EMPTY", "TIMEOUT", "REDIRECT"
	HTTPCode      int    `json:"http_code"`
	ItemCount     int    `json:"item_count"`
	LatestDate    string `json:"latest_date"`
	ErrorMessage  string `json:"error_message,omitempty"`
	FeedType      string `json:"feed_type"` // "RSS", "ATOM", "JSON", "UNKNOWN"
	RedirectURL   string `json:"redirect_url,omitempty"`
	ResponseTime  int64  `json:"response_time_ms"`
	ContentLength int64  `json:"content_length"`
}

// Source represents a feed source under diagnosis
type Source struct {
	ID      int
	Name    string
	FeedURL string
	Active  bool
}

func main() {
	sources, origin := loadSources()
	log.Printf("Diagnosing %d feed sources (%s)...\n", len(sources), origin)

	diagnostics := make([]FeedDiagnostic, 0, len(sources))
	for i, source := range sources {
		log.Printf("[%d/%d] Diagnosing: %s", i+1, len(sources), source.Name)
		diag := diagnoseFeed(source.Name, source.FeedURL, 30*time.Second)
		diagnostics = append(diagnostics, diag)

		// Rate limiting to be nice to servers
		time.Sleep(500 * time.Millisecond)
	}

	generateReport(diagnostics)
	generateJSONReport(diagnostics)
	generateSQLFixes(diagnostics)
}

// loadSources reads the registry from the database when DATABASE_URL is set,
// falling back to the embedded seed manifest otherwise.
func loadSources() ([]Source, string) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Println("DATABASE_URL not set, probing the embedded seed manifest")
		seeds, err := dbpkg.SeedSources()
		if err != nil {
			log.Fatalf("Failed to load seed manifest: %v", err)
		}
		sources := make([]Source, 0, len(seeds))
		for _, s := range seeds {
			sources = append(sources, Source{Name: s.Name, FeedURL: s.URL, Active: true})
		}
		return sources, "seed manifest"
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	sources, err := fetchSources(db)
	if err != nil {
		log.Fatalf("Failed to fetch sources: %v", err)
	}
	return sources, "database"
}

func fetchSources(db *sql.DB) ([]Source, error) {
	rows, err := db.Query("SELECT id, name, feed_url, active FROM sources ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Failed to close rows: %v", err)
		}
	}()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Name, &s.FeedURL, &s.Active); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func diagnoseFeed(name, url string, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{
		Name: name,
		URL:  url,
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		diag.Status = "REQUEST_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	req.Header.Set("User-Agent", "BalancedNewsBot (feed diagnostics)")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	resp, err := client.Do(req)
	diag.ResponseTime = time.Since(startTime).Milliseconds()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
			diag.ErrorMessage = fmt.Sprintf("Request timeout after %v", timeout)
		} else {
			diag.Status = "HTTP_ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body: %v", err)
		}
	}()

	diag.HTTPCode = resp.StatusCode
	diag.ContentLength = resp.ContentLength

	// Check for redirects
	if resp.Request.URL.String() != url {
		diag.RedirectURL = resp.Request.URL.String()
		diag.Status = "REDIRECT"
	}

	if resp.StatusCode != 200 {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)
		return diag
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		diag.Status = "READ_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	itemCount, latestDate, feedType, parseErr := parseFeed(body)
	if parseErr != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = parseErr.Error()
		diag.FeedType = feedType
		return diag
	}

	diag.ItemCount = itemCount
	diag.LatestDate = latestDate
	diag.FeedType = feedType

	if itemCount == 0 {
		diag.Status = "EMPTY"
		diag.ErrorMessage = "Feed has no items"
		return diag
	}

	if diag.Status != "REDIRECT" {
		diag.Status = "OK"
	}
	return diag
}

// parseFeed parses the body with the same parser the worker uses, so a feed
// that passes here will also parse during ingestion.
func parseFeed(body []byte) (itemCount int, latestDate string, feedType string, err error) {
	fp := gofeed.NewParser()
	feed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return 0, "", "UNKNOWN", fmt.Errorf("parse failed: %v. Content preview: %s", err, preview)
	}

	itemCount = len(feed.Items)
	if itemCount > 0 {
		first := feed.Items[0]
		if first.PublishedParsed != nil {
			latestDate = first.PublishedParsed.Format(time.RFC3339)
		} else {
			latestDate = first.Published
		}
	}
	return itemCount, latestDate, strings.ToUpper(feed.FeedType), nil
}

// writef is a helper to write to file and handle errors
func writef(f *os.File, format string, args ...interface{}) error {
	_, err := fmt.Fprintf(f, format, args...)
	return err
}

func generateReport(diagnostics []FeedDiagnostic) {
	f, err := os.Create("feed_diagnostic_report.txt")
	if err != nil {
		log.Printf("Failed to create report file: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close report file: %v", err)
		}
	}()

	writeErr := func(err error) bool {
		if err != nil {
			log.Printf("Failed to write to report: %v", err)
			return true
		}
		return false
	}

	if writeErr(writef(f, "===============================================\n")) {
		return
	}
	if writeErr(writef(f, "Feed Registry Diagnostic Report\n")) {
		return
	}
	if writeErr(writef(f, "Generated: %s\n", time.Now().Format(time.RFC3339))) {
		return
	}
	if writeErr(writef(f, "Total Sources: %d\n", len(diagnostics))) {
		return
	}
	if writeErr(writef(f, "===============================================\n\n")) {
		return
	}

	statusCount := make(map[string]int)
	var okCount, errorCount int
	for _, d := range diagnostics {
		statusCount[d.Status]++
		if d.Status == "OK" || d.Status == "REDIRECT" {
			okCount++
		} else {
			errorCount++
		}
	}

	_ = writef(f, "SUMMARY:\n")
	_ = writef(f, "  ✅ Working: %d (%.1f%%)\n", okCount, float64(okCount)/float64(len(diagnostics))*100)
	_ = writef(f, "  ❌ Broken: %d (%.1f%%)\n", errorCount, float64(errorCount)/float64(len(diagnostics))*100)
	_ = writef(f, "\nSTATUS BREAKDOWN:\n")
	for status, count := range statusCount {
		_ = writef(f, "  %s: %d\n", status, count)
	}
	_ = writef(f, "\n")

	_ = writef(f, "DETAILED RESULTS:\n")
	_ = writef(f, "===============================================\n\n")

	_ = writef(f, "✅ WORKING FEEDS (%d):\n", statusCount["OK"]+statusCount["REDIRECT"])
	_ = writef(f, "-------------------------------------------\n")
	for _, d := range diagnostics {
		if d.Status == "OK" || d.Status == "REDIRECT" {
			_ = writef(f, "Name: %s\n", d.Name)
			_ = writef(f, "  URL: %s\n", d.URL)
			_ = writef(f, "  Type: %s | Items: %d | Latest: %s\n", d.FeedType, d.ItemCount, d.LatestDate)
			_ = writef(f, "  Response: %dms | HTTP: %d\n", d.ResponseTime, d.HTTPCode)
			if d.RedirectURL != "" {
				_ = writef(f, "  ⚠️  Redirected to: %s\n", d.RedirectURL)
			}
			_ = writef(f, "\n")
		}
	}

	_ = writef(f, "\n❌ BROKEN FEEDS (%d):\n", errorCount)
	_ = writef(f, "-------------------------------------------\n")
	for _, d := range diagnostics {
		if d.Status != "OK" && d.Status != "REDIRECT" {
			_ = writef(f, "Name: %s\n", d.Name)
			_ = writef(f, "  URL: %s\n", d.URL)
			_ = writef(f, "  Status: %s | HTTP: %d\n", d.Status, d.HTTPCode)
			_ = writef(f, "  Error: %s\n", d.ErrorMessage)
			_ = writef(f, "  Response: %dms\n", d.ResponseTime)
			_ = writef(f, "\n")
		}
	}

	log.Println("✅ Text report generated: feed_diagnostic_report.txt")
}

func generateJSONReport(diagnostics []FeedDiagnostic) {
	f, err := os.Create("feed_diagnostic_report.json")
	if err != nil {
		log.Printf("Failed to create JSON report: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close JSON report file: %v", err)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(diagnostics); err != nil {
		log.Printf("Failed to write JSON report: %v", err)
		return
	}

	log.Println("✅ JSON report generated: feed_diagnostic_report.json")
}

func generateSQLFixes(diagnostics []FeedDiagnostic) {
	f, err := os.Create("feed_fixes.sql")
	if err != nil {
		log.Printf("Failed to create SQL fixes file: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close SQL fixes file: %v", err)
		}
	}()

	_ = writef(f, "-- SQL Fixes for Broken Feeds\n")
	_ = writef(f, "-- Generated: %s\n\n", time.Now().Format(time.RFC3339))

	// Redirects
	hasRedirects := false
	for _, d := range diagnostics {
		if d.RedirectURL != "" && d.RedirectURL != d.URL {
			if !hasRedirects {
				_ = writef(f, "-- Update redirected feeds\n")
				hasRedirects = true
			}
			_ = writef(f, "UPDATE sources SET feed_url = '%s' WHERE feed_url = '%s'; -- %s\n",
				strings.ReplaceAll(d.RedirectURL, "'", "''"),
				strings.ReplaceAll(d.URL, "'", "''"),
				d.Name)
		}
	}
	if hasRedirects {
		_ = writef(f, "\n")
	}

	// Broken feeds
	hasBroken := false
	for _, d := range diagnostics {
		if d.Status != "OK" && d.Status != "REDIRECT" {
			if !hasBroken {
				_ = writef(f, "-- Disable broken feeds (review and fix manually)\n")
				hasBroken = true
			}
			_ = writef(f, "UPDATE sources SET active = FALSE WHERE feed_url = '%s'; -- %s: %s\n",
				strings.ReplaceAll(d.URL, "'", "''"),
				d.Name,
				d.Status)
		}
	}

	log.Println("✅ SQL fixes generated: feed_fixes.sql")
}
