package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/uciscope/internal/config"
	"github.com/nao1215/uciscope/internal/database"
	"github.com/nao1215/uciscope/internal/model"
)

// skipIfShort skips the test if -short flag is set.
func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// departmentPage renders an HTML page with topic-specific filler text.
func departmentPage(topic string, hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>")
	b.WriteString(topic)
	b.WriteString("</title></head><body><p>")
	for i := range 60 {
		fmt.Fprintf(&b, "%s%d ", topic, i)
	}
	b.WriteString("</p>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">more</a>`, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// testSite is a small department site served over HTTP.
type testSite struct {
	server *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()

	research := departmentPage("research", "/")
	pages := map[string]string{
		"/":         departmentPage("anteater", "/research", "/people", "/mirror", "/login", "https://example.com/elsewhere"),
		"/research": research,
		"/people":   departmentPage("faculty", "/research"),
		"/mirror":   research,
	}

	site := &testSite{hits: make(map[string]int)}
	site.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.hits[r.URL.Path]++
		site.mu.Unlock()

		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(site.server.Close)
	return site
}

func (s *testSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// siteConfig returns a configuration scoped to the test server.
func siteConfig(t *testing.T, site *testSite) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Seeds = []string{site.server.URL + "/"}
	cfg.AllowedDomains = []string{"127.0.0.1"}
	cfg.RootDomain = "127.0.0.1"
	cfg.Workers = 2
	cfg.Timeout = 5 * time.Second
	cfg.DBDir = t.TempDir()
	cfg.SaveToDB = true
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestCrawlIntegration tests a full crawl against a local site.
func TestCrawlIntegration(t *testing.T) {
	skipIfShort(t)
	t.Parallel()

	site := newTestSite(t)
	cfg := siteConfig(t, site)

	var out bytes.Buffer
	if err := runCrawl(context.Background(), cfg, quietLogger(), &out); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	t.Run("every in-scope page is fetched once", func(t *testing.T) {
		for _, path := range []string{"/", "/research", "/people", "/mirror"} {
			if got := site.hitCount(path); got != 1 {
				t.Errorf("expected %s to be fetched once, got %d", path, got)
			}
		}
	})

	t.Run("login pages are never fetched", func(t *testing.T) {
		if got := site.hitCount("/login"); got != 0 {
			t.Errorf("expected /login to be rejected by scope, got %d fetches", got)
		}
	})

	t.Run("text report lists the statistics", func(t *testing.T) {
		output := out.String()
		for _, want := range []string{"Unique pages:     4", "Exact duplicates: 1", "127.0.0.1, 4"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected report to contain %q:\n%s", want, output)
			}
		}
	})

	t.Run("records and report are stored", func(t *testing.T) {
		ctx := context.Background()
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		count, err := db.CountPages(ctx)
		if err != nil {
			t.Fatalf("failed to count pages: %v", err)
		}
		if count != 4 {
			t.Errorf("expected 4 page records, got %d", count)
		}

		outcomes, err := db.CountPagesByOutcome(ctx)
		if err != nil {
			t.Fatalf("failed to count outcomes: %v", err)
		}
		if outcomes[model.OutcomeNew] != 3 || outcomes[model.OutcomeExactDuplicate] != 1 {
			t.Errorf("unexpected outcomes: %v", outcomes)
		}

		stored, err := db.GetLatestCrawlReport(ctx)
		if err != nil {
			t.Fatalf("failed to load report: %v", err)
		}
		if stored == nil {
			t.Fatal("expected a stored crawl report")
		}
		if stored.Stats.UniquePages != 4 || stored.PagesFetched != 4 || stored.TimedOut {
			t.Errorf("unexpected stored report: unique=%d fetched=%d timedOut=%v",
				stored.Stats.UniquePages, stored.PagesFetched, stored.TimedOut)
		}
	})
}

// TestCrawlIntegration_Cancelled tests that an interrupted crawl still reports.
func TestCrawlIntegration_Cancelled(t *testing.T) {
	skipIfShort(t)
	t.Parallel()

	site := newTestSite(t)
	cfg := siteConfig(t, site)
	cfg.SaveToDB = false
	cfg.JSONReport = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if err := runCrawl(ctx, cfg, quietLogger(), &out); err != nil {
		t.Fatalf("expected partial report without error, got %v", err)
	}
	if !strings.Contains(out.String(), `"timed_out": true`) {
		t.Errorf("expected a partial JSON report, got:\n%s", out.String())
	}
}
