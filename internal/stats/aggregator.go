package stats

import (
	"sort"
	"strings"

	"github.com/nao1215/uciscope/internal/model"
	"github.com/nao1215/uciscope/internal/text"
	"github.com/nao1215/uciscope/internal/urlnorm"
)

// DefaultMinWords is the token count below which a page is too short to
// contribute to the histogram or the longest-page record.
const DefaultMinWords = 30

// Aggregator accumulates crawl statistics.
type Aggregator struct {
	rootDomain string
	minWords   int

	seen      map[string]struct{}
	hostPages map[string]int
	words     map[string]int
	longest   model.LongestPage

	exactDuplicates int
	nearDuplicates  int
	lowValuePages   int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMinWords sets the informativeness threshold.
func WithMinWords(n int) Option {
	return func(a *Aggregator) {
		a.minWords = n
	}
}

// NewAggregator creates an empty Aggregator. Subdomain counts are restricted
// to hosts equal to or under rootDomain.
func NewAggregator(rootDomain string, opts ...Option) *Aggregator {
	a := &Aggregator{
		rootDomain: strings.Trim(strings.ToLower(rootDomain), "."),
		minWords:   DefaultMinWords,
		seen:       make(map[string]struct{}),
		hostPages:  make(map[string]int),
		words:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record adds one processed page. tokens are the page's folded tokens with
// stopwords included.
func (a *Aggregator) Record(canonicalURL string, outcome model.Outcome, tokens []string) {
	key := urlnorm.Key(canonicalURL)
	if _, ok := a.seen[key]; !ok {
		a.seen[key] = struct{}{}
		if host := urlnorm.Hostname(canonicalURL); host != "" {
			a.hostPages[host]++
		}
	}

	switch outcome {
	case model.OutcomeExactDuplicate:
		a.exactDuplicates++
		return
	case model.OutcomeNearDuplicate:
		a.nearDuplicates++
		return
	}

	if len(tokens) < a.minWords {
		a.lowValuePages++
		return
	}

	for _, tok := range tokens {
		if !text.IsStopword(tok) {
			a.words[tok]++
		}
	}
	if len(tokens) > a.longest.WordCount {
		a.longest = model.LongestPage{URL: canonicalURL, WordCount: len(tokens)}
	}
}

// UniquePages returns the number of distinct page URLs recorded.
func (a *Aggregator) UniquePages() int {
	return len(a.seen)
}

// HostPages returns the number of unique pages recorded for host.
func (a *Aggregator) HostPages(host string) int {
	return a.hostPages[strings.ToLower(host)]
}

// LongestPage returns the longest informative page. Ties keep the first.
func (a *Aggregator) LongestPage() model.LongestPage {
	return a.longest
}

// TopWords returns the n most frequent words, by descending count and then
// alphabetically. A non-positive n returns every word.
func (a *Aggregator) TopWords(n int) []model.WordCount {
	out := make([]model.WordCount, 0, len(a.words))
	for w, c := range a.words {
		out = append(out, model.WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Subdomains returns unique page counts for hosts under the root domain,
// ordered by host.
func (a *Aggregator) Subdomains() []model.SubdomainCount {
	out := make([]model.SubdomainCount, 0, len(a.hostPages))
	for h, c := range a.hostPages {
		if a.underRoot(h) {
			out = append(out, model.SubdomainCount{Host: h, Pages: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Host < out[j].Host
	})
	return out
}

func (a *Aggregator) underRoot(host string) bool {
	if a.rootDomain == "" {
		return true
	}
	return host == a.rootDomain || strings.HasSuffix(host, "."+a.rootDomain)
}

// Snapshot returns a copy of the statistics with the top n words.
func (a *Aggregator) Snapshot(n int) model.CrawlStats {
	return model.CrawlStats{
		UniquePages:     a.UniquePages(),
		LongestPage:     a.LongestPage(),
		TopWords:        a.TopWords(n),
		Subdomains:      a.Subdomains(),
		ExactDuplicates: a.exactDuplicates,
		NearDuplicates:  a.nearDuplicates,
		LowValuePages:   a.lowValuePages,
	}
}
