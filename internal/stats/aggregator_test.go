package stats

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/uciscope/internal/model"
	"github.com/nao1215/uciscope/internal/text"
)

func words(n int, word string) []string {
	return strings.Fields(strings.Repeat(word+" ", n))
}

// TestAggregatorRecord tests what each outcome updates.
func TestAggregatorRecord(t *testing.T) {
	t.Parallel()

	t.Run("new informative page updates everything", func(t *testing.T) {
		t.Parallel()

		a := NewAggregator("uci.edu")
		tokens := append(words(30, "fox"), "the", "quick")
		a.Record("https://ics.uci.edu/a", model.OutcomeNew, tokens)

		if a.UniquePages() != 1 {
			t.Errorf("UniquePages() = %d, want 1", a.UniquePages())
		}
		if got := a.LongestPage(); got.URL != "https://ics.uci.edu/a" || got.WordCount != 32 {
			t.Errorf("LongestPage() = %+v", got)
		}
		want := []model.WordCount{{Word: "fox", Count: 30}, {Word: "quick", Count: 1}}
		if got := a.TopWords(10); !reflect.DeepEqual(got, want) {
			t.Errorf("TopWords() = %v, want %v", got, want)
		}
	})

	t.Run("short page counts as unique but not in the histogram", func(t *testing.T) {
		t.Parallel()

		a := NewAggregator("uci.edu")
		a.Record("https://ics.uci.edu/a", model.OutcomeNew, words(29, "fox"))

		if a.UniquePages() != 1 {
			t.Errorf("UniquePages() = %d, want 1", a.UniquePages())
		}
		if len(a.TopWords(10)) != 0 {
			t.Errorf("expected empty histogram, got %v", a.TopWords(10))
		}
		if a.LongestPage().URL != "" {
			t.Errorf("expected no longest page, got %+v", a.LongestPage())
		}
		if a.Snapshot(0).LowValuePages != 1 {
			t.Error("expected one low-value page")
		}
	})

	t.Run("duplicates count as unique URLs only", func(t *testing.T) {
		t.Parallel()

		a := NewAggregator("uci.edu")
		a.Record("https://ics.uci.edu/a", model.OutcomeExactDuplicate, words(100, "fox"))
		a.Record("https://ics.uci.edu/b", model.OutcomeNearDuplicate, words(100, "fox"))

		s := a.Snapshot(10)
		if s.UniquePages != 2 {
			t.Errorf("UniquePages = %d, want 2", s.UniquePages)
		}
		if len(s.TopWords) != 0 || s.LongestPage.WordCount != 0 {
			t.Errorf("duplicates must not touch histogram or longest page: %+v", s)
		}
		if s.ExactDuplicates != 1 || s.NearDuplicates != 1 {
			t.Errorf("duplicate counters = %d/%d, want 1/1", s.ExactDuplicates, s.NearDuplicates)
		}
	})

	t.Run("same URL across schemes counts once", func(t *testing.T) {
		t.Parallel()

		a := NewAggregator("uci.edu")
		a.Record("http://cs.uci.edu/b", model.OutcomeNew, nil)
		a.Record("https://cs.uci.edu/b", model.OutcomeExactDuplicate, nil)

		if a.UniquePages() != 1 {
			t.Errorf("UniquePages() = %d, want 1", a.UniquePages())
		}
		if a.HostPages("cs.uci.edu") != 1 {
			t.Errorf("HostPages() = %d, want 1", a.HostPages("cs.uci.edu"))
		}
	})

	t.Run("longest page ties keep the first", func(t *testing.T) {
		t.Parallel()

		a := NewAggregator("uci.edu")
		a.Record("https://ics.uci.edu/first", model.OutcomeNew, words(40, "alpha"))
		a.Record("https://ics.uci.edu/second", model.OutcomeNew, words(40, "beta"))
		a.Record("https://ics.uci.edu/third", model.OutcomeNew, words(39, "gamma"))

		if got := a.LongestPage().URL; got != "https://ics.uci.edu/first" {
			t.Errorf("LongestPage().URL = %q, want first", got)
		}

		a.Record("https://ics.uci.edu/fourth", model.OutcomeNew, words(41, "delta"))
		if got := a.LongestPage().URL; got != "https://ics.uci.edu/fourth" {
			t.Errorf("LongestPage().URL = %q, want fourth", got)
		}
	})

	t.Run("custom minimum words", func(t *testing.T) {
		t.Parallel()

		a := NewAggregator("uci.edu", WithMinWords(1))
		a.Record("https://ics.uci.edu/a", model.OutcomeNew, []string{"fox"})
		if len(a.TopWords(0)) != 1 {
			t.Errorf("expected one word, got %v", a.TopWords(0))
		}
	})
}

// TestAggregatorHistogramExcludesStopwords tests the histogram on real tokens.
func TestAggregatorHistogramExcludesStopwords(t *testing.T) {
	t.Parallel()

	a := NewAggregator("uci.edu", WithMinWords(0))
	a.Record("https://ics.uci.edu/a", model.OutcomeNew, text.Tokenize("the quick fox the fox"))

	want := []model.WordCount{{Word: "fox", Count: 2}, {Word: "quick", Count: 1}}
	if got := a.TopWords(0); !reflect.DeepEqual(got, want) {
		t.Errorf("TopWords() = %v, want %v", got, want)
	}
}

// TestAggregatorTopWordsOrdering tests count and alphabetical ordering.
func TestAggregatorTopWordsOrdering(t *testing.T) {
	t.Parallel()

	a := NewAggregator("uci.edu", WithMinWords(0))
	a.Record("https://ics.uci.edu/a", model.OutcomeNew, []string{"pear", "apple", "fig", "apple", "pear", "kiwi"})

	want := []model.WordCount{
		{Word: "apple", Count: 2},
		{Word: "pear", Count: 2},
		{Word: "fig", Count: 1},
	}
	if got := a.TopWords(3); !reflect.DeepEqual(got, want) {
		t.Errorf("TopWords(3) = %v, want %v", got, want)
	}
}

// TestAggregatorSubdomains tests the root-domain restriction and ordering.
func TestAggregatorSubdomains(t *testing.T) {
	t.Parallel()

	a := NewAggregator("uci.edu")
	for _, u := range []string{
		"https://vision.ics.uci.edu/a",
		"https://ics.uci.edu/a",
		"https://vision.ics.uci.edu/b",
		"https://vision.ics.uci.edu/b",
		"https://example.com/x",
		"https://notuci.edu/x",
	} {
		a.Record(u, model.OutcomeNew, nil)
	}

	want := []model.SubdomainCount{
		{Host: "ics.uci.edu", Pages: 1},
		{Host: "vision.ics.uci.edu", Pages: 2},
	}
	if got := a.Subdomains(); !reflect.DeepEqual(got, want) {
		t.Errorf("Subdomains() = %v, want %v", got, want)
	}
	if a.HostPages("example.com") != 1 {
		t.Error("expected hosts outside the root to be counted for trap limits")
	}
	if a.UniquePages() != 5 {
		t.Errorf("UniquePages() = %d, want 5", a.UniquePages())
	}
}
