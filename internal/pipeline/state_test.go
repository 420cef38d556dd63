package pipeline

import (
	"sync"
	"testing"

	"github.com/nao1215/uciscope/internal/model"
)

// TestCrawlStateAdmitConcurrent tests that concurrent admissions of the same
// content produce exactly one new page.
func TestCrawlStateAdmitConcurrent(t *testing.T) {
	t.Parallel()

	state := newTestState()
	fp := model.PageFingerprint{ExactHash: [32]byte{9}, SimHash: 42}

	const workers = 32
	outcomes := make([]model.Outcome, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url := "https://ics.uci.edu/p" + string(rune('a'+i%26)) + string(rune('a'+i/26))
			outcomes[i], _ = state.Admit(url, "ics.uci.edu", fp, nil)
		}()
	}
	wg.Wait()

	newCount := 0
	for _, o := range outcomes {
		if o == model.OutcomeNew {
			newCount++
		}
	}
	if newCount != 1 {
		t.Errorf("expected exactly 1 new page, got %d", newCount)
	}

	snap := state.Snapshot(10)
	if snap.ExactDuplicates != workers-1 {
		t.Errorf("expected %d exact duplicates, got %d", workers-1, snap.ExactDuplicates)
	}
	if snap.UniquePages != workers {
		t.Errorf("expected %d unique pages, got %d", workers, snap.UniquePages)
	}
}

// TestCrawlStatePriorPages tests that the prior count excludes the page itself.
func TestCrawlStatePriorPages(t *testing.T) {
	t.Parallel()

	state := newTestState()
	for i := range 3 {
		fp := model.PageFingerprint{ExactHash: [32]byte{byte(i)}, SimHash: uint64(i) << 40}
		_, prior := state.Admit("https://ics.uci.edu/"+string(rune('a'+i)), "ics.uci.edu", fp, nil)
		if prior != i {
			t.Errorf("page %d: expected prior %d, got %d", i, i, prior)
		}
	}
}
