package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/uciscope/internal/fingerprint"
	"github.com/nao1215/uciscope/internal/model"
	"github.com/nao1215/uciscope/internal/scope"
	"github.com/nao1215/uciscope/internal/text"
	"github.com/nao1215/uciscope/internal/trap"
	"github.com/nao1215/uciscope/internal/urlnorm"
)

// errNoPage is returned when a result reaches the pipeline without a page.
var errNoPage = fmt.Errorf("%w: no page", model.ErrEmptyContent)

// Extractor parses raw HTML into visible text and absolute anchor URLs.
// contentType is the response Content-Type header; it names the charset of
// raw when the server declared one.
// crawler.Parser is the production implementation.
type Extractor interface {
	Extract(pageURL, contentType string, raw []byte) (*model.Document, error)
}

// SanityStep applies the fetch sanity rules and fixes the page identity.
// It rejects non-200 responses, empty or oversized bodies and non-HTML
// content, then canonicalizes the page's effective URL.
type SanityStep struct {
	maxBodySize int64
}

// NewSanityStep creates a SanityStep with the given body size cap.
func NewSanityStep(maxBodySize int64) *SanityStep {
	if maxBodySize <= 0 {
		maxBodySize = model.MaxPageSize
	}
	return &SanityStep{maxBodySize: maxBodySize}
}

// Name returns the step name.
func (s *SanityStep) Name() string {
	return "sanity"
}

// Do executes the sanity step.
func (s *SanityStep) Do(_ context.Context, result *model.PageResult) error {
	if result.Page == nil {
		return errNoPage
	}
	if err := result.Page.Check(s.maxBodySize); err != nil {
		return err
	}

	canonical, err := urlnorm.Canonicalize(result.Page.EffectiveURL())
	if err != nil {
		return err
	}
	result.CanonicalURL = canonical
	result.Host = urlnorm.Hostname(canonical)
	return nil
}

// ParseStep extracts visible text and links, then tokenizes the text.
type ParseStep struct {
	extractor Extractor
}

// NewParseStep creates a ParseStep using extractor.
func NewParseStep(extractor Extractor) *ParseStep {
	return &ParseStep{extractor: extractor}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return "parse"
}

// Do executes the parse step.
func (s *ParseStep) Do(_ context.Context, result *model.PageResult) error {
	doc, err := s.extractor.Extract(result.Page.EffectiveURL(), result.Page.ContentType, result.Page.Raw)
	if err != nil {
		return err
	}
	result.Document = doc
	result.Tokens = text.Tokenize(doc.Text)
	result.WordCount = len(result.Tokens)
	result.DiscoveredLinks = len(doc.Links)
	return nil
}

// FingerprintStep computes the exact hash and the SimHash of the page.
// The SimHash only sees content words so that boilerplate stopwords do not
// pull unrelated pages together.
type FingerprintStep struct{}

// NewFingerprintStep creates a FingerprintStep.
func NewFingerprintStep() *FingerprintStep {
	return &FingerprintStep{}
}

// Name returns the step name.
func (s *FingerprintStep) Name() string {
	return "fingerprint"
}

// Do executes the fingerprint step.
func (s *FingerprintStep) Do(_ context.Context, result *model.PageResult) error {
	fp, err := fingerprint.Compute(result.Document.Text, text.ContentTokens(result.Tokens))
	if err != nil {
		return err
	}
	result.Fingerprint = fp
	return nil
}

// AdmissionStep asks the crawl state whether the content is new and records
// the page in the statistics. Duplicates stop the pipeline with
// model.ErrDuplicatePage, so they contribute no links.
type AdmissionStep struct {
	state *CrawlState
}

// NewAdmissionStep creates an AdmissionStep over state.
func NewAdmissionStep(state *CrawlState) *AdmissionStep {
	return &AdmissionStep{state: state}
}

// Name returns the step name.
func (s *AdmissionStep) Name() string {
	return "admission"
}

// Do executes the admission step.
func (s *AdmissionStep) Do(_ context.Context, result *model.PageResult) error {
	outcome, prior := s.state.Admit(result.CanonicalURL, result.Host, result.Fingerprint, result.Tokens)
	result.Outcome = outcome
	result.PriorPages = prior
	if outcome.IsDuplicate() {
		return fmt.Errorf("%w: %s", model.ErrDuplicatePage, outcome)
	}
	return nil
}

// TrapStep runs the page's links through the trap detector.
type TrapStep struct {
	detector *trap.Detector
}

// NewTrapStep creates a TrapStep using detector.
func NewTrapStep(detector *trap.Detector) *TrapStep {
	return &TrapStep{detector: detector}
}

// Name returns the step name.
func (s *TrapStep) Name() string {
	return "trap"
}

// Do executes the trap step.
func (s *TrapStep) Do(_ context.Context, result *model.PageResult) error {
	result.TrapFiltered = s.detector.FilterLinks(result.Host, result.Document.Links, result.PriorPages)
	return nil
}

// ScopeStep canonicalizes each surviving link and keeps the in-scope ones.
// Links are deduplicated on their scheme-insensitive key; the first
// occurrence wins.
type ScopeStep struct {
	validator *scope.Validator
	logger    *slog.Logger
}

// NewScopeStep creates a ScopeStep using validator.
func NewScopeStep(validator *scope.Validator, logger *slog.Logger) *ScopeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScopeStep{validator: validator, logger: logger}
}

// Name returns the step name.
func (s *ScopeStep) Name() string {
	return "scope"
}

// Do executes the scope step.
func (s *ScopeStep) Do(_ context.Context, result *model.PageResult) error {
	seen := make(map[string]struct{}, len(result.TrapFiltered))
	links := make([]string, 0, len(result.TrapFiltered))

	for _, raw := range result.TrapFiltered {
		canonical, err := urlnorm.Canonicalize(raw)
		if err != nil {
			continue
		}
		key := urlnorm.Key(canonical)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if err := s.validator.Check(canonical); err != nil {
			if !errors.Is(err, scope.ErrOutOfDomain) {
				s.logger.Debug("link out of scope", "url", canonical, "reason", err)
			}
			continue
		}
		links = append(links, canonical)
	}

	result.Links = links
	return nil
}

// Dependencies are the collaborators of the standard admission pipeline.
type Dependencies struct {
	State       *CrawlState
	Extractor   Extractor
	Validator   *scope.Validator
	Detector    *trap.Detector
	MaxBodySize int64
}

// NewAdmissionPipeline builds the standard step order:
// sanity, parse, fingerprint, admission, trap, scope.
func NewAdmissionPipeline(deps Dependencies, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewSanityStep(deps.MaxBodySize),
		NewParseStep(deps.Extractor),
		NewFingerprintStep(),
		NewAdmissionStep(deps.State),
		NewTrapStep(deps.Detector),
		NewScopeStep(deps.Validator, p.logger),
	)
	return p
}
