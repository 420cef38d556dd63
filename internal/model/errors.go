package model

import "errors"

// Page and link level errors.
// None of these abort a crawl: each one means "exclude this page or link".
// Callers classify them with errors.Is.
var (
	// ErrMalformedInput is returned when a URL cannot be parsed or page text
	// is not valid UTF-8.
	ErrMalformedInput = errors.New("malformed input")

	// ErrOversizedContent is returned when a body exceeds the size cap.
	// The page is skipped without partial processing.
	ErrOversizedContent = errors.New("content exceeds size limit")

	// ErrUnsupportedContentType is returned for non-HTML responses.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrBadStatus is returned when the response status is not 200.
	ErrBadStatus = errors.New("unexpected status code")

	// ErrEmptyContent is returned when the response has no body.
	ErrEmptyContent = errors.New("empty content")

	// ErrDuplicatePage is returned when the page's content was already seen,
	// either byte-identical or within the near-duplicate distance.
	ErrDuplicatePage = errors.New("duplicate page")
)

// IsSkip reports whether err is one of the errors that mean the page or link
// should simply be left out.
func IsSkip(err error) bool {
	return errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrOversizedContent) ||
		errors.Is(err, ErrUnsupportedContentType) ||
		errors.Is(err, ErrBadStatus) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrDuplicatePage)
}
