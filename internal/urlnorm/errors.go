package urlnorm

import (
	"fmt"

	"github.com/nao1215/uciscope/internal/model"
)

// Canonicalization errors. All of them wrap model.ErrMalformedInput so that
// callers can treat any of them as "drop this link".
var (
	// ErrEmptyURL is returned for an empty or whitespace-only input.
	ErrEmptyURL = fmt.Errorf("%w: empty url", model.ErrMalformedInput)

	// ErrUnsupportedScheme is returned for schemes other than http and https.
	ErrUnsupportedScheme = fmt.Errorf("%w: unsupported scheme", model.ErrMalformedInput)

	// ErrMissingHost is returned when the URL has no host component.
	ErrMissingHost = fmt.Errorf("%w: missing host", model.ErrMalformedInput)
)
