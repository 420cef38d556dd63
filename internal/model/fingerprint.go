package model

import (
	"encoding/hex"
	"fmt"
)

// PageFingerprint identifies page content for duplicate detection.
type PageFingerprint struct {
	// ExactHash is the SHA-256 digest of the NFKC-normalized visible text.
	ExactHash [32]byte

	// SimHash is the 64-bit locality-sensitive fingerprint of the page tokens.
	SimHash uint64
}

// ExactHex returns the exact hash as a lowercase hex string.
func (f PageFingerprint) ExactHex() string {
	return hex.EncodeToString(f.ExactHash[:])
}

// SimHex returns the SimHash as a 16-digit hex string.
// SQLite integers are signed, so the fingerprint is stored in this form.
func (f PageFingerprint) SimHex() string {
	return fmt.Sprintf("%016x", f.SimHash)
}

// Outcome is the duplicate tracker's verdict for a page.
type Outcome int

const (
	// OutcomeNew means the page is neither an exact nor a near duplicate.
	OutcomeNew Outcome = iota
	// OutcomeExactDuplicate means identical visible text was seen before.
	OutcomeExactDuplicate
	// OutcomeNearDuplicate means a stored SimHash is within the distance threshold.
	OutcomeNearDuplicate
)

// String returns the outcome name used in logs, the database and reports.
func (o Outcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeExactDuplicate:
		return "exact_duplicate"
	case OutcomeNearDuplicate:
		return "near_duplicate"
	default:
		return "unknown"
	}
}

// IsDuplicate reports whether the outcome rejects the page.
func (o Outcome) IsDuplicate() bool {
	return o == OutcomeExactDuplicate || o == OutcomeNearDuplicate
}

// ParseOutcome converts a stored outcome name back to an Outcome.
// Unknown names map to OutcomeNew.
func ParseOutcome(s string) Outcome {
	switch s {
	case "exact_duplicate":
		return OutcomeExactDuplicate
	case "near_duplicate":
		return OutcomeNearDuplicate
	default:
		return OutcomeNew
	}
}
