package scope

import "errors"

// Rejection reasons returned by Validator.Check.
var (
	// ErrURLTooLong is returned when the URL exceeds the length limit.
	ErrURLTooLong = errors.New("url too long")

	// ErrUnsupportedScheme is returned for schemes other than http and https.
	ErrUnsupportedScheme = errors.New("unsupported scheme")

	// ErrInvalidHost is returned when the host is empty or not a valid
	// domain name.
	ErrInvalidHost = errors.New("invalid host")

	// ErrOutOfDomain is returned when the host is not under an allowed suffix.
	ErrOutOfDomain = errors.New("host outside allowed domains")

	// ErrDisallowedExtension is returned when the path ends in a file type
	// that is never crawled.
	ErrDisallowedExtension = errors.New("disallowed file extension")

	// ErrStructuralTrap is returned when the URL shape looks like a crawler trap.
	ErrStructuralTrap = errors.New("structural trap")

	// ErrBlocklisted is returned when the URL matches the known-trap blocklist.
	ErrBlocklisted = errors.New("blocklisted")
)
