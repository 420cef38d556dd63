// Package fingerprint computes content identities for duplicate detection.
//
// A page gets two fingerprints. The exact hash is the SHA-256 digest of its
// NFKC-normalized visible text and only matches byte-identical text after
// normalization. The SimHash is a 64-bit locality-sensitive fingerprint of
// its tokens: pages that share most of their frequent tokens end up a small
// Hamming distance apart.
//
// Design decision: per-token hashes come from SHA3-256 rather than a 64-bit
// FNV hash. Only the first 64 bits are used, but a cryptographic hash keeps
// the bit positions independent of each other, which SimHash relies on.
package fingerprint
