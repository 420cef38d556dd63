// Package urlnorm turns URL strings into canonical keys.
//
// Two URLs that differ only in letter case of the scheme or host, a leading
// "www.", a trailing dot on the host, an explicit default port, repeated or
// trailing slashes, dot segments, tracking or session query parameters,
// query parameter order, or the fragment canonicalize to the same string.
//
// Design decision: Canonicalize keeps the scheme, so the canonical string is
// still a fetchable URL. Identity comparisons across schemes go through Key,
// which drops the scheme. The crawler uses Key for its visited set and for
// unique-page counting so that http and https variants of a page count once.
package urlnorm
