// Package scope decides whether a canonical URL may ever be fetched.
//
// A Validator applies its rules in a fixed order and stops at the first one
// that fails:
//  1. URL length and scheme
//  2. host is one of the allowed domain suffixes (true suffix match only)
//  3. no disallowed file extension on the last path segment
//  4. no structural red flag (oversized query, deep or cyclic paths, dated
//     archive paths, pagination explosions, session identifiers, login pages)
//  5. not on the blocklist of known trap hosts, paths and query markers
//
// Design decision: Check returns a sentinel error naming the failed rule so
// that the pipeline can log why a link was dropped. IsInScope is the boolean
// form and never panics on bad input; anything that does not parse is out of
// scope.
package scope
