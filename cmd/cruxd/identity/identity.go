// Package identity derives stable ids for tree nodes. The same logical
// path always hashes to the same UUID so re-importing a dataset is
// idempotent.
package identity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Ids are v5-style (SHA-1) UUIDs in the NIL namespace. The namespace is
// part of the wire format: changing it changes every derived id.
var namespace = uuid.Nil

// FromPath derives an id from the full ancestor path, root first.
// Example: ["Canada","Squamish"] -> 8f623793-c2b2-59e0-9e64-d167097e3a3d.
// Hash input is the uppercased pipe-joined path.
//
// The id is immutable after creation: renames never rehash, so a
// re-import under a different path mints a new node rather than
// updating the old one.
func FromPath(pathTokens ...string) uuid.UUID {
	key := strings.ToUpper(strings.Join(pathTokens, "|"))
	return uuid.NewSHA1(namespace, []byte(key))
}

// FromCountryCode derives a country node's id from its alpha-3 code
func FromCountryCode(alpha3 string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(strings.ToUpper(alpha3)))
}

// sourceIDPattern extracts a trailing hex id from a source URL, e.g.
// "https://example.com/v/route/105862912" or ".../area/105805788/foo"
var sourceIDPattern = regexp.MustCompile(`(?:route|area)/(\d+)`)

// FromSourceURL derives an id from an external source id embedded in a
// URL. Malformed or unrecognized URLs report ok=false; callers fall
// back to the path hash. There are no error conditions.
func FromSourceURL(rawURL string) (uuid.UUID, bool) {
	m := sourceIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return uuid.Nil, false
	}
	return uuid.NewSHA1(namespace, []byte(m[1])), true
}

// Resolve picks the hash input for a node: an extractable external
// source id wins for leaf nodes, otherwise the full path is hashed.
func Resolve(pathTokens []string, isLeaf bool, sourceURL string) uuid.UUID {
	if isLeaf && sourceURL != "" {
		if id, ok := FromSourceURL(sourceURL); ok {
			return id
		}
	}
	return FromPath(pathTokens...)
}
