package core

import (
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// namespaceDigestSize is the digest length in bytes; 32 bytes yields a
// 64-character lowercase hex namespace.
const namespaceDigestSize = 32

// NamespaceFromSource derives a stable namespace from a source identity
// (URL or filename). The identity is canonicalized before hashing so that
// every call site — ingestion and query alike — resolves the same source to
// the same namespace.
//
// Canonical form: lowercase, scheme stripped. For URL-shaped identities the
// hashed string is "host" + "path" + "?" + "query", so different content on
// the same domain maps to different namespaces while http/https and
// trailing-scheme differences do not. Bare filenames are lowercased
// wholesale.
func NamespaceFromSource(identity string) string {
	return namespaceDigest(CanonicalSource(identity))
}

// CanonicalSource returns the canonical identity string that
// NamespaceFromSource hashes. Exposed so callers can log or compare
// identities without recomputing the digest rules.
func CanonicalSource(identity string) string {
	identity = strings.ToLower(strings.TrimSpace(identity))
	if !strings.Contains(identity, "://") {
		return identity
	}
	u, err := url.Parse(identity)
	if err != nil {
		// Unparseable URLs still get a stable namespace.
		return identity
	}
	return u.Host + u.Path + "?" + u.RawQuery
}

func namespaceDigest(canonical string) string {
	h, _ := blake2b.New(namespaceDigestSize, nil)
	h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil))
}
