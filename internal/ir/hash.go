package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for content-addressed query identity.
// Version suffix enables future algorithm migration.
const DomainQuery = "filterkit/query/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueryHash computes a content-addressed fingerprint for a query.
// Two queries hash equal iff their canonical JSON is byte-identical, so
// modifier order is significant and object key order is not.
func QueryHash(q JsonQuery) (string, error) {
	canonical, err := MarshalCanonical(q)
	if err != nil {
		return "", fmt.Errorf("QueryHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// MustQueryHash is like QueryHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustQueryHash(q JsonQuery) string {
	h, err := QueryHash(q)
	if err != nil {
		panic(err)
	}
	return h
}
