package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainRequest is the domain prefix for request hashes.
// The version suffix allows the hashed field set to change later.
const DomainRequest = "sigconv/request/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash computes the content-addressed hash of a request's canonical
// form. Two requests with the same text fields hash identically regardless
// of key order or Unicode normalization form.
func ContentHash(fields map[string]any) (string, error) {
	canonical, err := MarshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRequest, canonical), nil
}
