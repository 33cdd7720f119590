package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainList prefixes list digests. The version suffix allows the
// algorithm to change without colliding with older digests.
const DomainList = "linkview/list/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ListDigest returns a digest over the ordered object ids of a list.
// Two lists have the same digest exactly when they link the same objects
// in the same order.
func ListDigest(refs []ObjectRef) string {
	ids := make(IRArray, len(refs))
	for i, r := range refs {
		ids[i] = IRString(r.ID)
	}
	// An array of strings always marshals.
	canonical, _ := MarshalCanonical(ids)
	return hashWithDomain(DomainList, canonical)
}
