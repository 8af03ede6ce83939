package cbor

import "sort"

// Canonicalize orders m's entries by canonical CBOR map ordering: the
// entry whose encoded key is shorter sorts first; ties are broken by
// byte-lexicographic comparison of the encoded keys. Lookups
// against a canonicalized map use binary search instead of linear scan.
//
// Canonicalization is never performed automatically on decode - callers
// that want binary-search lookups must call this explicitly, and must call
// it again after any mutation (there is currently no mutation API on Map,
// so in practice this means: call it once, after building or decoding).
func (m *Map) Canonicalize() {
	if m == nil || m.canonical {
		return
	}
	for idx := range m.entries {
		if m.entries[idx].encodedKey == nil {
			enc, err := Encode(m.entries[idx].Key)
			if err != nil {
				// A key that cannot be canonically encoded (e.g. a
				// map or array used as a map key) cannot be ordered;
				// leave canonicalization off rather than panic.
				return
			}
			m.entries[idx].encodedKey = enc
		}
	}
	sort.SliceStable(m.entries, func(i, j int) bool {
		return compareCanonicalKeys(m.entries[i].encodedKey, m.entries[j].encodedKey) < 0
	})
	m.canonical = true
}

// compareCanonicalKeys implements CBOR canonical ordering: shorter encoded
// key first; among equal lengths, byte-lexicographic order.
func compareCanonicalKeys(a, b []byte) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
