package cbor

import "testing"

func TestCanonicalizeOrdersShorterKeysFirst(t *testing.T) {
	m := newMapFromEntries([]MapEntry{
		{Key: newUint(1000), Value: newText("long key")},
		{Key: newUint(1), Value: newText("short key")},
		{Key: newUint(23), Value: newText("mid key")},
	})
	m.Canonicalize()
	if !m.IsCanonical() {
		t.Fatalf("expected map to be canonical")
	}
	entries := m.Entries()
	want := []uint64{1, 23, 1000}
	for i, e := range entries {
		u, err := e.Key.AsUint()
		if err != nil {
			t.Fatalf("AsUint: %v", err)
		}
		if u != want[i] {
			t.Errorf("entries[%d] key = %d, want %d", i, u, want[i])
		}
	}
}

func TestCanonicalizeTieBreaksLexicographically(t *testing.T) {
	m := newMapFromEntries([]MapEntry{
		{Key: newText("b"), Value: newUint(2)},
		{Key: newText("a"), Value: newUint(1)},
	})
	m.Canonicalize()
	entries := m.Entries()
	first, err := entries[0].Key.AsTstr()
	if err != nil {
		t.Fatalf("AsTstr: %v", err)
	}
	if first != "a" {
		t.Errorf("entries[0] = %q, want a", first)
	}
}

func TestLookupAfterCanonicalizeUsesBinarySearch(t *testing.T) {
	m := newMapFromEntries([]MapEntry{
		{Key: newText("zebra"), Value: newUint(1)},
		{Key: newText("apple"), Value: newUint(2)},
		{Key: newText("mango"), Value: newUint(3)},
	})
	m.Canonicalize()
	v, ok := m.GetText("mango")
	if !ok {
		t.Fatalf("GetText(mango) missing after canonicalize")
	}
	if u, _ := v.AsUint(); u != 3 {
		t.Errorf("mango = %d, want 3", u)
	}
	if _, ok := m.GetText("missing"); ok {
		t.Errorf("GetText(missing) should miss")
	}
}

func TestCompareCanonicalKeys(t *testing.T) {
	cases := []struct {
		a, b []byte
		want int
	}{
		{[]byte{1}, []byte{1, 2}, -1},
		{[]byte{1, 2}, []byte{1}, 1},
		{[]byte{1}, []byte{2}, -1},
		{[]byte{2}, []byte{1}, 1},
		{[]byte{1, 2}, []byte{1, 2}, 0},
	}
	for _, c := range cases {
		got := compareCanonicalKeys(c.a, c.b)
		if got != c.want {
			t.Errorf("compareCanonicalKeys(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
