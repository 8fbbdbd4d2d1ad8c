package search

import (
	"sort"
	"testing"
)

func contains(frags []string, want string) bool {
	for _, f := range frags {
		if f == want {
			return true
		}
	}
	return false
}

func TestFragmentsEdgePrefixes(t *testing.T) {
	frags := Fragments("Dr. Amina")

	// full-name prefixes, lowercased
	for _, want := range []string{"dr", "dr.", "dr. ", "dr. a", "dr. amina"} {
		if !contains(frags, want) {
			t.Errorf("missing full-name fragment %q", want)
		}
	}
	// token prefixes, so searching by surname alone matches
	for _, want := range []string{"am", "ami", "amina"} {
		if !contains(frags, want) {
			t.Errorf("missing token fragment %q", want)
		}
	}
	// nothing shorter than the minimum
	for _, f := range frags {
		if len([]rune(f)) < MinFragment {
			t.Errorf("fragment %q shorter than minimum %d", f, MinFragment)
		}
	}
}

func TestFragmentsCapLength(t *testing.T) {
	frags := Fragments("Bartholomew Featherstonehaugh")
	for _, f := range frags {
		if len([]rune(f)) > MaxFragment {
			t.Errorf("fragment %q exceeds max length %d", f, MaxFragment)
		}
	}
	if !contains(frags, "featherstonehau") {
		t.Error("expected the 15-rune token prefix to be present")
	}
}

func TestFragmentsDeduplicates(t *testing.T) {
	frags := Fragments("Ana Ana")
	sorted := append([]string(nil), frags...)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			t.Fatalf("duplicate fragment %q", sorted[i])
		}
	}
}

func TestFragmentsEmptyAndShortNames(t *testing.T) {
	if frags := Fragments("  "); frags != nil {
		t.Errorf("blank name produced fragments: %v", frags)
	}
	// one-rune name has no fragment of the minimum length
	if frags := Fragments("A"); len(frags) != 0 {
		t.Errorf("single-rune name produced fragments: %v", frags)
	}
}
