package anonymize

import "testing"

func TestAnonymizeDeterministic(t *testing.T) {
	a := New("pepper")
	got1 := a.Anonymize("+91 12345 12345", "group-a")
	got2 := a.Anonymize("+91 12345 12345", "group-a")
	if got1 != got2 {
		t.Fatalf("expected deterministic digest, got %q and %q", got1, got2)
	}
}

func TestAnonymizeDiffersBySalt2(t *testing.T) {
	a := New("pepper")
	got1 := a.Anonymize("+91 12345 12345", "group-a")
	got2 := a.Anonymize("+91 12345 12345", "group-b")
	if got1 == got2 {
		t.Fatalf("expected different digests for different salt2, got %q for both", got1)
	}
}

func TestAnonymizeDiffersByGlobalSalt(t *testing.T) {
	got1 := New("pepper-one").Anonymize("+91 12345 12345", "")
	got2 := New("pepper-two").Anonymize("+91 12345 12345", "")
	if got1 == got2 {
		t.Fatalf("expected different digests for different global salts, got %q for both", got1)
	}
}

func TestAnonymizeIsHex(t *testing.T) {
	got := New("pepper").Anonymize("anything", "")
	if len(got) != 64 {
		t.Fatalf("expected 64 hex chars (sha256), got %d: %q", len(got), got)
	}
	for _, r := range got {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			t.Fatalf("expected lowercase hex digest, got %q", got)
		}
	}
}

func TestNewWithRandomSaltIsNonDeterministicAcrossInstances(t *testing.T) {
	a1, err := NewWithRandomSalt()
	if err != nil {
		t.Fatalf("NewWithRandomSalt: %v", err)
	}
	a2, err := NewWithRandomSalt()
	if err != nil {
		t.Fatalf("NewWithRandomSalt: %v", err)
	}
	if a1.Anonymize("x", "") == a2.Anonymize("x", "") {
		t.Fatalf("expected independently-random salts to (almost certainly) differ")
	}
}
