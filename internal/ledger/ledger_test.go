package ledger

import (
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestAlreadyIngestedIsFalseForUnknownFile(t *testing.T) {
	l := openTestLedger(t)
	seen, err := l.AlreadyIngested("file-1", "hash-a")
	if err != nil {
		t.Fatalf("AlreadyIngested: %v", err)
	}
	if seen {
		t.Fatal("a file never recorded should not be reported as already ingested")
	}
}

func TestRecordThenAlreadyIngestedMatchesSameHash(t *testing.T) {
	l := openTestLedger(t)
	if err := l.Record("file-1", "folder-1", "hash-a", time.Unix(0, 0)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	seen, err := l.AlreadyIngested("file-1", "hash-a")
	if err != nil {
		t.Fatalf("AlreadyIngested: %v", err)
	}
	if !seen {
		t.Fatal("expected the recorded file/hash pair to be reported as ingested")
	}
}

func TestAlreadyIngestedIsFalseWhenContentChanged(t *testing.T) {
	l := openTestLedger(t)
	if err := l.Record("file-1", "folder-1", "hash-a", time.Unix(0, 0)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	seen, err := l.AlreadyIngested("file-1", "hash-b")
	if err != nil {
		t.Fatalf("AlreadyIngested: %v", err)
	}
	if seen {
		t.Fatal("a changed content hash should not be reported as already ingested")
	}
}

func TestRecordIsIdempotentAcrossUpdates(t *testing.T) {
	l := openTestLedger(t)
	if err := l.Record("file-1", "folder-1", "hash-a", time.Unix(0, 0)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record("file-1", "folder-1", "hash-b", time.Unix(100, 0)); err != nil {
		t.Fatalf("Record (update): %v", err)
	}
	seen, err := l.AlreadyIngested("file-1", "hash-b")
	if err != nil {
		t.Fatalf("AlreadyIngested: %v", err)
	}
	if !seen {
		t.Fatal("expected the updated hash to be the one on record")
	}
}
