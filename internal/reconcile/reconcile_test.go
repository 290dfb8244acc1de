package reconcile

import (
	"testing"
	"time"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

func reconcileMsg(minute, order int, sender, content string) model.Message {
	base, _ := time.Parse("15:04", "09:00")
	return model.Message{
		DT:       base.Add(time.Duration(minute) * time.Minute),
		Order:    order,
		SenderID: sender,
		Content:  content,
	}
}

func TestReconcileEmptyPersistedEmitsEverything(t *testing.T) {
	local := []model.Message{reconcileMsg(0, 0, "s1", "hi")}
	merged, tail, err := Reconciler{}.Reconcile(nil, local)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(merged) != 1 || len(tail) != 1 {
		t.Fatalf("expected the whole local sequence as tail, got merged=%+v tail=%+v", merged, tail)
	}
}

func TestReconcileEmitsOnlyTheNewTail(t *testing.T) {
	persisted := []model.Message{
		reconcileMsg(0, 0, "s1", "hi"),
		reconcileMsg(1, 1, "s1", "there"),
	}
	local := []model.Message{
		reconcileMsg(0, 0, "s1", "hi"),
		reconcileMsg(1, 1, "s1", "there"),
		reconcileMsg(2, 2, "s1", "new message"),
	}

	merged, tail, err := Reconciler{}.Reconcile(persisted, local)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("expected 3 total messages, got %d", len(merged))
	}
	if len(tail) != 1 || tail[0].Content != "new message" {
		t.Fatalf("expected exactly the new message in the tail, got %+v", tail)
	}
}

func TestReconcileRejectsAChangedPersistedPrefix(t *testing.T) {
	persisted := []model.Message{
		reconcileMsg(0, 0, "s1", model.DeletedThis),
	}
	// Same logical message resurfaces locally with its real content — a
	// higher-ranked candidate that would normally win a merge, but here it
	// would retroactively rewrite already-persisted history.
	local := []model.Message{
		reconcileMsg(0, 0, "s1", "the actual content"),
	}

	_, _, err := Reconciler{}.Reconcile(persisted, local)
	if err == nil {
		t.Fatal("expected a PrefixViolation")
	}
	if _, ok := err.(*PrefixViolation); !ok {
		t.Fatalf("expected *PrefixViolation, got %T: %v", err, err)
	}
}
