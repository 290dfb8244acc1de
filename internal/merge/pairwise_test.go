package merge

import (
	"testing"
	"time"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

func mustTime(t *testing.T, layout, value string) time.Time {
	t.Helper()
	tm, err := time.Parse(layout, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return tm
}

func msgAt(t *testing.T, minute int, order int, sender, content string) model.Message {
	return model.Message{
		DT:       mustTime(t, "15:04", "10:00").Add(time.Duration(minute) * time.Minute),
		Order:    order,
		SenderID: sender,
		Content:  content,
	}
}

func TestPairwiseMergeDisjointSequences(t *testing.T) {
	a := []model.Message{msgAt(t, 0, 0, "s1", "hello")}
	b := []model.Message{msgAt(t, 120, 0, "s1", "much later")}

	out, err := Pairwise{}.Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(out))
	}
	if out[0].Content != "hello" || out[1].Content != "much later" {
		t.Errorf("unexpected order: %+v", out)
	}
	if out[0].Order != 0 || out[1].Order != 1 {
		t.Errorf("expected dense order, got %d, %d", out[0].Order, out[1].Order)
	}
}

func TestPairwiseMergeFullOverlapDeduplicates(t *testing.T) {
	var a, b []model.Message
	for i := 0; i < 25; i++ {
		a = append(a, msgAt(t, i, i, "s1", "msg"))
		b = append(b, msgAt(t, i, i, "s1", "msg"))
	}

	out, err := Pairwise{}.Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(out) != 25 {
		t.Fatalf("expected 25 deduplicated messages, got %d", len(out))
	}
}

func TestPairwiseMergePartialOverlapAligns(t *testing.T) {
	// a: messages 0..24 ("shared" content for all of them so checkMatch can
	// accumulate a strong match), b: messages 20..44 overlapping at 20..24,
	// continuing with new content through 44.
	var a []model.Message
	for i := 0; i < 25; i++ {
		a = append(a, msgAt(t, i, i, "s1", "shared"))
	}
	var b []model.Message
	for i := 20; i < 45; i++ {
		content := "shared"
		if i >= 25 {
			content = "new"
		}
		b = append(b, msgAt(t, i, i-20, "s1", content))
	}

	out, err := Pairwise{}.Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(out) != 45 {
		t.Fatalf("expected 45 total messages after alignment, got %d", len(out))
	}
	for i, m := range out {
		if m.Order != i {
			t.Fatalf("expected dense order at %d, got %d", i, m.Order)
		}
	}
}

func TestPairwiseMergeNoOverlapSameWindowButDifferentSenders(t *testing.T) {
	a := []model.Message{msgAt(t, 0, 0, "s1", "a"), msgAt(t, 1, 1, "s1", "b")}
	b := []model.Message{msgAt(t, 0, 0, "s2", "x"), msgAt(t, 1, 1, "s2", "y")}

	_, err := Pairwise{}.Merge(a, b)
	if err != ErrNoOverlap {
		t.Fatalf("expected ErrNoOverlap, got %v", err)
	}
}

func TestPairwiseMergeEmptySide(t *testing.T) {
	a := []model.Message{msgAt(t, 0, 0, "s1", "hi")}
	out, err := Pairwise{}.Merge(a, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected passthrough of a, got %+v", out)
	}
}
