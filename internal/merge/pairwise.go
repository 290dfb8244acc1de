// Package merge reconciles overlapping message sequences pulled from
// independent exports of the same conversation (spec sections 4.5 and 4.6).
package merge

import (
	"time"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

const candidateWindow = 60 * time.Second
const strongMatchThreshold = 20
const weakMatchFloor = 3

// ErrNoOverlap means no candidate offset produced any agreement between the
// two sequences — they belong to the same conversation but share no common
// window of messages, so the caller should treat them as disjoint.
var ErrNoOverlap = noOverlapError{}

type noOverlapError struct{}

func (noOverlapError) Error() string { return "pairwise merge: no overlapping offset found" }

// Pairwise merges two message sequences from the same conversation into one
// canonical sequence with dense Order values starting at 0.
type Pairwise struct{}

// Merge aligns a and b and returns their union in canonical order. Both
// inputs are sorted internally; neither is mutated.
func (Pairwise) Merge(a, b []model.Message) ([]model.Message, error) {
	sa := sortedCopy(a)
	sb := sortedCopy(b)
	if len(sa) == 0 {
		reorder(sb)
		return sb, nil
	}
	if len(sb) == 0 {
		reorder(sa)
		return sa, nil
	}

	// Canonical orientation: sa starts no later than sb.
	if sa[0].DT.After(sb[0].DT) {
		sa, sb = sb, sa
	}

	if sa[len(sa)-1].DT.Before(sb[0].DT) {
		return disjointConcat(sa, sb), nil
	}

	offset, err := findOffset(sa, sb)
	if err != nil {
		return nil, err
	}
	return mergeAtOffset(sa, sb, offset), nil
}

func sortedCopy(msgs []model.Message) []model.Message {
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	bySortKey(out)
	return out
}

func disjointConcat(a, b []model.Message) []model.Message {
	out := make([]model.Message, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	reorder(out)
	return out
}

// findOffset searches for an integer offset (a's order minus b's order for a
// presumed-matching pair) such that a[i+offset] and b[i] agree across the
// aligned range. It mirrors the original scraper's candidate search: only
// pairs within candidateWindow of each other are tried, offsets are tested
// at most once, and a strong match short-circuits the search.
func findOffset(a, b []model.Message) (int, error) {
	tested := make(map[int]bool)
	bestOffset := 0
	bestScore := -1
	found := false

	for _, ma := range a {
		if b[0].DT.Sub(ma.DT) > candidateWindow {
			continue
		}
		for _, mb := range b {
			if mb.DT.Sub(ma.DT) > candidateWindow {
				break
			}
			if ma.DT.Sub(mb.DT) > candidateWindow {
				break
			}
			offset := ma.Order - mb.Order
			if tested[offset] {
				continue
			}
			tested[offset] = true

			strong, score := checkMatch(a, b, offset)
			if strong {
				return offset, nil
			}
			if score > bestScore {
				bestScore = score
				bestOffset = offset
				found = true
			}
		}
	}

	if !found || bestScore <= 0 {
		return 0, ErrNoOverlap
	}
	return bestOffset, nil
}

// checkMatch tests whether offset aligns a and b consistently: any
// disagreement between a paired sender, datetime, or original content
// disqualifies the offset outright. It returns (true, n) once n reaches
// strongMatchThreshold agreements, or (false, n) with the total agreement
// count otherwise. The count is 0 if offset is disqualified, or if n is
// below both weakMatchFloor and half the shorter sequence's length.
func checkMatch(a, b []model.Message, offset int) (bool, int) {
	matches := 0
	lo := -offset
	if lo < 0 {
		lo = 0
	}
	hi := len(a) + len(b)

	for i := lo; i < hi; i++ {
		ai := i + offset
		if ai < 0 || ai >= len(a) {
			continue
		}
		if i >= len(b) {
			continue
		}
		ma, mb := a[ai], b[i]

		if ma.SenderID != mb.SenderID {
			return false, 0
		}
		if absDuration(ma.DT.Sub(mb.DT)) > candidateWindow+time.Second {
			return false, 0
		}
		if !ma.IsOriginal() || !mb.IsOriginal() {
			continue
		}
		if ma.Content != mb.Content {
			return false, 0
		}
		matches++
		if matches >= strongMatchThreshold {
			return true, matches
		}
	}

	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	if matches >= weakMatchFloor || matches >= minLen/2 {
		return false, matches
	}
	return false, 0
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// mergeAtOffset folds b into a at the given offset: paired messages are
// resolved via model.Message.Merge (content ranking), unpaired messages on
// either end are appended in their original relative order.
func mergeAtOffset(a, b []model.Message, offset int) []model.Message {
	lo := -offset
	if lo > 0 {
		lo = 0
	}
	hi := len(a) - offset
	if len(b) > hi {
		hi = len(b)
	}

	out := make([]model.Message, 0, hi-lo)
	for i := lo; i < hi; i++ {
		ai := i + offset
		hasA := ai >= 0 && ai < len(a)
		hasB := i >= 0 && i < len(b)

		switch {
		case hasA && hasB:
			merged := a[ai].Merge(&b[i])
			out = append(out, merged)
		case hasA:
			out = append(out, a[ai])
		case hasB:
			out = append(out, b[i])
		}
	}
	reorder(out)
	return out
}

func reorder(msgs []model.Message) {
	bySortKey(msgs)
	for i := range msgs {
		msgs[i].Order = i
	}
}
