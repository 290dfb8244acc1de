package merge

import (
	"fmt"
	"sort"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

// IntegrityViolation signals that a merge failed one of the invariants a
// correct merge must preserve — every input message's content must survive
// somewhere in the output, and the output's Order values must be dense
// (0..N-1, no gaps or repeats). Either failure means a bug in the merge
// itself, not bad input, so callers should treat it as fatal for the run.
type IntegrityViolation struct {
	Reason string
}

func (e *IntegrityViolation) Error() string {
	return fmt.Sprintf("merge integrity violation: %s", e.Reason)
}

// Group merges every file belonging to one conversation into a single
// canonical sequence (spec section 4.6).
type Group struct {
	Pairwise Pairwise
}

// Merge buckets msgs by FileIdx and iteratively folds the buckets together
// via Pairwise.Merge, in ascending FileIdx order. It asserts content
// preservation and order density before returning.
func (g Group) Merge(msgs []model.Message) ([]model.Message, error) {
	buckets := bucketByFileIdx(msgs)
	if len(buckets) == 0 {
		return nil, nil
	}

	canonical := sortedCopy(buckets[0])
	reorder(canonical)
	for _, bucket := range buckets[1:] {
		merged, err := g.Pairwise.Merge(canonical, bucket)
		if err != nil {
			if err == ErrNoOverlap {
				merged = disjointConcat(sortedCopy(canonical), sortedCopy(bucket))
			} else {
				return nil, err
			}
		}
		canonical = merged
	}

	if err := assertContentPreserved(msgs, canonical); err != nil {
		return nil, err
	}
	if err := assertOrderDense(canonical); err != nil {
		return nil, err
	}
	return canonical, nil
}

func bucketByFileIdx(msgs []model.Message) [][]model.Message {
	byIdx := make(map[int][]model.Message)
	var idxs []int
	for _, m := range msgs {
		if _, ok := byIdx[m.FileIdx]; !ok {
			idxs = append(idxs, m.FileIdx)
		}
		byIdx[m.FileIdx] = append(byIdx[m.FileIdx], m)
	}
	sort.Ints(idxs)
	out := make([][]model.Message, len(idxs))
	for i, idx := range idxs {
		out[i] = byIdx[idx]
	}
	return out
}

// assertContentPreserved checks that every distinct original content value
// present in the inputs still appears somewhere in the merged output.
// Deletion/media-omission sentinels are exempt since the winning side of a
// merge may legitimately replace one with the other's original content.
func assertContentPreserved(inputs, merged []model.Message) error {
	present := make(map[string]bool, len(merged))
	for _, m := range merged {
		if m.IsOriginal() {
			present[contentKey(m)] = true
		}
	}
	for _, m := range inputs {
		if !m.IsOriginal() {
			continue
		}
		if !present[contentKey(m)] {
			return &IntegrityViolation{Reason: fmt.Sprintf(
				"message from sender %q with content %q was lost during merge", m.SenderID, m.Content)}
		}
	}
	return nil
}

// contentKey identifies a message by content alone, matching the original's
// unique_content_in = set(m.content for m in msgs if m.is_original()): a
// merge winner may take its SenderID/GroupID from the losing side, so
// keying on sender would spuriously flag a legitimate attribution change.
func contentKey(m model.Message) string {
	return m.Content
}

func assertOrderDense(msgs []model.Message) error {
	for i, m := range msgs {
		if m.Order != i {
			return &IntegrityViolation{Reason: fmt.Sprintf(
				"order is not dense: position %d has Order=%d", i, m.Order)}
		}
	}
	return nil
}
