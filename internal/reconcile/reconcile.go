// Package reconcile compares a conversation's previously persisted canonical
// sequence against a freshly merged local one and emits only the
// incremental tail the server hasn't seen yet (spec section 4.7).
package reconcile

import (
	"fmt"

	"github.com/tattle-made/whatsapp-scraper/internal/merge"
	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

// PrefixViolation means a local sequence cannot be reconciled with the
// persisted history without changing it: the persisted history starts after
// the local sequence, the two share no overlap, or their merge does not
// start with the persisted sequence (for example because a local message
// would replace a persisted one).
type PrefixViolation struct {
	Reason string
}

func (e *PrefixViolation) Error() string {
	return fmt.Sprintf("reconcile: persisted prefix not preserved: %s", e.Reason)
}

// Reconciler merges a conversation's persisted history with its freshly
// re-merged local sequence and emits the part the server hasn't seen.
type Reconciler struct {
	Pairwise merge.Pairwise
}

// Reconcile returns the new full canonical sequence and the tail of it that
// is new relative to persisted (i.e. merged[len(persisted):]). If persisted
// is empty the entire merged sequence is the tail.
func (r Reconciler) Reconcile(persisted, local []model.Message) (merged, tail []model.Message, err error) {
	if len(persisted) == 0 {
		return local, local, nil
	}
	if len(local) == 0 {
		return persisted, nil, nil
	}

	if persisted[0].DT.After(local[0].DT) {
		return nil, nil, &PrefixViolation{Reason: fmt.Sprintf(
			"persisted history starts at %s, after the local sequence's first message at %s",
			persisted[0].DT, local[0].DT)}
	}

	merged, err = r.Pairwise.Merge(persisted, local)
	if err != nil {
		if err == merge.ErrNoOverlap {
			return nil, nil, &PrefixViolation{Reason: "local sequence shares no overlap with persisted history"}
		}
		return nil, nil, err
	}

	if len(merged) < len(persisted) {
		return nil, nil, &PrefixViolation{Reason: fmt.Sprintf(
			"merged sequence (%d) is shorter than persisted history (%d)", len(merged), len(persisted))}
	}
	for i := range persisted {
		if !merged[i].Equal(&persisted[i]) {
			return nil, nil, &PrefixViolation{Reason: fmt.Sprintf(
				"message at position %d diverges from persisted history", i)}
		}
	}

	return merged, merged[len(persisted):], nil
}
