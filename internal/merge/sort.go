package merge

import (
	"sort"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

// bySortKey sorts messages by (dt, order, is-deletion-sentinel) — spec
// section 4.5/9's msg_sort: lowest datetime first, ties broken by the
// already-computed order, final ties prefer the non-deleted message.
func bySortKey(msgs []model.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i], msgs[j]
		if !a.DT.Equal(b.DT) {
			return a.DT.Before(b.DT)
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		// Final tiebreak: an original message sorts before a deleted one.
		return a.IsOriginal() && !b.IsOriginal()
	})
}
