package storage

import (
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

// PruneExpired splits objs into those still live at now and those whose expiry
// has passed. Both results are fresh slices.
func PruneExpired(objs []model.Objective, now time.Time) (kept, removed []model.Objective) {
	kept = make([]model.Objective, 0, len(objs))
	for _, o := range objs {
		if o.Expired(now) {
			removed = append(removed, o)
			continue
		}
		kept = append(kept, o)
	}
	return kept, removed
}
