package reconstruction

import (
	"log/slog"
	"sort"

	"dicomslicesto3d/internal/models"
)

// OrderSlices returns the slices in anatomical order.
//
// When every slice carries a slice location the result is sorted ascending by
// location; the sort is stable so slices sharing a location keep their input
// order. If any slice lacks a location, positional metadata is ignored for the
// whole set and the input order is kept: a partial sort by an unreliable key
// can yield a plausible but scrambled volume. The second return value reports
// whether that fallback was taken.
//
// The input slice is never reordered in place.
func OrderSlices(slices []*models.Slice, logger *slog.Logger) ([]*models.Slice, bool) {
	ordered := make([]*models.Slice, len(slices))
	copy(ordered, slices)

	for _, s := range ordered {
		if s.Metadata.SliceLocation == nil {
			if logger != nil {
				logger.Info("slice location unavailable, keeping original order",
					"file", s.Metadata.Filename, "slices", len(ordered))
			}
			return ordered, true
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return *ordered[i].Metadata.SliceLocation < *ordered[j].Metadata.SliceLocation
	})
	return ordered, false
}
