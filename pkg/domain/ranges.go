package domain

import "sort"

// Range is a half-open interval [Start, End) of viewport-height fraction.
// The final range of a merged set treats its End as inclusive, so a fraction
// landing exactly on the last bound still resolves to the last range.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// RangesFromPoints builds the n-1 contiguous ranges between consecutive
// points. Points must be ascending; fewer than two points yield no ranges.
func RangesFromPoints(points []float64) []Range {
	if len(points) < 2 {
		return nil
	}
	ranges := make([]Range, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		ranges = append(ranges, Range{Start: points[i], End: points[i+1]})
	}
	return ranges
}

// MergeRanges sorts the input by Start and collapses genuinely overlapping
// entries into one spanning range. Two ranges merge only when the second
// starts strictly before the first ends; pure adjacency (Start == End) keeps
// side-by-side segments addressable as separate states. The operation is
// idempotent.
func MergeRanges(in []Range) []Range {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]Range, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start < last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// LocateRange resolves the range occupied by a fraction. It returns -1 when
// the fraction lies before the first range; otherwise it returns the index
// of the last range whose Start is <= frac. Starts are inclusive and ends
// exclusive, so a fraction sitting exactly on the boundary between two
// contiguous ranges belongs to the later one; anything at or past the last
// range's Start belongs to the last range, which makes its End inclusive.
func LocateRange(ranges []Range, frac float64) int {
	idx := -1
	for i, r := range ranges {
		if frac >= r.Start {
			idx = i
		} else {
			break
		}
	}
	return idx
}

// RangeProgress returns the normalized position of frac within the range at
// idx, clamped to [0, 1]. Fractions before all ranges clamp to 0, fractions
// past the occupied range's end clamp to 1.
func RangeProgress(ranges []Range, idx int, frac float64) float64 {
	if len(ranges) == 0 {
		return 0
	}
	if idx < 0 {
		return 0
	}
	if idx >= len(ranges) {
		idx = len(ranges) - 1
	}
	r := ranges[idx]
	span := r.End - r.Start
	if span <= 0 {
		return 1
	}
	p := (frac - r.Start) / span
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
