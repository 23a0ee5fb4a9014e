package analyze

import "sort"

// mergeRanges sorts ranges by start and coalesces overlapping or touching
// ranges into the minimal equivalent set, keeping keep-range sets compact
// before the truncator renders them.
func mergeRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := make([]Range, 0, len(sorted))
	cur := sorted[0]
	for _, r := range sorted[1:] {
		if r.Start <= cur.End {
			if r.End > cur.End {
				cur.End = r.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = r
	}
	merged = append(merged, cur)
	return merged
}

// singleLine returns the half-open range covering just line i.
func singleLine(i int) Range {
	return Range{Start: i, End: i + 1}
}

// lookaheadRange returns the half-open range starting at i and extending
// lookahead lines further, clamped to total.
func lookaheadRange(i, lookahead, total int) Range {
	end := i + lookahead + 1
	if end > total {
		end = total
	}
	return Range{Start: i, End: end}
}

// allLines returns a single range spanning every line.
func allLines(total int) []Range {
	if total == 0 {
		return nil
	}
	return []Range{{Start: 0, End: total}}
}
