package timeline

import "sort"

// Merge interleaves the given event streams into one sequence ordered by
// the composite key (phase order, intra-phase order, type priority, stable
// key). The key is a total order, so identical inputs always produce
// identical output regardless of stream or element ordering. Merging never
// fails; events with malformed phases carry the unknown phase and sort
// after all known phases rather than being dropped.
func Merge(streams ...[]Event) []Event {
	total := 0
	for _, s := range streams {
		total += len(s)
	}
	merged := make([]Event, 0, total)
	for _, s := range streams {
		merged = append(merged, s...)
	}

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if ao, bo := a.Phase.Order(), b.Phase.Order(); ao != bo {
			return ao < bo
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if ap, bp := a.Type.priority(), b.Type.priority(); ap != bp {
			return ap < bp
		}
		return a.Key < b.Key
	})
	return merged
}
