package moment

import (
	"fmt"

	"github.com/matchreel/matchreel/internal/domain/model"
)

// MergeAndEnforce reduces the moment list in two ordered phases: fold
// adjacent same-category trends and absorb low-value moments, then merge
// the lowest-weight adjacent pairs until the per-period and per-contest
// ceilings hold. Always-significant moments are never absorbed as
// low-value and are the last resort for ceiling merges; merging preserves
// their flag, so they survive in merged form. Running the reducer on an
// already-compliant list is a no-op.
func MergeAndEnforce(plays []model.Play, moments []Moment, tiers []int, budget Budget) ([]Moment, error) {
	if len(moments) <= 1 {
		return moments, nil
	}

	g := &merger{
		bySeq:  make(map[int]model.Play, len(plays)),
		tiers:  tiers,
		budget: budget,
	}
	for _, p := range plays {
		g.bySeq[p.Sequence] = p
	}
	for _, m := range moments {
		g.expected = append(g.expected, m.Plays...)
	}

	ms := make([]Moment, len(moments))
	copy(ms, moments)

	// Ceiling merges can create new same-category adjacencies, so both
	// phases repeat until the list stops shrinking. A compliant input
	// passes through the first iteration untouched.
	for {
		n := len(ms)
		var err error
		if ms, err = g.foldAdjacent(ms); err != nil {
			return nil, err
		}
		if ms, err = g.enforceCeilings(ms); err != nil {
			return nil, err
		}
		if len(ms) == n {
			return ms, nil
		}
	}
}

type merger struct {
	bySeq    map[int]model.Play
	tiers    []int
	budget   Budget
	expected []int
}

// mergePair unions two adjacent moments into a new value. The more
// specific category wins and the always-significant flag is the OR of the
// pair, so merges never erase significance.
func (g *merger) mergePair(a, b Moment) Moment {
	seqs := make([]int, 0, len(a.Plays)+len(b.Plays))
	seqs = append(seqs, a.Plays...)
	seqs = append(seqs, b.Plays...)

	rangePlays := make([]model.Play, len(seqs))
	for i, s := range seqs {
		rangePlays[i] = g.bySeq[s]
	}

	cat := a.Category
	if b.Category > cat {
		cat = b.Category
	}
	m := assemble(rangePlays, cat, a.ScoreBefore, g.tiers, g.budget.RunMinPoints)
	if a.AlwaysSignificant || b.AlwaysSignificant {
		m.AlwaysSignificant = true
	}
	return m
}

// mergeAt replaces the pair at i with their union and rechecks contiguity.
func (g *merger) mergeAt(ms []Moment, i int) ([]Moment, error) {
	merged := g.mergePair(ms[i], ms[i+1])
	out := make([]Moment, 0, len(ms)-1)
	out = append(out, ms[:i]...)
	out = append(out, merged)
	out = append(out, ms[i+2:]...)
	if err := g.checkContiguity(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkContiguity verifies the list still covers exactly the original play
// indices in order. A violation means a merger bug, not bad input.
func (g *merger) checkContiguity(ms []Moment) error {
	pos := 0
	for _, m := range ms {
		for _, s := range m.Plays {
			if pos >= len(g.expected) || g.expected[pos] != s {
				return fmt.Errorf("%w: unexpected play index %d", ErrContiguity, s)
			}
			pos++
		}
	}
	if pos != len(g.expected) {
		return fmt.Errorf("%w: covered %d of %d plays", ErrContiguity, pos, len(g.expected))
	}
	return nil
}

func (g *merger) lowValue(m Moment) bool {
	if m.AlwaysSignificant {
		return false
	}
	return len(m.Plays) < g.budget.MinPlays || m.ScoreBefore == m.ScoreAfter
}

// foldAdjacent runs phase one to a fixpoint: extend same-category trends,
// then absorb low-value moments into the more specific neighbor.
func (g *merger) foldAdjacent(ms []Moment) ([]Moment, error) {
	for {
		merged := false
		var err error

		for i := 0; i+1 < len(ms); i++ {
			if ms[i].Category == ms[i+1].Category && ms[i].Category.sameCategoryMergeable() {
				if ms, err = g.mergeAt(ms, i); err != nil {
					return nil, err
				}
				merged = true
				break
			}
		}
		if merged {
			continue
		}

		for i := 0; i < len(ms) && len(ms) > 1; i++ {
			if !g.lowValue(ms[i]) {
				continue
			}
			at := i - 1
			switch {
			case i == 0:
				at = 0
			case i == len(ms)-1:
				at = i - 1
			case ms[i+1].Category > ms[i-1].Category:
				at = i
			}
			if ms, err = g.mergeAt(ms, at); err != nil {
				return nil, err
			}
			merged = true
			break
		}
		if !merged {
			return ms, nil
		}
	}
}

// enforceCeilings runs phase two: per-period ceilings first, then the
// contest ceiling, merging the lowest-weight adjacent pair each step.
func (g *merger) enforceCeilings(ms []Moment) ([]Moment, error) {
	var err error
	for {
		period, over := g.periodOverBudget(ms)
		if !over {
			break
		}
		i, ok := g.cheapestPair(ms, period)
		if !ok {
			break
		}
		if ms, err = g.mergeAt(ms, i); err != nil {
			return nil, err
		}
	}

	for len(ms) > g.budget.MaxPerContest && len(ms) > 1 {
		i, ok := g.cheapestPair(ms, 0)
		if !ok {
			break
		}
		if ms, err = g.mergeAt(ms, i); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

func (g *merger) periodOf(m Moment) int {
	return g.bySeq[m.FirstSequence()].Period
}

// periodOverBudget returns the first period whose moment count exceeds the
// ceiling.
func (g *merger) periodOverBudget(ms []Moment) (int, bool) {
	counts := make(map[int]int)
	order := make([]int, 0, 8)
	for _, m := range ms {
		p := g.periodOf(m)
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}
	for _, p := range order {
		if counts[p] > g.budget.MaxPerPeriod {
			return p, true
		}
	}
	return 0, false
}

// cheapestPair finds the adjacent pair with the smallest narrative weight:
// fewest always-significant members first, then fewest combined plays,
// then smallest combined score delta, then earliest position. period of 0
// considers every pair; otherwise both members must sit in that period.
func (g *merger) cheapestPair(ms []Moment, period int) (int, bool) {
	best := -1
	var bestRank [3]int
	for i := 0; i+1 < len(ms); i++ {
		a, b := ms[i], ms[i+1]
		if period != 0 && (g.periodOf(a) != period || g.periodOf(b) != period) {
			continue
		}
		rank := [3]int{
			boolToInt(a.AlwaysSignificant) + boolToInt(b.AlwaysSignificant),
			len(a.Plays) + len(b.Plays),
			scoreDelta(a) + scoreDelta(b),
		}
		if best == -1 || lessRank(rank, bestRank) {
			best, bestRank = i, rank
		}
	}
	return best, best != -1
}

func scoreDelta(m Moment) int {
	d := m.ScoreAfter.Total() - m.ScoreBefore.Total()
	if d < 0 {
		d = -d
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func lessRank(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
