package moment

import (
	"sort"

	"github.com/matchreel/matchreel/internal/domain/boundary"
	"github.com/matchreel/matchreel/internal/domain/lead"
	"github.com/matchreel/matchreel/internal/domain/model"
)

// Build partitions the play sequence at the confirmed boundary positions.
// Each contiguous range becomes one moment whose category comes from the
// boundary that opened it. Pure; the input detection must already be
// deduplicated and sequence-ordered.
func Build(plays []model.Play, det boundary.Detection, tiers []int, budget Budget) []Moment {
	if len(plays) == 0 {
		return nil
	}
	sorted := make([]model.Play, len(plays))
	copy(sorted, plays)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	openKind := make(map[int]boundary.Kind, len(det.Boundaries))
	for _, b := range det.Boundaries {
		openKind[b.Sequence] = b.Kind
	}

	var moments []Moment
	var scoreBefore model.Score
	start := 0
	flush := func(end int) {
		if end <= start {
			return
		}
		rangePlays := sorted[start:end]
		cat := CategoryNeutral
		if k, ok := openKind[rangePlays[0].Sequence]; ok {
			cat = categoryFor(k)
		}
		m := assemble(rangePlays, cat, scoreBefore, tiers, budget.RunMinPoints)
		scoreBefore = m.ScoreAfter
		moments = append(moments, m)
		start = end
	}

	for i := 1; i < len(sorted); i++ {
		if _, cut := openKind[sorted[i].Sequence]; cut {
			flush(i)
		}
	}
	flush(len(sorted))
	return moments
}

// assemble computes a moment's metadata from its play range. Scores are
// forward-filled from the last known value; the run scan finds the longest
// unanswered streak by either side.
func assemble(rangePlays []model.Play, cat Category, scoreBefore model.Score, tiers []int, runMin int) Moment {
	seqs := make([]int, len(rangePlays))
	for i, p := range rangePlays {
		seqs[i] = p.Sequence
	}

	after := scoreBefore
	for _, p := range rangePlays {
		if p.IsScoring() {
			after = *p.Score
		}
	}

	first, last := rangePlays[0], rangePlays[len(rangePlays)-1]
	m := Moment{
		Category:    cat,
		Plays:       seqs,
		ScoreBefore: scoreBefore,
		ScoreAfter:  after,
		Clock: ClockRange{
			StartPeriod: first.Period,
			StartClock:  first.Clock,
			EndPeriod:   last.Period,
			EndClock:    last.Clock,
		},
		Run: detectRun(rangePlays, scoreBefore, runMin),
	}

	switch {
	case cat.alwaysSignificant():
		m.AlwaysSignificant = true
	case cat == CategoryLeadBuild || cat == CategoryCut:
		m.AlwaysSignificant = tierDeltaSignificant(tiers, scoreBefore, after)
	}
	return m
}

// detectRun scans the range for the longest streak of points by one side
// with none by the other. Streaks under runMin report nothing.
func detectRun(rangePlays []model.Play, scoreBefore model.Score, runMin int) *RunInfo {
	prev := scoreBefore
	var homeTotal, awayTotal int

	curSide := lead.SideNone
	curPoints := 0
	bestSide := lead.SideNone
	bestPoints := 0

	for _, p := range rangePlays {
		if !p.IsScoring() {
			continue
		}
		homeDelta := p.Score.Home - prev.Home
		awayDelta := p.Score.Away - prev.Away
		prev = *p.Score
		homeTotal += homeDelta
		awayTotal += awayDelta

		side := lead.SideNone
		points := 0
		switch {
		case homeDelta > 0 && awayDelta == 0:
			side, points = lead.SideHome, homeDelta
		case awayDelta > 0 && homeDelta == 0:
			side, points = lead.SideAway, awayDelta
		default:
			// Both moved or a correction; any streak is broken.
			curSide, curPoints = lead.SideNone, 0
			continue
		}

		if side == curSide {
			curPoints += points
		} else {
			curSide, curPoints = side, points
		}
		if curPoints > bestPoints {
			bestSide, bestPoints = curSide, curPoints
		}
	}

	if bestPoints < runMin {
		return nil
	}
	unanswered := (bestSide == lead.SideHome && awayTotal == 0) ||
		(bestSide == lead.SideAway && homeTotal == 0)
	return &RunInfo{Side: bestSide, Points: bestPoints, Unanswered: unanswered}
}
