// Package lead computes per-play lead-margin state and tier crossings.
// The tracker is a pure fold over the play sequence: no backtracking, no
// I/O, and non-scoring plays never alter lead state.
package lead

import (
	"fmt"
	"sort"

	"github.com/matchreel/matchreel/internal/domain/model"
)

// Side identifies which team holds the lead.
type Side int

// Lead sides.
const (
	SideNone Side = iota
	SideHome
	SideAway
)

// String renders the wire label for the side.
func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// State is the lead situation after one scoring play.
type State struct {
	Sequence int
	Score    model.Score
	Margin   int // home minus away
	Tier     int // 0 = below the first threshold
	Leader   Side
}

// CrossingKind enumerates the detected lead-state transitions.
type CrossingKind int

// Crossing kinds.
const (
	TierUp CrossingKind = iota
	TierDown
	Flip
	Tie
)

// String renders the wire label for the crossing kind.
func (k CrossingKind) String() string {
	switch k {
	case TierUp:
		return "tier-up"
	case TierDown:
		return "tier-down"
	case Flip:
		return "flip"
	default:
		return "tie"
	}
}

// Crossing records one transition between consecutive scoring plays.
type Crossing struct {
	Kind     CrossingKind
	Sequence int // play that caused the crossing
	From     State
	To       State
}

// Result is the tracker output: one state per scoring play, and every raw
// crossing in sequence order. Crossings are candidates only; confirmation
// is the boundary detector's job.
type Result struct {
	States    []State
	Crossings []Crossing
}

// ValidateTiers rejects threshold tables that are not strictly ascending
// positive values. A bad table is a configuration error.
func ValidateTiers(tiers []int) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: empty threshold table", ErrInvalidTiers)
	}
	prev := 0
	for i, t := range tiers {
		if t <= prev {
			return fmt.Errorf("%w: thresholds must be strictly ascending and positive, got %v at index %d", ErrInvalidTiers, t, i)
		}
		prev = t
	}
	return nil
}

// TierFor returns the tier bucket for a margin: the highest threshold the
// absolute margin meets or exceeds, checked in descending order. Margins
// below the first threshold are tier 0.
func TierFor(tiers []int, margin int) int {
	m := margin
	if m < 0 {
		m = -m
	}
	for i := len(tiers) - 1; i >= 0; i-- {
		if m >= tiers[i] {
			return i + 1
		}
	}
	return 0
}

// leaderFor maps a margin to the leading side.
func leaderFor(margin int) Side {
	switch {
	case margin > 0:
		return SideHome
	case margin < 0:
		return SideAway
	default:
		return SideNone
	}
}

// Track folds over the plays in sequence order, forward-filling the last
// known score, and emits a state per scoring play plus every crossing.
// A flip requires both sides to have scored and is judged against the
// last side that actually led, so a change of hands through an exact tie
// still counts; a tie requires the margin to return to exactly zero from
// nonzero. Multiple crossings can share one
// play (a swing can change tier and flip the lead at once); they are
// emitted in the fixed order tier, flip, tie for determinism.
func Track(tiers []int, plays []model.Play) Result {
	sorted := make([]model.Play, len(plays))
	copy(sorted, plays)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	var res Result
	prev := State{Leader: SideNone}
	havePrev := false
	lastLeader := SideNone

	for _, p := range sorted {
		if !p.IsScoring() {
			continue
		}
		score := *p.Score
		cur := State{
			Sequence: p.Sequence,
			Score:    score,
			Margin:   score.Margin(),
			Tier:     TierFor(tiers, score.Margin()),
			Leader:   leaderFor(score.Margin()),
		}
		res.States = append(res.States, cur)

		if havePrev {
			if cur.Tier > prev.Tier {
				res.Crossings = append(res.Crossings, Crossing{Kind: TierUp, Sequence: p.Sequence, From: prev, To: cur})
			} else if cur.Tier < prev.Tier {
				res.Crossings = append(res.Crossings, Crossing{Kind: TierDown, Sequence: p.Sequence, From: prev, To: cur})
			}
			// Compare against the last non-none leader so a lead change
			// that passes through an exact tie still registers.
			bothScored := cur.Score.Home > 0 && cur.Score.Away > 0
			if bothScored && cur.Leader != SideNone && lastLeader != SideNone && cur.Leader != lastLeader {
				res.Crossings = append(res.Crossings, Crossing{Kind: Flip, Sequence: p.Sequence, From: prev, To: cur})
			}
			if cur.Margin == 0 && prev.Margin != 0 {
				res.Crossings = append(res.Crossings, Crossing{Kind: Tie, Sequence: p.Sequence, From: prev, To: cur})
			}
		}
		prev = cur
		havePrev = true
		if cur.Leader != SideNone {
			lastLeader = cur.Leader
		}
	}
	return res
}
