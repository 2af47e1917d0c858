package boundary

import (
	"sort"

	"github.com/matchreel/matchreel/internal/domain/lead"
	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/phase"
)

// candidateState is the explicit gating state machine. Every candidate
// ends confirmed, cancelled, or suppressed; nothing is dropped untracked.
type candidateState int

const (
	statePending candidateState = iota
	stateConfirmed
	stateCancelled
	stateSuppressed
)

type candidate struct {
	kind     Kind
	sequence int
	state    candidateState
	reason   SuppressionReason
}

// Detect converts raw crossings into the confirmed boundary list. Period
// transitions and high-impact plays always cut; crossings pass through
// hysteresis, the closing lock, and the density gate in that order. Pure
// and deterministic for a given input.
func Detect(policy Policy, profile phase.TimingProfile, plays []model.Play, track lead.Result) Detection {
	sorted := make([]model.Play, len(plays))
	copy(sorted, plays)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	var det Detection
	if len(sorted) == 0 {
		return det
	}

	// Position of each sequence among all plays; hysteresis and density
	// windows count plays, and sequence values may be gapped.
	posOf := make(map[int]int, len(sorted))
	for i, p := range sorted {
		posOf[p.Sequence] = i
	}

	lockSeq, locked := closingLockAt(policy, profile, sorted)

	cands := crossingCandidates(policy, track, posOf, lockSeq, locked)
	applyDensityGate(policy, cands, posOf)

	structural := structuralCuts(policy, sorted)
	if locked {
		structural = append(structural, candidate{kind: KindClosingLock, sequence: lockSeq, state: stateConfirmed})
	}

	return dedupe(append(cands, structural...))
}

// crossingCandidates runs each crossing through hysteresis and the closing
// lock. Ties skip hysteresis: a game reaching level is instantaneous fact,
// not a trend needing confirmation.
func crossingCandidates(policy Policy, track lead.Result, posOf map[int]int, lockSeq int, locked bool) []candidate {
	stateIdx := make(map[int]int, len(track.States))
	for i, s := range track.States {
		stateIdx[s.Sequence] = i
	}

	cands := make([]candidate, 0, len(track.Crossings))
	for _, c := range track.Crossings {
		cand := candidate{kind: crossingKind(c.Kind), sequence: c.Sequence, state: statePending}

		if c.Kind != lead.Tie && reversedWithin(c, track.States, stateIdx[c.Sequence], posOf, policy.HysteresisPlays) {
			cand.state = stateCancelled
			cand.reason = ReasonReversal
		} else if locked && cand.kind == KindTierDown && c.Sequence > lockSeq {
			cand.state = stateSuppressed
			cand.reason = ReasonClosingLock
		} else {
			cand.state = stateConfirmed
		}
		cands = append(cands, cand)
	}
	return cands
}

func crossingKind(k lead.CrossingKind) Kind {
	switch k {
	case lead.TierUp:
		return KindTierUp
	case lead.TierDown:
		return KindTierDown
	case lead.Flip:
		return KindFlip
	default:
		return KindTie
	}
}

// reversedWithin reports whether the crossing undoes itself within the
// hysteresis window of subsequent plays.
func reversedWithin(c lead.Crossing, states []lead.State, idx int, posOf map[int]int, window int) bool {
	if window <= 0 {
		return false
	}
	limit := posOf[c.Sequence] + window
	for i := idx + 1; i < len(states); i++ {
		if posOf[states[i].Sequence] > limit {
			break
		}
		s := states[i]
		switch c.Kind {
		case lead.Flip:
			if s.Leader == c.From.Leader {
				return true
			}
		case lead.TierUp:
			if s.Tier < c.To.Tier {
				return true
			}
		case lead.TierDown:
			if s.Tier >= c.From.Tier {
				return true
			}
		case lead.Tie:
			// Ties are not hysteresis-gated.
		}
	}
	return false
}

// applyDensityGate suppresses confirmed flip/tie candidates past the cap
// inside the sliding play window. Candidates arrive in sequence order
// because crossings are emitted by a forward fold.
func applyDensityGate(policy Policy, cands []candidate, posOf map[int]int) {
	var confirmedPos []int
	for i := range cands {
		c := &cands[i]
		if c.state != stateConfirmed || (c.kind != KindFlip && c.kind != KindTie) {
			continue
		}
		pos := posOf[c.sequence]
		inWindow := 0
		for _, p := range confirmedPos {
			if pos-p < policy.DensityWindowPlays {
				inWindow++
			}
		}
		if inWindow >= policy.DensityMaxNoisy {
			c.state = stateSuppressed
			c.reason = ReasonDensityGate
			continue
		}
		confirmedPos = append(confirmedPos, pos)
	}
}

// structuralCuts emits the never-suppressed boundaries: period starts and
// ends at every period transition, and a cut at every high-impact play.
func structuralCuts(policy Policy, sorted []model.Play) []candidate {
	highImpact := policy.highImpactSet()
	var cands []candidate
	for i, p := range sorted {
		if i == 0 {
			cands = append(cands, candidate{kind: KindPeriodStart, sequence: p.Sequence, state: stateConfirmed})
		} else if p.Period != sorted[i-1].Period {
			// Interior transitions carry both markers at the same cut; the
			// dedupe pass keeps the start and audits the end as displaced.
			cands = append(cands,
				candidate{kind: KindPeriodStart, sequence: p.Sequence, state: stateConfirmed},
				candidate{kind: KindPeriodEnd, sequence: p.Sequence, state: stateConfirmed},
			)
		}
		if _, ok := highImpact[p.Category]; ok {
			cands = append(cands, candidate{kind: KindHighImpact, sequence: p.Sequence, state: stateConfirmed})
		}
	}
	return cands
}

// closingLockAt finds the first play in the final regulation period or
// overtime where the clock is at or under the limit and the forward-filled
// margin is at or past the safe threshold.
func closingLockAt(policy Policy, profile phase.TimingProfile, sorted []model.Play) (int, bool) {
	var last model.Score
	for _, p := range sorted {
		if p.IsScoring() {
			last = *p.Score
		}
		if p.Period < profile.Periods {
			continue
		}
		remaining, ok := model.ParseClock(p.Clock)
		if !ok || remaining > policy.ClosingClockLimit.Seconds() {
			continue
		}
		margin := last.Margin()
		if margin < 0 {
			margin = -margin
		}
		if margin >= policy.ClosingSafeMargin {
			return p.Sequence, true
		}
	}
	return 0, false
}

// dedupe folds the surviving candidates into one boundary per cut position
// (highest kind priority wins) and collects every non-confirmed or
// displaced candidate into the audit trail.
func dedupe(cands []candidate) Detection {
	best := make(map[int]candidate)
	var audit []Suppression

	for _, c := range cands {
		if c.state != stateConfirmed {
			audit = append(audit, Suppression{Sequence: c.sequence, Kind: c.kind, Reason: c.reason})
			continue
		}
		cur, ok := best[c.sequence]
		switch {
		case !ok:
			best[c.sequence] = c
		case c.kind.priority() > cur.kind.priority():
			best[c.sequence] = c
			audit = append(audit, Suppression{Sequence: cur.sequence, Kind: cur.kind, Reason: ReasonDuplicate})
		default:
			audit = append(audit, Suppression{Sequence: c.sequence, Kind: c.kind, Reason: ReasonDuplicate})
		}
	}

	det := Detection{}
	for _, c := range best {
		det.Boundaries = append(det.Boundaries, Boundary{Sequence: c.sequence, Kind: c.kind})
	}
	sort.Slice(det.Boundaries, func(i, j int) bool { return det.Boundaries[i].Sequence < det.Boundaries[j].Sequence })
	sort.Slice(audit, func(i, j int) bool {
		if audit[i].Sequence != audit[j].Sequence {
			return audit[i].Sequence < audit[j].Sequence
		}
		return audit[i].Kind < audit[j].Kind
	})
	det.Suppressed = audit
	return det
}
