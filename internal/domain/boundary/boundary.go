// Package boundary converts raw lead crossings, period transitions, and
// high-impact plays into a confirmed, deduplicated list of segmentation
// boundaries. Hysteresis and density gating suppress noise; every
// suppression is recorded for auditability rather than dropped silently.
package boundary

import (
	"fmt"
	"time"
)

// Kind enumerates the boundary kinds.
type Kind int

// Boundary kinds.
const (
	KindPeriodStart Kind = iota
	KindPeriodEnd
	KindTierUp
	KindTierDown
	KindFlip
	KindTie
	KindHighImpact
	KindClosingLock
)

// String renders the wire label for the kind.
func (k Kind) String() string {
	switch k {
	case KindPeriodStart:
		return "period-start"
	case KindPeriodEnd:
		return "period-end"
	case KindTierUp:
		return "tier-up"
	case KindTierDown:
		return "tier-down"
	case KindFlip:
		return "flip"
	case KindTie:
		return "tie"
	case KindHighImpact:
		return "high-impact"
	default:
		return "closing-lock"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// priority decides which kind wins when several boundaries land on the
// same cut position.
func (k Kind) priority() int {
	switch k {
	case KindHighImpact:
		return 8
	case KindClosingLock:
		return 7
	case KindFlip:
		return 6
	case KindTie:
		return 5
	case KindTierUp:
		return 4
	case KindTierDown:
		return 3
	case KindPeriodStart:
		return 2
	default: // KindPeriodEnd
		return 1
	}
}

// Boundary marks the play sequence position at which a new moment begins.
type Boundary struct {
	Sequence int  `json:"sequence"`
	Kind     Kind `json:"kind"`
}

// SuppressionReason explains why a candidate boundary did not confirm.
type SuppressionReason int

// Suppression reasons.
const (
	ReasonReversal SuppressionReason = iota
	ReasonDensityGate
	ReasonClosingLock
	ReasonDuplicate
)

// String renders the wire label for the reason.
func (r SuppressionReason) String() string {
	switch r {
	case ReasonReversal:
		return "reversal"
	case ReasonDensityGate:
		return "density-gate"
	case ReasonClosingLock:
		return "closing-lock"
	default:
		return "duplicate"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r SuppressionReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Suppression is the audit record for a candidate that did not become a
// boundary.
type Suppression struct {
	Sequence int               `json:"sequence"`
	Kind     Kind              `json:"kind"`
	Reason   SuppressionReason `json:"reason"`
}

// Detection is the detector output: the confirmed boundary list in
// sequence order plus the full suppression audit trail.
type Detection struct {
	Boundaries []Boundary    `json:"boundaries"`
	Suppressed []Suppression `json:"suppressed,omitempty"`
}

// Policy holds the tunable noise-control parameters. All values are
// league policy, injected from configuration.
type Policy struct {
	// HysteresisPlays is how many subsequent plays a flip or tier crossing
	// must persist before confirming. A reversal inside the window cancels
	// the candidate.
	HysteresisPlays int

	// DensityWindowPlays and DensityMaxNoisy cap how many flip/tie
	// boundaries may confirm inside a sliding window of plays.
	DensityWindowPlays int
	DensityMaxNoisy    int

	// ClosingClockLimit and ClosingSafeMargin define the closing lock: once
	// the final period clock is at or under the limit and the margin is at
	// or past the safe threshold, a closing-lock boundary fires and later
	// tier-down candidates are suppressed as false drama.
	ClosingClockLimit time.Duration
	ClosingSafeMargin int

	// HighImpact is the set of play categories that always cut a boundary.
	HighImpact []string
}

// Validate rejects policies that cannot gate meaningfully. A bad policy is
// a configuration error and fails before any contest runs.
func (p Policy) Validate() error {
	switch {
	case p.HysteresisPlays < 0:
		return fmt.Errorf("%w: hysteresis plays must not be negative, got %d", ErrInvalidPolicy, p.HysteresisPlays)
	case p.DensityWindowPlays <= 0:
		return fmt.Errorf("%w: density window must be positive, got %d", ErrInvalidPolicy, p.DensityWindowPlays)
	case p.DensityMaxNoisy <= 0:
		return fmt.Errorf("%w: density cap must be positive, got %d", ErrInvalidPolicy, p.DensityMaxNoisy)
	case p.ClosingClockLimit <= 0:
		return fmt.Errorf("%w: closing clock limit must be positive, got %v", ErrInvalidPolicy, p.ClosingClockLimit)
	case p.ClosingSafeMargin <= 0:
		return fmt.Errorf("%w: closing safe margin must be positive, got %d", ErrInvalidPolicy, p.ClosingSafeMargin)
	}
	return nil
}

func (p Policy) highImpactSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.HighImpact))
	for _, c := range p.HighImpact {
		set[c] = struct{}{}
	}
	return set
}
