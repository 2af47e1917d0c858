// Package moment partitions the play sequence at confirmed boundaries into
// contiguous narrative moments, then merges and budgets them. Moments are
// immutable values; every merge produces new moments rather than mutating
// shared state.
package moment

import (
	"fmt"

	"github.com/matchreel/matchreel/internal/domain/boundary"
	"github.com/matchreel/matchreel/internal/domain/lead"
	"github.com/matchreel/matchreel/internal/domain/model"
)

// Category is the closed moment taxonomy.
type Category int

// Moment categories, least to most specific. Specificity decides which
// category survives a merge.
const (
	CategoryNeutral Category = iota
	CategoryLeadBuild
	CategoryCut
	CategoryTie
	CategoryFlip
	CategoryClosingControl
	CategoryHighImpact
)

// String renders the wire label for the category.
func (c Category) String() string {
	switch c {
	case CategoryLeadBuild:
		return "lead-build"
	case CategoryCut:
		return "cut"
	case CategoryTie:
		return "tie"
	case CategoryFlip:
		return "flip"
	case CategoryClosingControl:
		return "closing-control"
	case CategoryHighImpact:
		return "high-impact"
	default:
		return "neutral"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	switch string(text) {
	case "neutral":
		*c = CategoryNeutral
	case "lead-build":
		*c = CategoryLeadBuild
	case "cut":
		*c = CategoryCut
	case "tie":
		*c = CategoryTie
	case "flip":
		*c = CategoryFlip
	case "closing-control":
		*c = CategoryClosingControl
	case "high-impact":
		*c = CategoryHighImpact
	default:
		return fmt.Errorf("unknown moment category %q", text)
	}
	return nil
}

// alwaysSignificant is the fixed category set exempt from merge-based
// removal regardless of magnitude.
func (c Category) alwaysSignificant() bool {
	switch c {
	case CategoryTie, CategoryFlip, CategoryClosingControl, CategoryHighImpact:
		return true
	default:
		return false
	}
}

// sameCategoryMergeable is the fixed always-merge set: adjacent moments of
// these categories extend one trend and fold together.
func (c Category) sameCategoryMergeable() bool {
	return c == CategoryNeutral || c == CategoryLeadBuild
}

// categoryFor maps the boundary kind that opened a moment to its category.
func categoryFor(k boundary.Kind) Category {
	switch k {
	case boundary.KindTierUp:
		return CategoryLeadBuild
	case boundary.KindTierDown:
		return CategoryCut
	case boundary.KindFlip:
		return CategoryFlip
	case boundary.KindTie:
		return CategoryTie
	case boundary.KindClosingLock:
		return CategoryClosingControl
	case boundary.KindHighImpact:
		return CategoryHighImpact
	default: // period markers or no qualifying boundary
		return CategoryNeutral
	}
}

// RunInfo is scoring-run metadata: the best unanswered streak in a moment.
type RunInfo struct {
	Side   lead.Side `json:"side"`
	Points int       `json:"points"`

	// Unanswered is true when the opponent scored nothing across the whole
	// moment, not just during the streak.
	Unanswered bool `json:"unanswered"`
}

// ClockRange spans from the first to the last play of a moment. Clocks are
// empty when the feed omitted them.
type ClockRange struct {
	StartPeriod int    `json:"start_period"`
	StartClock  string `json:"start_clock,omitempty"`
	EndPeriod   int    `json:"end_period"`
	EndClock    string `json:"end_clock,omitempty"`
}

// Moment is one contiguous segment of the play sequence with narrative
// metadata attached.
type Moment struct {
	Category          Category    `json:"category"`
	Plays             []int       `json:"play_indices"`
	ScoreBefore       model.Score `json:"score_before"`
	ScoreAfter        model.Score `json:"score_after"`
	Clock             ClockRange  `json:"clock_range"`
	Run               *RunInfo    `json:"run_info,omitempty"`
	AlwaysSignificant bool        `json:"always_significant"`
}

// FirstSequence returns the moment's opening play index.
func (m Moment) FirstSequence() int {
	if len(m.Plays) == 0 {
		return 0
	}
	return m.Plays[0]
}

// tierDeltaSignificant reports whether a lead-build or cut moment moved
// the margin at least two tiers.
func tierDeltaSignificant(tiers []int, before, after model.Score) bool {
	d := lead.TierFor(tiers, after.Margin()) - lead.TierFor(tiers, before.Margin())
	if d < 0 {
		d = -d
	}
	return d >= 2
}

// Budget holds the tunable construction and reduction parameters.
type Budget struct {
	// RunMinPoints is the minimum unanswered streak reported as a run.
	RunMinPoints int

	// MinPlays is the low-value floor: smaller scoreless moments are
	// absorbed into a neighbor unless always significant.
	MinPlays int

	// MaxPerPeriod and MaxPerContest are the hard moment-count ceilings.
	MaxPerPeriod  int
	MaxPerContest int
}

// Validate rejects budgets that cannot bound output. A bad budget is a
// configuration error.
func (b Budget) Validate() error {
	switch {
	case b.RunMinPoints <= 0:
		return fmt.Errorf("%w: run minimum must be positive, got %d", ErrInvalidBudget, b.RunMinPoints)
	case b.MinPlays <= 0:
		return fmt.Errorf("%w: minimum plays must be positive, got %d", ErrInvalidBudget, b.MinPlays)
	case b.MaxPerPeriod <= 0:
		return fmt.Errorf("%w: per-period ceiling must be positive, got %d", ErrInvalidBudget, b.MaxPerPeriod)
	case b.MaxPerContest <= 0:
		return fmt.Errorf("%w: per-contest ceiling must be positive, got %d", ErrInvalidBudget, b.MaxPerContest)
	}
	return nil
}
