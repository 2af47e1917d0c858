// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matchreel/matchreel/internal/domain/boundary"
	"github.com/matchreel/matchreel/internal/domain/lead"
	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/moment"
	"github.com/matchreel/matchreel/internal/domain/phase"
	"github.com/matchreel/matchreel/internal/domain/timeline"
	"github.com/matchreel/matchreel/internal/domain/validate"
	"github.com/matchreel/matchreel/pkg/metrics"
)

// Result is the full output of one assembly run for a contest.
type Result struct {
	ID          string
	RunID       string
	GeneratedAt time.Time
	Timeline    []timeline.Event
	Moments     []moment.Moment
	Detection   boundary.Detection
	Validation  validate.Report
}

// ContestID returns the contest this result belongs to.
func (r *Result) ContestID() string { return r.ID }

// Report returns the validation report gating publication.
func (r *Result) Report() validate.Report { return r.Validation }

// Assembler runs the deterministic pipeline: timeline construction and
// merge, lead tracking, boundary detection, moment construction and
// reduction, and structural validation. It holds only policy, never state,
// so the same bundle always yields the same output.
type Assembler struct {
	profile      phase.TimingProfile
	tiers        []int
	policy       boundary.Policy
	budget       moment.Budget
	marketPolicy timeline.MarketPolicy
}

// NewAssembler creates an assembler from validated policy values.
func NewAssembler(
	profile phase.TimingProfile,
	tiers []int,
	policy boundary.Policy,
	budget moment.Budget,
	marketPolicy timeline.MarketPolicy,
) *Assembler {
	return &Assembler{
		profile:      profile,
		tiers:        tiers,
		policy:       policy,
		budget:       budget,
		marketPolicy: marketPolicy,
	}
}

// Assemble runs the full pipeline on one contest bundle.
func (a *Assembler) Assemble(ctx context.Context, bundle model.ContestBundle) (*Result, error) {
	if bundle.ContestID == "" {
		return nil, fmt.Errorf("%w: contest id is empty", ErrInvalidBundle)
	}

	plays := make([]model.Play, len(bundle.Plays))
	copy(plays, bundle.Plays)
	sort.SliceStable(plays, func(i, j int) bool { return plays[i].Sequence < plays[j].Sequence })

	overtimes := countOvertimes(a.profile, plays)
	windows := phase.Windows(a.profile, bundle.StartTime, overtimes)

	playEvents, pbpStats := timeline.BuildPlayEvents(a.profile, bundle.StartTime, plays)
	socialEvents, socialStats := timeline.BuildSocialEvents(windows, bundle.Posts)
	marketEvents := timeline.BuildMarketEvents(a.marketPolicy, bundle.Snapshots)

	merged := timeline.Merge(playEvents, socialEvents, marketEvents)

	metrics.RecordTimelineEvents(timeline.EventPlay.String(), len(playEvents))
	metrics.RecordTimelineEvents(timeline.EventSocial.String(), len(socialEvents))
	metrics.RecordTimelineEvents(timeline.EventMarket.String(), len(marketEvents))

	track := lead.Track(a.tiers, plays)
	detection := boundary.Detect(a.policy, a.profile, plays, track)

	for _, b := range detection.Boundaries {
		metrics.RecordBoundaryConfirmed(b.Kind.String())
	}
	for _, s := range detection.Suppressed {
		metrics.RecordBoundarySuppressed(s.Reason.String())
	}

	moments := moment.Build(plays, detection, a.tiers, a.budget)
	final, err := moment.MergeAndEnforce(plays, moments, a.tiers, a.budget)
	if err != nil {
		return nil, fmt.Errorf("moment reduction: %w", err)
	}

	report := validate.Moments(plays, final, a.budget)
	annotateAnomalies(&report, pbpStats, socialStats)

	missing, sparse := phaseCoverage(a.profile, plays)
	if len(missing) > 0 {
		report.Warn("phase_missing", fmt.Sprintf("no plays in expected periods %v", missing))
	}
	if len(sparse) > 0 {
		report.Warn("phase_sparse", fmt.Sprintf("degenerate play span in periods %v", sparse))
	}

	metrics.RecordInputAnomalies("play_clock_missing", pbpStats.MissingClock)
	metrics.RecordInputAnomalies("play_clock_unparseable", pbpStats.UnparseableClock)
	metrics.RecordInputAnomalies("social_unclassified", socialStats.Unclassified)
	metrics.RecordInputAnomalies("phase_missing", len(missing))
	metrics.RecordInputAnomalies("phase_sparse", len(sparse))
	metrics.RecordMomentsPublished(len(final))

	return &Result{
		ID:          bundle.ContestID,
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Timeline:    merged,
		Moments:     final,
		Detection:   detection,
		Validation:  report,
	}, nil
}

// countOvertimes derives the number of overtime periods present in the
// play feed.
func countOvertimes(profile phase.TimingProfile, plays []model.Play) int {
	max := 0
	for _, p := range plays {
		if ot := p.Period - profile.Periods; ot > max {
			max = ot
		}
	}
	return max
}

// phaseCoverage reports regulation periods the play feed does not span:
// missing periods contribute no plays at all, sparse ones collapse to a
// single play. Both are tolerated; a period the profile expects but the
// feed never reached usually means a truncated feed.
func phaseCoverage(profile phase.TimingProfile, plays []model.Play) (missing, sparse []int) {
	if len(plays) == 0 {
		return nil, nil
	}
	counts := make(map[int]int, profile.Periods)
	for _, p := range plays {
		counts[p.Period]++
	}
	for n := 1; n <= profile.Periods; n++ {
		switch counts[n] {
		case 0:
			missing = append(missing, n)
		case 1:
			sparse = append(sparse, n)
		}
	}
	return missing, sparse
}

// annotateAnomalies downgrades a clean pass when the input carried tolerated
// defects. Anomalies never fail a run on their own.
func annotateAnomalies(r *validate.Report, pbp timeline.PbpStats, social timeline.SocialStats) {
	if pbp.MissingClock > 0 {
		r.Warn("play_clock_missing", fmt.Sprintf("%d plays had no clock value", pbp.MissingClock))
	}
	if pbp.UnparseableClock > 0 {
		r.Warn("play_clock_unparseable", fmt.Sprintf("%d plays had malformed clock values", pbp.UnparseableClock))
	}
	if social.Unclassified > 0 {
		r.Warn("social_unclassified", fmt.Sprintf("%d posts fell back to the phase default role", social.Unclassified))
	}
}
