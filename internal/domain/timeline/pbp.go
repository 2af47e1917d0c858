package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/phase"
)

// PbpStats counts input anomalies tolerated during the build. They never
// fail the build; callers surface them for data-quality monitoring.
type PbpStats struct {
	MissingClock     int
	UnparseableClock int
}

// BuildPlayEvents converts plays into phase-tagged events. Phase comes
// straight from the play's period; intra-phase order counts down from the
// period's game clock. A play without a usable clock falls back to its
// sequence index as order.
func BuildPlayEvents(profile phase.TimingProfile, start time.Time, plays []model.Play) ([]Event, PbpStats) {
	var stats PbpStats
	events := make([]Event, 0, len(plays))

	sorted := make([]model.Play, len(plays))
	copy(sorted, plays)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	for i := range sorted {
		p := sorted[i]
		ph := profile.ForPeriod(p.Period)

		periodLen := profile.PeriodLength
		if ph.Kind == phase.KindOvertime {
			periodLen = profile.OvertimeLength
		}

		var order float64
		switch remaining, ok := model.ParseClock(p.Clock); {
		case ok:
			order = periodLen.Seconds() - remaining
		default:
			if p.Clock == "" {
				stats.MissingClock++
			} else {
				stats.UnparseableClock++
			}
			order = float64(p.Sequence)
		}

		events = append(events, Event{
			Type:  EventPlay,
			Phase: ph,
			Order: order,
			Key:   fmt.Sprintf("play-%010d", p.Sequence),
			At:    start.Add(time.Duration(order * float64(time.Second))),
			Play:  &sorted[i],
		})
	}
	return events, stats
}
