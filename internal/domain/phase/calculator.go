package phase

import (
	"fmt"
	"time"
)

// TimingProfile describes a league's contest timing. PeriodLength and
// OvertimeLength are game-clock durations used for intra-period ordering;
// the *Wall durations are the wall-clock estimates used to lay out phase
// windows, since a 12-minute quarter takes far longer than 12 minutes of
// wall time.
type TimingProfile struct {
	Periods            int
	PeriodLength       time.Duration
	PeriodWall         time.Duration
	IntermissionLength time.Duration
	OvertimeLength     time.Duration
	OvertimeWall       time.Duration
	PregameBuffer      time.Duration
	PostgameBuffer     time.Duration
}

// Validate rejects profiles that cannot produce a well-formed window layout.
// A bad profile is a configuration error and fails before any contest runs.
func (p TimingProfile) Validate() error {
	switch {
	case p.Periods <= 0:
		return fmt.Errorf("%w: periods must be positive, got %d", ErrInvalidProfile, p.Periods)
	case p.PeriodLength <= 0:
		return fmt.Errorf("%w: period length must be positive, got %v", ErrInvalidProfile, p.PeriodLength)
	case p.PeriodWall <= 0:
		return fmt.Errorf("%w: period wall length must be positive, got %v", ErrInvalidProfile, p.PeriodWall)
	case p.IntermissionLength <= 0:
		return fmt.Errorf("%w: intermission length must be positive, got %v", ErrInvalidProfile, p.IntermissionLength)
	case p.OvertimeLength <= 0:
		return fmt.Errorf("%w: overtime length must be positive, got %v", ErrInvalidProfile, p.OvertimeLength)
	case p.OvertimeWall <= 0:
		return fmt.Errorf("%w: overtime wall length must be positive, got %v", ErrInvalidProfile, p.OvertimeWall)
	case p.PregameBuffer <= 0 || p.PostgameBuffer <= 0:
		return fmt.Errorf("%w: pregame and postgame buffers must be positive", ErrInvalidProfile)
	}
	return nil
}

// ForPeriod maps a play's period number to its phase. Periods past
// regulation are overtime.
func (p TimingProfile) ForPeriod(period int) Phase {
	if period <= 0 {
		return Unknown
	}
	if period <= p.Periods {
		return Period(period)
	}
	return Overtime(period - p.Periods)
}

// Window is the wall-clock interval [Start, End) owned by one phase.
type Window struct {
	Phase Phase
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Windows lays out the contiguous wall-clock windows for a contest that
// started at start and played the observed number of overtime periods.
// The layout is pregame buffer, each period with an intermission between
// regulation periods, overtime windows (break absorbed into the window),
// and a postgame buffer. Pure; callers must Validate the profile first.
func Windows(p TimingProfile, start time.Time, overtimes int) []Window {
	out := make([]Window, 0, 2*p.Periods+overtimes+2)
	out = append(out, Window{Phase: Pregame, Start: start.Add(-p.PregameBuffer), End: start})

	cursor := start
	for n := 1; n <= p.Periods; n++ {
		end := cursor.Add(p.PeriodWall)
		out = append(out, Window{Phase: Period(n), Start: cursor, End: end})
		cursor = end
		if n < p.Periods {
			end = cursor.Add(p.IntermissionLength)
			out = append(out, Window{Phase: Intermission(n), Start: cursor, End: end})
			cursor = end
		}
	}
	for n := 1; n <= overtimes; n++ {
		end := cursor.Add(p.OvertimeWall)
		out = append(out, Window{Phase: Overtime(n), Start: cursor, End: end})
		cursor = end
	}
	out = append(out, Window{Phase: Postgame, Start: cursor, End: cursor.Add(p.PostgameBuffer)})
	return out
}

// Locate returns the phase owning t. Times before all windows clamp to
// pregame and times after all windows clamp to postgame, so every post
// lands in exactly one phase.
func Locate(windows []Window, t time.Time) (Phase, time.Time) {
	if len(windows) == 0 {
		return Unknown, t
	}
	for _, w := range windows {
		if w.Contains(t) {
			return w.Phase, w.Start
		}
	}
	if t.Before(windows[0].Start) {
		return windows[0].Phase, windows[0].Start
	}
	last := windows[len(windows)-1]
	return last.Phase, last.Start
}
