// Package validate asserts the structural invariants of a finished moment
// list and produces the pass/fail report that gates publication. Any
// failed check blocks the run; validation never auto-corrects.
package validate

import (
	"fmt"
	"sort"

	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/moment"
)

// Status is the outcome of one check.
type Status int

// Check statuses.
const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

// String renders the wire label for the status.
func (s Status) String() string {
	switch s {
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "pass"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "warn":
		*s = StatusWarn
	case "fail":
		*s = StatusFail
	case "pass":
		*s = StatusPass
	default:
		return fmt.Errorf("unknown check status %q", text)
	}
	return nil
}

// Verdict is the overall outcome.
type Verdict int

// Verdicts.
const (
	VerdictPass Verdict = iota
	VerdictPassWithWarnings
	VerdictFail
)

// String renders the wire label for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictPassWithWarnings:
		return "PASS_WITH_WARNINGS"
	case VerdictFail:
		return "FAIL"
	default:
		return "PASS"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PASS_WITH_WARNINGS":
		*v = VerdictPassWithWarnings
	case "FAIL":
		*v = VerdictFail
	case "PASS":
		*v = VerdictPass
	default:
		return fmt.Errorf("unknown verdict %q", text)
	}
	return nil
}

// Check is one independently reportable assertion.
type Check struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Report is the validation outcome for one pipeline run.
type Report struct {
	Verdict Verdict `json:"verdict"`
	Checks  []Check `json:"checks"`
}

// Failed reports whether the run must not be published.
func (r Report) Failed() bool { return r.Verdict == VerdictFail }

// Warn appends a non-blocking warning check and downgrades a clean pass to
// pass-with-warnings.
func (r *Report) Warn(name, message string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: StatusWarn, Message: message})
	if r.Verdict == VerdictPass {
		r.Verdict = VerdictPassWithWarnings
	}
}

// Moments runs the full structural check suite against the final moment
// list: coverage, overlap, ordering, score continuity, score monotonicity,
// and budget compliance.
func Moments(plays []model.Play, moments []moment.Moment, budget moment.Budget) Report {
	var r Report
	add := func(name string, ok bool, failMsg string) {
		c := Check{Name: name, Status: StatusPass, Message: "ok"}
		if !ok {
			c.Status = StatusFail
			c.Message = failMsg
			r.Verdict = VerdictFail
		}
		r.Checks = append(r.Checks, c)
	}

	gaps, dups := coverage(plays, moments)
	add("coverage", gaps == 0, fmt.Sprintf("%d play indices missing from moments", gaps))
	add("no_overlap", dups == 0, fmt.Sprintf("%d play indices appear in more than one moment", dups))

	add("chronological_order", chronological(moments), "moments are not ordered by first play index")

	contOK, contMsg := continuity(moments)
	add("score_continuity", contOK, contMsg)

	monoOK, monoMsg := monotonic(moments)
	add("score_monotonic", monoOK, monoMsg)

	budgetOK, budgetMsg := withinBudget(plays, moments, budget)
	add("budget_compliance", budgetOK, budgetMsg)

	return r
}

// coverage counts missing and duplicated play indices across the moments.
func coverage(plays []model.Play, moments []moment.Moment) (gaps, dups int) {
	seen := make(map[int]int, len(plays))
	for _, m := range moments {
		for _, s := range m.Plays {
			seen[s]++
		}
	}
	for _, p := range plays {
		switch n := seen[p.Sequence]; {
		case n == 0:
			gaps++
		case n > 1:
			dups += n - 1
		}
	}
	return gaps, dups
}

func chronological(moments []moment.Moment) bool {
	for i := 1; i < len(moments); i++ {
		if moments[i].FirstSequence() <= moments[i-1].FirstSequence() {
			return false
		}
	}
	return true
}

func continuity(moments []moment.Moment) (bool, string) {
	for i := 1; i < len(moments); i++ {
		if moments[i].ScoreBefore != moments[i-1].ScoreAfter {
			return false, fmt.Sprintf("moment %d score-before %v does not match previous score-after %v",
				i, moments[i].ScoreBefore, moments[i-1].ScoreAfter)
		}
	}
	return true, ""
}

func monotonic(moments []moment.Moment) (bool, string) {
	var prev model.Score
	for i, m := range moments {
		for _, s := range []model.Score{m.ScoreBefore, m.ScoreAfter} {
			if s.Home < prev.Home || s.Away < prev.Away {
				return false, fmt.Sprintf("score regressed at moment %d: %v after %v", i, s, prev)
			}
			prev = s
		}
	}
	return true, ""
}

func withinBudget(plays []model.Play, moments []moment.Moment, budget moment.Budget) (bool, string) {
	if len(moments) > budget.MaxPerContest {
		return false, fmt.Sprintf("%d moments exceed contest ceiling %d", len(moments), budget.MaxPerContest)
	}
	period := make(map[int]int, len(plays))
	for _, p := range plays {
		period[p.Sequence] = p.Period
	}
	counts := make(map[int]int)
	for _, m := range moments {
		counts[period[m.FirstSequence()]]++
	}
	periods := make([]int, 0, len(counts))
	for p := range counts {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	for _, p := range periods {
		if counts[p] > budget.MaxPerPeriod {
			return false, fmt.Sprintf("period %d has %d moments, ceiling is %d", p, counts[p], budget.MaxPerPeriod)
		}
	}
	return true, ""
}
