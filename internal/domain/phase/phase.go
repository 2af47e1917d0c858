// Package phase defines the narrative phases of a contest and the
// wall-clock windows they occupy.
package phase

import "fmt"

// Kind enumerates the phase families.
type Kind int

// Phase kinds in narrative order.
const (
	KindUnknown Kind = iota
	KindPregame
	KindPeriod
	KindIntermission
	KindOvertime
	KindPostgame
)

// Order offsets. Overtime sorts after every regulation period and
// intermission; unknown sorts after everything.
const (
	overtimeBase  = 1_000
	postgameOrder = 1 << 20
	unknownOrder  = 1 << 30
)

// Phase is a closed phase value with a total order. Number is the 1-based
// ordinal for periods, intermissions (the period they follow), and overtimes.
type Phase struct {
	Kind   Kind
	Number int
}

// Convenience constructors.
var (
	Pregame  = Phase{Kind: KindPregame}
	Postgame = Phase{Kind: KindPostgame}
	Unknown  = Phase{Kind: KindUnknown}
)

// Period returns the phase for regulation period n.
func Period(n int) Phase { return Phase{Kind: KindPeriod, Number: n} }

// Intermission returns the phase for the break following period n.
func Intermission(n int) Phase { return Phase{Kind: KindIntermission, Number: n} }

// Overtime returns the phase for overtime period n.
func Overtime(n int) Phase { return Phase{Kind: KindOvertime, Number: n} }

// Order returns the phase's position in the fixed total order. Any two
// distinct phases a contest can produce have distinct orders, and unknown
// phases sort after all known ones.
func (p Phase) Order() int {
	switch p.Kind {
	case KindPregame:
		return 0
	case KindPeriod:
		return p.Number * 10
	case KindIntermission:
		return p.Number*10 + 5
	case KindOvertime:
		return overtimeBase + p.Number*10
	case KindPostgame:
		return postgameOrder
	default:
		return unknownOrder
	}
}

// Before reports whether p sorts strictly before q.
func (p Phase) Before(q Phase) bool { return p.Order() < q.Order() }

// String renders the compact phase label used in payloads and logs.
func (p Phase) String() string {
	switch p.Kind {
	case KindPregame:
		return "pregame"
	case KindPeriod:
		return fmt.Sprintf("period-%d", p.Number)
	case KindIntermission:
		return fmt.Sprintf("intermission-%d", p.Number)
	case KindOvertime:
		return fmt.Sprintf("overtime-%d", p.Number)
	case KindPostgame:
		return "postgame"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON payloads.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	s := string(text)
	switch {
	case s == "pregame":
		*p = Pregame
	case s == "postgame":
		*p = Postgame
	case s == "unknown":
		*p = Unknown
	default:
		var n int
		if _, err := fmt.Sscanf(s, "period-%d", &n); err == nil {
			*p = Period(n)
			return nil
		}
		if _, err := fmt.Sscanf(s, "intermission-%d", &n); err == nil {
			*p = Intermission(n)
			return nil
		}
		if _, err := fmt.Sscanf(s, "overtime-%d", &n); err == nil {
			*p = Overtime(n)
			return nil
		}
		return fmt.Errorf("unknown phase %q", s)
	}
	return nil
}
