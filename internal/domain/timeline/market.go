package timeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/phase"
)

// MarketPolicy holds the per-market-type movement floors. Deltas below the
// floor are noise and emit nothing.
type MarketPolicy struct {
	// LineMove maps a market type to the minimum absolute line delta that
	// counts as significant movement. Types absent from the map never emit
	// movement events on line alone.
	LineMove map[string]float64

	// PriceMove maps a market type to the minimum absolute price delta that
	// counts as significant movement. Types absent from the map never emit
	// movement events on price alone.
	PriceMove map[string]float64
}

// BuildMarketEvents derives the small fixed set of pre-contest market
// events: at most one opening reference (earliest snapshot), one closing
// reference (latest snapshot, flagged authoritative), and movement events
// whose line or price delta meets the policy floor. Snapshots are
// canonically sorted first so the output is independent of input ordering.
func BuildMarketEvents(policy MarketPolicy, snapshots []model.MarketSnapshot) []Event {
	if len(snapshots) == 0 {
		return nil
	}

	sorted := make([]model.MarketSnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.ObservedAt.Equal(b.ObservedAt) {
			return a.ObservedAt.Before(b.ObservedAt)
		}
		if a.Book != b.Book {
			return a.Book < b.Book
		}
		if a.MarketType != b.MarketType {
			return a.MarketType < b.MarketType
		}
		return a.Line < b.Line
	})

	origin := sorted[0].ObservedAt
	events := []Event{marketEvent(sorted[0], MarketEvent{Kind: MarketOpen, Snapshot: sorted[0]}, origin, "market-open")}

	// Movement is tracked per market type against the last emitted reading,
	// so a slow drift only fires once it accumulates past the floor.
	last := map[string]model.MarketSnapshot{sorted[0].MarketType: sorted[0]}
	moves := 0
	for i := 1; i < len(sorted)-1; i++ {
		s := sorted[i]
		prev, seen := last[s.MarketType]
		if !seen {
			last[s.MarketType] = s
			continue
		}
		lineDelta := s.Line - prev.Line
		priceDelta := s.Price - prev.Price
		lineFloor, hasLineFloor := policy.LineMove[s.MarketType]
		priceFloor, hasPriceFloor := policy.PriceMove[s.MarketType]
		significant := (hasLineFloor && lineFloor > 0 && math.Abs(lineDelta) >= lineFloor) ||
			(hasPriceFloor && priceFloor > 0 && math.Abs(priceDelta) >= priceFloor)
		if !significant {
			continue
		}
		last[s.MarketType] = s
		events = append(events, marketEvent(sorted[i], MarketEvent{
			Kind:       MarketMove,
			Snapshot:   s,
			LineDelta:  lineDelta,
			PriceDelta: priceDelta,
		}, origin, fmt.Sprintf("market-move-%06d", moves)))
		moves++
	}

	if len(sorted) > 1 {
		closing := sorted[len(sorted)-1]
		events = append(events, marketEvent(closing, MarketEvent{
			Kind:          MarketClose,
			Snapshot:      closing,
			Authoritative: true,
		}, origin, "market-close"))
	}
	return events
}

func marketEvent(s model.MarketSnapshot, me MarketEvent, origin time.Time, key string) Event {
	return Event{
		Type:   EventMarket,
		Phase:  phase.Pregame,
		Order:  s.ObservedAt.Sub(origin).Seconds(),
		Key:    key,
		At:     s.ObservedAt,
		Market: &me,
	}
}
