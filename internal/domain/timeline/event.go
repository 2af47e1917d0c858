// Package timeline converts normalized contest records into phase-tagged
// events and deterministically merges them into one ordered sequence.
package timeline

import (
	"encoding/json"
	"time"

	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/phase"
)

// EventType discriminates the closed set of event sources.
type EventType int

// Event source kinds. Adding a source requires updating every exhaustive
// switch in this package and in consumers.
const (
	EventPlay EventType = iota
	EventMarket
	EventSocial
)

// String renders the wire label for the event type.
func (t EventType) String() string {
	switch t {
	case EventPlay:
		return "play"
	case EventMarket:
		return "market"
	case EventSocial:
		return "social"
	default:
		return "unknown"
	}
}

// priority is the tiebreak rank when events share a phase and order:
// plays before market events before social posts.
func (t EventType) priority() int {
	switch t {
	case EventPlay:
		return 0
	case EventMarket:
		return 1
	case EventSocial:
		return 2
	default:
		return 3
	}
}

// SocialRole is the narrative role classified for a social post.
type SocialRole int

// Social roles. RoleNeutral is the default when no heuristic matches.
const (
	RoleNeutral SocialRole = iota
	RoleContext
	RoleReaction
	RoleHighlight
	RoleResult
)

// String renders the wire label for the role.
func (r SocialRole) String() string {
	switch r {
	case RoleContext:
		return "context"
	case RoleReaction:
		return "reaction"
	case RoleHighlight:
		return "highlight"
	case RoleResult:
		return "result"
	default:
		return "neutral"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r SocialRole) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// MarketEventKind enumerates the derived market events.
type MarketEventKind int

// Market event kinds.
const (
	MarketOpen MarketEventKind = iota
	MarketClose
	MarketMove
)

// String renders the wire label for the market event kind.
func (k MarketEventKind) String() string {
	switch k {
	case MarketOpen:
		return "open"
	case MarketClose:
		return "close"
	case MarketMove:
		return "move"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k MarketEventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// MarketEvent is a derived market reference or movement event.
type MarketEvent struct {
	Kind       MarketEventKind      `json:"kind"`
	Snapshot   model.MarketSnapshot `json:"snapshot"`
	LineDelta  float64              `json:"line_delta,omitempty"`
	PriceDelta float64              `json:"price_delta,omitempty"`

	// Authoritative marks the closing reference used downstream as the
	// final pre-contest market state.
	Authoritative bool `json:"authoritative,omitempty"`
}

// Event is the tagged union over the three source kinds plus computed
// ordering fields. Exactly one of Play, Post, and Market is set, matching
// Type.
type Event struct {
	Type  EventType
	Phase phase.Phase

	// Order is the intra-phase position. Its scale is source-specific
	// (game-clock seconds for plays, wall-clock offsets otherwise); only
	// its relative value within a phase matters.
	Order float64

	// Key is the stable identifier used as the final sort tiebreak. It is
	// derived from content, never from input position or wall-clock now.
	Key string

	// At is a synthetic timestamp for display and debugging only. It plays
	// no part in ordering decisions.
	At time.Time

	Play   *model.Play
	Post   *model.SocialPost
	Role   SocialRole
	Market *MarketEvent
}

// MarshalJSON renders the interchange shape: the discriminant and ordering
// fields plus the type-specific payload.
func (e Event) MarshalJSON() ([]byte, error) {
	type common struct {
		EventType       string      `json:"event_type"`
		Phase           phase.Phase `json:"phase"`
		IntraPhaseOrder float64     `json:"intra_phase_order"`
		Key             string      `json:"key"`
		At              time.Time   `json:"at"`
	}
	c := common{
		EventType:       e.Type.String(),
		Phase:           e.Phase,
		IntraPhaseOrder: e.Order,
		Key:             e.Key,
		At:              e.At,
	}
	switch e.Type {
	case EventPlay:
		return json.Marshal(struct {
			common
			Play *model.Play `json:"play"`
		}{c, e.Play})
	case EventMarket:
		return json.Marshal(struct {
			common
			Market *MarketEvent `json:"market"`
		}{c, e.Market})
	case EventSocial:
		return json.Marshal(struct {
			common
			Post *model.SocialPost `json:"post"`
			Role SocialRole        `json:"role"`
		}{c, e.Post, e.Role})
	default:
		return json.Marshal(c)
	}
}
