// Package model contains the normalized input records consumed by the
// assembly engine. Records are produced once per contest by acquisition
// collaborators and never mutated here.
package model

import "time"

// Score is a home/away points pair.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Margin returns home minus away points.
func (s Score) Margin() int { return s.Home - s.Away }

// Total returns the combined points of both sides.
func (s Score) Total() int { return s.Home + s.Away }

// Play is one normalized play-by-play record.
type Play struct {
	// Sequence is contest-unique and strictly increasing, not necessarily gapless.
	Sequence int `json:"sequence"`

	// Period is the 1-based period number; values past regulation are overtime.
	Period int `json:"period"`

	// Clock is the remaining period time as "MM:SS". Empty when the feed
	// omitted it; ordering then falls back to Sequence.
	Clock string `json:"clock,omitempty"`

	// Category is the feed's free-form play tag, e.g. "shot", "ejection".
	Category string `json:"category"`

	Description string `json:"description"`

	// Score is the score after the play. Nil for non-scoring plays; the
	// engine forward-fills from the last known score.
	Score *Score `json:"score,omitempty"`
}

// IsScoring reports whether the play carries a score-after tuple.
func (p Play) IsScoring() bool { return p.Score != nil }

// SocialPost is one normalized social record. Zero posts is a valid input.
type SocialPost struct {
	PostedAt time.Time `json:"posted_at"`
	Text     string    `json:"text,omitempty"`
	Author   string    `json:"author"`
	HasVideo bool      `json:"has_video"`
}

// MarketSnapshot is one observed market price reading. Zero snapshots is a
// valid input.
type MarketSnapshot struct {
	ObservedAt time.Time `json:"observed_at"`
	Book       string    `json:"book"`
	MarketType string    `json:"market_type"`
	Line       float64   `json:"line"`
	Price      float64   `json:"price"`
}

// ContestBundle is the fully materialized input for one assembly run.
type ContestBundle struct {
	ContestID string           `json:"contest_id"`
	StartTime time.Time        `json:"start_time"`
	HomeTeam  string           `json:"home_team"`
	AwayTeam  string           `json:"away_team"`
	Plays     []Play           `json:"plays"`
	Posts     []SocialPost     `json:"posts,omitempty"`
	Snapshots []MarketSnapshot `json:"snapshots,omitempty"`
}
