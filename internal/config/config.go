// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with league-profile defaults.
// - All tunable policy numbers (tier tables, hysteresis, gating windows,
//   budgets) live here and are injected into domain components; no
//   package keeps ambient policy state.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
	"time"

	"github.com/matchreel/matchreel/internal/domain/boundary"
	"github.com/matchreel/matchreel/internal/domain/moment"
	"github.com/matchreel/matchreel/internal/domain/phase"
	"github.com/matchreel/matchreel/internal/domain/timeline"
)

// Config contains process and engine configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory assembly job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of assembly workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the run store.
	ShardCount int `koanf:"shard_count"`

	// League timing profile. Period/overtime minutes are game clock; the
	// wall variants estimate elapsed wall time for phase windows.
	Periods               int `koanf:"periods"`
	PeriodMinutes         int `koanf:"period_minutes"`
	PeriodWallMinutes     int `koanf:"period_wall_minutes"`
	IntermissionMinutes   int `koanf:"intermission_minutes"`
	OvertimeMinutes       int `koanf:"overtime_minutes"`
	OvertimeWallMinutes   int `koanf:"overtime_wall_minutes"`
	PregameBufferMinutes  int `koanf:"pregame_buffer_minutes"`
	PostgameBufferMinutes int `koanf:"postgame_buffer_minutes"`

	// TierThresholds is the ascending absolute-margin tier table.
	TierThresholds []int `koanf:"tier_thresholds"`

	// Boundary noise-control policy.
	HysteresisPlays      int      `koanf:"hysteresis_plays"`
	DensityWindowPlays   int      `koanf:"density_window_plays"`
	DensityMaxNoisy      int      `koanf:"density_max_noisy"`
	ClosingClockSeconds  int      `koanf:"closing_clock_seconds"`
	ClosingSafeMargin    int      `koanf:"closing_safe_margin"`
	HighImpactCategories []string `koanf:"high_impact_categories"`

	// Moment construction and reduction budget.
	RunMinPoints         int `koanf:"run_min_points"`
	MinMomentPlays       int `koanf:"min_moment_plays"`
	MaxMomentsPerPeriod  int `koanf:"max_moments_per_period"`
	MaxMomentsPerContest int `koanf:"max_moments_per_contest"`

	// Market movement floors, both keyed by market type.
	LineMoveThresholds  map[string]float64 `koanf:"line_move_thresholds"`
	PriceMoveThresholds map[string]float64 `koanf:"price_move_thresholds"`
}

// New creates a Config with the default league profile (four 12-minute
// periods, NBA-style tier table).
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9090",
		QueueSize:   1_000,
		WorkerCount: runtime.NumCPU() * 2,
		DedupeSize:  100_000,
		ShardCount:  8,

		Periods:               4,
		PeriodMinutes:         12,
		PeriodWallMinutes:     32,
		IntermissionMinutes:   3,
		OvertimeMinutes:       5,
		OvertimeWallMinutes:   15,
		PregameBufferMinutes:  90,
		PostgameBufferMinutes: 120,

		TierThresholds: []int{3, 6, 10, 16},

		HysteresisPlays:      3,
		DensityWindowPlays:   10,
		DensityMaxNoisy:      2,
		ClosingClockSeconds:  120,
		ClosingSafeMargin:    10,
		HighImpactCategories: []string{"ejection", "injury", "review-overturned"},

		RunMinPoints:         8,
		MinMomentPlays:       3,
		MaxMomentsPerPeriod:  6,
		MaxMomentsPerContest: 25,

		LineMoveThresholds: map[string]float64{
			"spread": 1.0,
			"total":  1.5,
		},
		PriceMoveThresholds: map[string]float64{
			"moneyline": 20,
			"spread":    20,
			"total":     20,
		},
	}
}

// TimingProfile derives the phase timing profile.
func (c *Config) TimingProfile() phase.TimingProfile {
	return phase.TimingProfile{
		Periods:            c.Periods,
		PeriodLength:       time.Duration(c.PeriodMinutes) * time.Minute,
		PeriodWall:         time.Duration(c.PeriodWallMinutes) * time.Minute,
		IntermissionLength: time.Duration(c.IntermissionMinutes) * time.Minute,
		OvertimeLength:     time.Duration(c.OvertimeMinutes) * time.Minute,
		OvertimeWall:       time.Duration(c.OvertimeWallMinutes) * time.Minute,
		PregameBuffer:      time.Duration(c.PregameBufferMinutes) * time.Minute,
		PostgameBuffer:     time.Duration(c.PostgameBufferMinutes) * time.Minute,
	}
}

// BoundaryPolicy derives the boundary noise-control policy.
func (c *Config) BoundaryPolicy() boundary.Policy {
	return boundary.Policy{
		HysteresisPlays:    c.HysteresisPlays,
		DensityWindowPlays: c.DensityWindowPlays,
		DensityMaxNoisy:    c.DensityMaxNoisy,
		ClosingClockLimit:  time.Duration(c.ClosingClockSeconds) * time.Second,
		ClosingSafeMargin:  c.ClosingSafeMargin,
		HighImpact:         c.HighImpactCategories,
	}
}

// Budget derives the moment construction and reduction budget.
func (c *Config) Budget() moment.Budget {
	return moment.Budget{
		RunMinPoints:  c.RunMinPoints,
		MinPlays:      c.MinMomentPlays,
		MaxPerPeriod:  c.MaxMomentsPerPeriod,
		MaxPerContest: c.MaxMomentsPerContest,
	}
}

// MarketPolicy derives the market movement policy.
func (c *Config) MarketPolicy() timeline.MarketPolicy {
	return timeline.MarketPolicy{
		LineMove:  c.LineMoveThresholds,
		PriceMove: c.PriceMoveThresholds,
	}
}
