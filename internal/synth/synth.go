// Package synth generates deterministic synthetic contest bundles for
// development and testing. The same seed and shape always produce the same
// bundle, so assembly output can be compared across runs.
package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/matchreel/matchreel/internal/domain/model"
)

// Game shape patterns.
const (
	PatternSeesaw   = "seesaw"
	PatternBlowout  = "blowout"
	PatternComeback = "comeback"
)

// Config controls the shape of the generated contest.
type Config struct {
	Seed          int64
	Pattern       string
	Plays         int
	Periods       int
	PeriodMinutes int
	Posts         int
	Snapshots     int
	ContestID     string
	HomeTeam      string
	AwayTeam      string
	StartTime     time.Time
}

// DefaultConfig returns a four-period seesaw game.
func DefaultConfig() Config {
	return Config{
		Seed:          1,
		Pattern:       PatternSeesaw,
		Plays:         400,
		Periods:       4,
		PeriodMinutes: 12,
		Posts:         40,
		Snapshots:     20,
		ContestID:     "synth-0001",
		HomeTeam:      "Home",
		AwayTeam:      "Away",
		StartTime:     time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC),
	}
}

// Generator produces contest bundles from a config.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a generator seeded from the config.
func New(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

var quietCategories = []string{
	"rebound", "turnover", "steal", "block", "foul", "timeout", "substitution", "missed-shot",
}

// Generate builds one deterministic contest bundle.
func (g *Generator) Generate() model.ContestBundle {
	plays := g.generatePlays()
	return model.ContestBundle{
		ContestID: g.cfg.ContestID,
		StartTime: g.cfg.StartTime,
		HomeTeam:  g.cfg.HomeTeam,
		AwayTeam:  g.cfg.AwayTeam,
		Plays:     plays,
		Posts:     g.generatePosts(plays),
		Snapshots: g.generateSnapshots(),
	}
}

func (g *Generator) generatePlays() []model.Play {
	plays := make([]model.Play, 0, g.cfg.Plays)
	perPeriod := g.cfg.Plays / g.cfg.Periods
	periodSeconds := g.cfg.PeriodMinutes * 60
	score := model.Score{}
	seq := 1

	for period := 1; period <= g.cfg.Periods; period++ {
		count := perPeriod
		if period == g.cfg.Periods {
			count = g.cfg.Plays - perPeriod*(g.cfg.Periods-1)
		}
		for i := 0; i < count; i++ {
			remaining := periodSeconds - (i+1)*periodSeconds/(count+1)
			clock := fmt.Sprintf("%02d:%02d", remaining/60, remaining%60)

			p := model.Play{
				Sequence: seq,
				Period:   period,
				Clock:    clock,
			}

			if g.rng.Float64() < 0.45 {
				points := g.points()
				if g.homeScores(period, seq) {
					score.Home += points
					p.Category = "shot-made"
					p.Description = fmt.Sprintf("%s scores %d", g.cfg.HomeTeam, points)
				} else {
					score.Away += points
					p.Category = "shot-made"
					p.Description = fmt.Sprintf("%s scores %d", g.cfg.AwayTeam, points)
				}
				s := score
				p.Score = &s
			} else {
				p.Category = quietCategories[g.rng.Intn(len(quietCategories))]
				p.Description = p.Category
				// Rare disruption events that cut moments on their own.
				if g.rng.Float64() < 0.005 {
					p.Category = "ejection"
					p.Description = "player ejected"
				}
			}

			plays = append(plays, p)
			seq++
		}
	}
	return plays
}

// homeScores biases the scoring side by pattern and game position.
func (g *Generator) homeScores(period, seq int) bool {
	r := g.rng.Float64()
	switch g.cfg.Pattern {
	case PatternBlowout:
		return r < 0.70
	case PatternComeback:
		// Away controls the first half, home storms back late.
		if period <= g.cfg.Periods/2 {
			return r < 0.30
		}
		return r < 0.75
	default: // seesaw
		if period%2 == 1 {
			return r < 0.62
		}
		return r < 0.38
	}
}

func (g *Generator) points() int {
	switch r := g.rng.Float64(); {
	case r < 0.15:
		return 1
	case r < 0.75:
		return 2
	default:
		return 3
	}
}

var postTemplates = []string{
	"What a sequence by %s!",
	"%s looking sharp tonight",
	"Huge stop by %s",
	"Can %s keep this up?",
	"%s on a roll!",
}

func (g *Generator) generatePosts(plays []model.Play) []model.SocialPost {
	if g.cfg.Posts == 0 {
		return nil
	}
	// Spread posts across an estimated wall window for the whole game.
	span := time.Duration(g.cfg.Periods*g.cfg.PeriodMinutes*3) * time.Minute
	posts := make([]model.SocialPost, 0, g.cfg.Posts)
	for i := 0; i < g.cfg.Posts; i++ {
		team := g.cfg.HomeTeam
		if g.rng.Float64() < 0.5 {
			team = g.cfg.AwayTeam
		}
		offset := time.Duration(g.rng.Int63n(int64(span)))
		posts = append(posts, model.SocialPost{
			PostedAt: g.cfg.StartTime.Add(offset),
			Text:     fmt.Sprintf(postTemplates[g.rng.Intn(len(postTemplates))], team),
			Author:   fmt.Sprintf("fan-%03d", g.rng.Intn(500)),
			HasVideo: g.rng.Float64() < 0.1,
		})
	}
	return posts
}

func (g *Generator) generateSnapshots() []model.MarketSnapshot {
	if g.cfg.Snapshots == 0 {
		return nil
	}
	snapshots := make([]model.MarketSnapshot, 0, g.cfg.Snapshots)
	line := -3.5
	for i := 0; i < g.cfg.Snapshots; i++ {
		line += (g.rng.Float64() - 0.5) * 1.2
		snapshots = append(snapshots, model.MarketSnapshot{
			ObservedAt: g.cfg.StartTime.Add(-90*time.Minute + time.Duration(i)*4*time.Minute),
			Book:       "synthbook",
			MarketType: "spread",
			Line:       line,
			Price:      -110 + float64(g.rng.Intn(21)-10),
		})
	}
	return snapshots
}
