package timeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/phase"
)

// A reaction is a short burst; anything longer reads as commentary.
const reactionMaxLen = 60

// SocialStats counts classification outcomes for observability. Posts that
// fall through every heuristic keep the neutral role and are reported as a
// warning, never an error.
type SocialStats struct {
	Unclassified int
}

// BuildSocialEvents converts posts into phase-tagged events. Phase comes
// from the first window containing the post time, clamped to pregame or
// postgame outside all windows; intra-phase order is seconds since phase
// start. Posts are canonically sorted first so the output is independent
// of input ordering.
func BuildSocialEvents(windows []phase.Window, posts []model.SocialPost) ([]Event, SocialStats) {
	var stats SocialStats

	sorted := make([]model.SocialPost, len(posts))
	copy(sorted, posts)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.PostedAt.Equal(b.PostedAt) {
			return a.PostedAt.Before(b.PostedAt)
		}
		if a.Author != b.Author {
			return a.Author < b.Author
		}
		return a.Text < b.Text
	})

	events := make([]Event, 0, len(sorted))
	for i := range sorted {
		p := sorted[i]
		ph, windowStart := phase.Locate(windows, p.PostedAt)
		role := classifyRole(p, ph)
		if role == RoleNeutral {
			stats.Unclassified++
		}
		events = append(events, Event{
			Type:  EventSocial,
			Phase: ph,
			Order: p.PostedAt.Sub(windowStart).Seconds(),
			Key:   fmt.Sprintf("social-%06d", i),
			At:    p.PostedAt,
			Post:  &sorted[i],
			Role:  role,
		})
	}
	return events, stats
}

// classifyRole applies the ordered heuristic rules: a time-window default
// refined by simple content matches. Later rules do not override earlier
// ones.
func classifyRole(p model.SocialPost, ph phase.Phase) SocialRole {
	text := strings.ToLower(p.Text)

	if containsAny(text, "starting lineup", "starters", "lineup", "injury", "questionable", "ruled out", "game-time decision") {
		return RoleContext
	}
	if p.HasVideo {
		return RoleHighlight
	}
	if containsAny(text, "final score", "final:", "full time", "ft:", "that's the game", "ballgame") {
		return RoleResult
	}
	if len(p.Text) > 0 && len(p.Text) <= reactionMaxLen && strings.Contains(p.Text, "!") {
		return RoleReaction
	}

	// Window default when no content rule matched.
	switch ph.Kind {
	case phase.KindPregame:
		return RoleContext
	case phase.KindPostgame:
		return RoleResult
	default:
		return RoleNeutral
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
