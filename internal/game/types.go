package game

import (
	"sort"
	"time"
)

const (
	PhaseLobby            = "lobby"
	PhaseSelectingPlayers = "selecting_players"
	PhaseCreating         = "creating"
	PhaseVoting           = "voting"
	PhaseResults          = "results"
	PhaseGameOver         = "game_over"
)

const (
	TierEasy   = "easy"
	TierMedium = "medium"
	TierHard   = "hard"
)

// Icons is the glyph pool players pick from when joining.
var Icons = []string{
	"🍌", "🎨", "🎭", "🎪", "🎯", "🎲", "🎸", "🎹",
	"🎺", "🎻", "🎮", "🎰", "🚀", "🌟", "⭐", "✨",
	"🔥", "💎", "👑", "🏆", "🎖️", "🏅", "🎃", "🦄",
}

// SessionRow is the single game_state row for a session. Empty strings and
// zero times stand in for NULL columns.
type SessionRow struct {
	Code             string
	AdminID          string
	Phase            string
	CurrentRound     string
	RoundNumber      int
	SelectedPlayers  []string
	TimerStartedAt   time.Time
	TimerDuration    int
	RoundWinners     []string
	EasyRoundPlayers []string
	CategoryDescr    string
}

type PlayerRow struct {
	ID          string
	SessionCode string
	Name        string
	Icon        string
	Score       int
	JoinedAt    time.Time
}

type SubmissionRow struct {
	ID          string
	SessionCode string
	PlayerID    string
	ImageURL    string
	UploadedAt  time.Time
	Votes       []string
}

type CategoryRow struct {
	ID         uint
	RoundTier  string
	ImageDescr string
	UploadedAt time.Time
}

// State is the composed per-session view clients re-derive on every change
// notification: the session row plus its player and submission rows.
type State struct {
	SessionRow
	Players     map[string]PlayerRow
	Submissions map[string]SubmissionRow
}

func (s *State) TimerRunning() bool {
	return !s.TimerStartedAt.IsZero()
}

// PlayerIDs returns the roster ids in join order.
func (s *State) PlayerIDs() []string {
	ids := make([]string, 0, len(s.Players))
	for id := range s.Players {
		ids = append(ids, id)
	}
	sortPlayersByJoin(ids, s.Players)
	return ids
}

func sortPlayersByJoin(ids []string, players map[string]PlayerRow) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := players[ids[i]], players[ids[j]]
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func without(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != value {
			out = append(out, item)
		}
	}
	return out
}
