package game

import "time"

// SessionPatch is a field-level update to a session row. Nil fields are left
// untouched; a zero TimerStartedAt clears the timer, empty strings clear the
// nullable text columns.
type SessionPatch struct {
	AdminID          *string
	Phase            *string
	CurrentRound     *string
	RoundNumber      *int
	SelectedPlayers  *[]string
	TimerStartedAt   *time.Time
	TimerDuration    *int
	RoundWinners     *[]string
	EasyRoundPlayers *[]string
	CategoryDescr    *string
}

// Apply copies the patched fields onto a session row.
func (p SessionPatch) Apply(row *SessionRow) {
	if p.AdminID != nil {
		row.AdminID = *p.AdminID
	}
	if p.Phase != nil {
		row.Phase = *p.Phase
	}
	if p.CurrentRound != nil {
		row.CurrentRound = *p.CurrentRound
	}
	if p.RoundNumber != nil {
		row.RoundNumber = *p.RoundNumber
	}
	if p.SelectedPlayers != nil {
		row.SelectedPlayers = append([]string(nil), (*p.SelectedPlayers)...)
	}
	if p.TimerStartedAt != nil {
		row.TimerStartedAt = *p.TimerStartedAt
	}
	if p.TimerDuration != nil {
		row.TimerDuration = *p.TimerDuration
	}
	if p.RoundWinners != nil {
		row.RoundWinners = append([]string(nil), (*p.RoundWinners)...)
	}
	if p.EasyRoundPlayers != nil {
		row.EasyRoundPlayers = append([]string(nil), (*p.EasyRoundPlayers)...)
	}
	if p.CategoryDescr != nil {
		row.CategoryDescr = *p.CategoryDescr
	}
}

// Store is the persistence gateway the engine runs against. Single-row
// operations are atomic; nothing here spans rows in a transaction, so every
// caller re-validates its own preconditions.
type Store interface {
	Session(code string) (SessionRow, bool, error)
	InsertSession(row SessionRow) error
	UpdateSession(code string, patch SessionPatch) error
	// UpdateSessionIf applies the patch only while the session is still in
	// expectPhase and reports whether the guard matched. Racing callers use
	// it to claim a phase transition exactly once.
	UpdateSessionIf(code, expectPhase string, patch SessionPatch) (bool, error)

	Players(code string) ([]PlayerRow, error)
	UpsertPlayer(row PlayerRow) error
	UpdatePlayerScore(code, playerID string, score int) error
	DeletePlayer(code, playerID string) error
	// DeletePlayers removes every player in the session except keepID;
	// pass an empty keepID to remove them all.
	DeletePlayers(code, keepID string) error

	Submissions(code string) ([]SubmissionRow, error)
	SubmissionByID(code, id string) (SubmissionRow, bool, error)
	UpsertSubmission(row SubmissionRow) error
	UpdateSubmissionVotes(code, id string, votes []string) error
	// DeleteSubmissions removes the submissions owned by playerIDs, or every
	// submission in the session when playerIDs is nil.
	DeleteSubmissions(code string, playerIDs []string) error

	InsertCategories(rows []CategoryRow) error
	// CategoriesForTier returns entries matching the tier plus entries with
	// no tier at all; an empty tier returns everything.
	CategoriesForTier(tier string) ([]CategoryRow, error)
}

func stringPtr(value string) *string     { return &value }
func intPtr(value int) *int              { return &value }
func timePtr(value time.Time) *time.Time { return &value }
func listPtr(value []string) *[]string   { return &value }
