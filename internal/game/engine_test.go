package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func newTestEngine(t *testing.T) (*Engine, *MemStore, *clockwork.FakeClock) {
	t.Helper()
	store := NewMemStore()
	engine := NewEngine(store, DefaultConfig())
	fake := clockwork.NewFakeClock()
	engine.clock = fake
	engine.rng = rand.New(rand.NewSource(7))
	return engine, store, fake
}

// setupSession creates a session whose first named player is the captain and
// joins the full roster in order.
func setupSession(t *testing.T, engine *Engine, names ...string) (string, []string) {
	t.Helper()
	ids := make([]string, len(names))
	for i := range names {
		ids[i] = fmt.Sprintf("p%d", i+1)
	}
	code, err := engine.CreateSession(ids[0])
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	base := engine.clock.Now().UTC()
	for i, name := range names {
		player := PlayerRow{
			ID:          ids[i],
			SessionCode: code,
			Name:        name,
			Icon:        Icons[i%len(Icons)],
			JoinedAt:    base.Add(time.Duration(i) * time.Second),
		}
		if err := engine.AddPlayer(player); err != nil {
			t.Fatalf("add player %s: %v", name, err)
		}
	}
	return code, ids
}

// playRound drives the currently selected pair through submissions and votes
// until the round consolidates. Every non-competitor votes for the first
// selected player, so that player wins.
func playRound(t *testing.T, engine *Engine, code string) (selected []string, winnerID string) {
	t.Helper()
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Phase != PhaseSelectingPlayers {
		t.Fatalf("expected phase %s, got %s", PhaseSelectingPlayers, state.Phase)
	}
	selected = append([]string(nil), state.SelectedPlayers...)
	if len(selected) != 2 {
		t.Fatalf("expected 2 selected players, got %v", selected)
	}
	if err := engine.StartTimer(code); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	for _, id := range selected {
		if err := engine.RecordSubmission(id, "https://blobs/"+id+".png", code); err != nil {
			t.Fatalf("record submission %s: %v", id, err)
		}
	}
	state, err = engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Phase != PhaseVoting {
		t.Fatalf("expected phase %s after both submissions, got %s", PhaseVoting, state.Phase)
	}
	for _, id := range state.PlayerIDs() {
		if contains(selected, id) {
			continue
		}
		if err := engine.SubmitVote(id, selected[0], code); err != nil {
			t.Fatalf("vote %s: %v", id, err)
		}
	}
	state, err = engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Phase != PhaseResults {
		t.Fatalf("expected phase %s after all votes, got %s", PhaseResults, state.Phase)
	}
	return selected, selected[0]
}

func waitForPhase(t *testing.T, engine *Engine, code, phase string) *State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state, err := engine.State(code)
		if err != nil {
			t.Fatalf("load state: %v", err)
		}
		if state.Phase == phase {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s never reached phase %s", code, phase)
	return nil
}

func TestCreateSessionAssignsCaptain(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	code, err := engine.CreateSession("p1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-char code, got %q", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("code %q contains %q outside the alphabet", code, r)
		}
	}
	row, exists, err := store.Session(code)
	if err != nil || !exists {
		t.Fatalf("session not stored: exists=%v err=%v", exists, err)
	}
	if row.AdminID != "p1" || row.Phase != PhaseLobby {
		t.Fatalf("unexpected session row: %+v", row)
	}
	if row.TimerDuration != 180 {
		t.Fatalf("expected default timer duration 180, got %d", row.TimerDuration)
	}
}

type collidingStore struct {
	*MemStore
}

func (c collidingStore) Session(code string) (SessionRow, bool, error) {
	return SessionRow{Code: code}, true, nil
}

func TestCreateSessionExhaustsCodes(t *testing.T) {
	engine := NewEngine(collidingStore{NewMemStore()}, DefaultConfig())
	if _, err := engine.CreateSession("p1"); !errors.Is(err, ErrSessionCodesExhausted) {
		t.Fatalf("expected ErrSessionCodesExhausted, got %v", err)
	}
}

func TestClaimAdminFirstWins(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	claimed, err := engine.ClaimAdmin("p1", "AAAAAA")
	if err != nil || !claimed {
		t.Fatalf("first claim should succeed: claimed=%v err=%v", claimed, err)
	}
	claimed, err = engine.ClaimAdmin("p2", "AAAAAA")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if claimed {
		t.Fatal("second claim should lose to the seated captain")
	}
}

func TestRequireAdmin(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben")
	if err := engine.RequireAdmin(code, ids[0]); err != nil {
		t.Fatalf("captain should pass: %v", err)
	}
	if err := engine.RequireAdmin(code, ids[1]); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestDeletePlayerGuardsCaptain(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben", "Cleo")

	if err := engine.DeletePlayer(ids[0], code); !errors.Is(err, ErrCannotDeleteAdmin) {
		t.Fatalf("expected ErrCannotDeleteAdmin, got %v", err)
	}

	if err := store.UpdateSession(code, SessionPatch{SelectedPlayers: listPtr([]string{ids[1], ids[2]})}); err != nil {
		t.Fatalf("seed selected players: %v", err)
	}
	if err := engine.DeletePlayer(ids[1], code); err != nil {
		t.Fatalf("delete player: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if _, ok := state.Players[ids[1]]; ok {
		t.Fatal("player should be removed from the roster")
	}
	if contains(state.SelectedPlayers, ids[1]) {
		t.Fatal("player should be scrubbed from selected players")
	}
}

func TestTransferCaptain(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben")

	if err := engine.TransferCaptain("ghost", code); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
	if err := engine.TransferCaptain(ids[1], code); err != nil {
		t.Fatalf("transfer captain: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.AdminID != ids[1] {
		t.Fatalf("expected captain %s, got %s", ids[1], state.AdminID)
	}
}

func TestStartRoundEasy(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	code, _ := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov")

	if err := store.InsertCategories([]CategoryRow{{RoundTier: TierEasy, ImageDescr: "a banana in space"}}); err != nil {
		t.Fatalf("insert categories: %v", err)
	}
	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Phase != PhaseSelectingPlayers || state.CurrentRound != TierEasy {
		t.Fatalf("unexpected state after start: phase=%s tier=%s", state.Phase, state.CurrentRound)
	}
	if state.RoundNumber != 1 {
		t.Fatalf("expected round number 1, got %d", state.RoundNumber)
	}
	if len(state.SelectedPlayers) != 2 {
		t.Fatalf("expected 2 selected players, got %v", state.SelectedPlayers)
	}
	if state.CategoryDescr != "a banana in space" {
		t.Fatalf("expected the seeded prompt, got %q", state.CategoryDescr)
	}
}

func TestEasyRotationCoversRoster(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov")

	seen := map[string]int{}
	for round := 0; round < 2; round++ {
		if err := engine.StartRound(TierEasy, code); err != nil {
			t.Fatalf("start round %d: %v", round+1, err)
		}
		selected, _ := playRound(t, engine, code)
		for _, id := range selected {
			seen[id]++
		}
	}
	if len(seen) != len(ids) {
		t.Fatalf("expected every player to compete once per cycle, got %v", seen)
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("player %s competed %d times in one cycle", id, count)
		}
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.EasyRoundPlayers) != len(ids) {
		t.Fatalf("expected all players in the easy-played set, got %v", state.EasyRoundPlayers)
	}
}

func TestEasyOddRosterFoldsInCaptain(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben", "Cleo")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if !contains(state.SelectedPlayers, ids[0]) {
		t.Fatalf("expected captain %s in the pair on an odd unplayed count, got %v", ids[0], state.SelectedPlayers)
	}
}

func TestMediumPoolTopScorers(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov", "Eri", "Fay")

	scores := map[string]int{ids[1]: 5, ids[2]: 4, ids[3]: 3, ids[4]: 2, ids[5]: 1}
	for id, score := range scores {
		if err := store.UpdatePlayerScore(code, id, score); err != nil {
			t.Fatalf("set score %s: %v", id, err)
		}
	}
	if err := engine.StartRound(TierMedium, code); err != nil {
		t.Fatalf("start medium round: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.RoundWinners) != 4 {
		t.Fatalf("expected pool of 4, got %v", state.RoundWinners)
	}
	for _, id := range []string{ids[1], ids[2], ids[3], ids[4]} {
		if !contains(state.RoundWinners, id) {
			t.Fatalf("expected %s in the medium pool %v", id, state.RoundWinners)
		}
	}
	if contains(state.RoundWinners, ids[0]) || contains(state.RoundWinners, ids[5]) {
		t.Fatalf("captain and lowest scorer must not be in the pool: %v", state.RoundWinners)
	}
	for _, id := range state.SelectedPlayers {
		if !contains(state.RoundWinners, id) {
			t.Fatalf("selected %s outside the pool %v", id, state.RoundWinners)
		}
	}
}

func TestMediumInsufficientPlayers(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, _ := setupSession(t, engine, "Ada", "Ben")
	if err := engine.StartRound(TierMedium, code); !errors.Is(err, ErrInsufficientPlayers) {
		t.Fatalf("expected ErrInsufficientPlayers, got %v", err)
	}
}

func TestVotingTransitionIdempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, _ := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	selected := state.SelectedPlayers
	if err := engine.StartTimer(code); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	for _, id := range selected {
		if err := engine.RecordSubmission(id, "https://blobs/"+id+".png", code); err != nil {
			t.Fatalf("record submission: %v", err)
		}
	}
	before, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if before.Phase != PhaseVoting {
		t.Fatalf("expected voting, got %s", before.Phase)
	}
	if err := engine.CheckSubmissionsAndTransition(code); err != nil {
		t.Fatalf("re-check transition: %v", err)
	}
	after, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if !after.TimerStartedAt.Equal(before.TimerStartedAt) {
		t.Fatal("re-invoking the transition must not restart the voting window")
	}
}

func TestDuplicateVoteIgnored(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	selected := state.SelectedPlayers
	if err := engine.StartTimer(code); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	for _, id := range selected {
		if err := engine.RecordSubmission(id, "https://blobs/"+id+".png", code); err != nil {
			t.Fatalf("record submission: %v", err)
		}
	}
	var voter string
	for _, id := range ids {
		if !contains(selected, id) {
			voter = id
			break
		}
	}
	for i := 0; i < 3; i++ {
		if err := engine.SubmitVote(voter, selected[0], code); err != nil {
			t.Fatalf("vote attempt %d: %v", i+1, err)
		}
	}
	submission, ok, err := store.SubmissionByID(code, selected[0])
	if err != nil || !ok {
		t.Fatalf("submission missing: ok=%v err=%v", ok, err)
	}
	if len(submission.Votes) != 1 {
		t.Fatalf("expected a single vote, got %v", submission.Votes)
	}
}

func TestConsolidationAwardsWinnerOnce(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, _ := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	selected, winnerID := playRound(t, engine, code)

	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Players[winnerID].Score != 1 {
		t.Fatalf("expected winner score 1, got %d", state.Players[winnerID].Score)
	}
	if !contains(state.RoundWinners, winnerID) {
		t.Fatalf("expected %s in round winners %v", winnerID, state.RoundWinners)
	}
	for _, id := range selected {
		if !contains(state.EasyRoundPlayers, id) {
			t.Fatalf("expected both competitors in the easy-played set, missing %s", id)
		}
	}

	// Re-running consolidation after the phase guard fired must not double
	// the award.
	if err := engine.ConsolidateVotingScores(code); err != nil {
		t.Fatalf("re-consolidate: %v", err)
	}
	state, err = engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Players[winnerID].Score != 1 {
		t.Fatalf("score doubled on repeat consolidation: %d", state.Players[winnerID].Score)
	}
}

func TestTwoPlayerGameWaitsForTimer(t *testing.T) {
	engine, _, fake := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	if err := engine.StartTimer(code); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	for _, id := range ids {
		if err := engine.RecordSubmission(id, "https://blobs/"+id+".png", code); err != nil {
			t.Fatalf("record submission: %v", err)
		}
	}
	// Both players are competitors, so the eligible voter set is empty and a
	// competitor's vote must not complete the round.
	if err := engine.SubmitVote(ids[0], ids[1], code); err != nil {
		t.Fatalf("vote: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Phase != PhaseVoting {
		t.Fatalf("expected voting to wait for the timer, got %s", state.Phase)
	}

	fake.Advance(time.Duration(engine.cfg.VoteSeconds) * time.Second)
	state = waitForPhase(t, engine, code, PhaseResults)
	if state.Players[ids[1]].Score != 1 {
		t.Fatalf("expected the voted submission to win on timeout, score=%d", state.Players[ids[1]].Score)
	}
}

func TestCreatingWindowExpiryForcesVoting(t *testing.T) {
	engine, _, fake := newTestEngine(t)
	code, _ := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	if err := engine.StartTimer(code); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	fake.Advance(time.Duration(engine.cfg.CreateSeconds) * time.Second)
	state := waitForPhase(t, engine, code, PhaseVoting)
	if state.TimerDuration != engine.cfg.VoteSeconds {
		t.Fatalf("expected a fresh voting window of %ds, got %d", engine.cfg.VoteSeconds, state.TimerDuration)
	}
	if !state.TimerRunning() {
		t.Fatal("expected the voting timer to be running")
	}
}

func TestVotingWindowExpiryConsolidates(t *testing.T) {
	engine, _, fake := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	selected := state.SelectedPlayers
	if err := engine.StartTimer(code); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	for _, id := range selected {
		if err := engine.RecordSubmission(id, "https://blobs/"+id+".png", code); err != nil {
			t.Fatalf("record submission: %v", err)
		}
	}
	var voter string
	for _, id := range ids {
		if !contains(selected, id) {
			voter = id
			break
		}
	}
	if err := engine.SubmitVote(voter, selected[1], code); err != nil {
		t.Fatalf("vote: %v", err)
	}

	fake.Advance(time.Duration(engine.cfg.VoteSeconds) * time.Second)
	state = waitForPhase(t, engine, code, PhaseResults)
	if state.Players[selected[1]].Score != 1 {
		t.Fatalf("expected %s to win on timeout, score=%d", selected[1], state.Players[selected[1]].Score)
	}
}

func TestEndVotingEarly(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	selected := state.SelectedPlayers
	if err := engine.StartTimer(code); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	for _, id := range selected {
		if err := engine.RecordSubmission(id, "https://blobs/"+id+".png", code); err != nil {
			t.Fatalf("record submission: %v", err)
		}
	}
	if err := engine.EndVotingEarly(code); !errors.Is(err, ErrNoVotes) {
		t.Fatalf("expected ErrNoVotes before any vote, got %v", err)
	}
	var voter string
	for _, id := range ids {
		if !contains(selected, id) {
			voter = id
			break
		}
	}
	if err := engine.SubmitVote(voter, selected[0], code); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := engine.EndVotingEarly(code); err != nil {
		t.Fatalf("end voting early: %v", err)
	}
	state, err = engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Phase != PhaseResults {
		t.Fatalf("expected results, got %s", state.Phase)
	}
}

func TestRoundWinnerTieBreak(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	state := &State{
		SessionRow: SessionRow{Phase: PhaseVoting},
		Submissions: map[string]SubmissionRow{
			"p1": {ID: "p1", PlayerID: "p1", UploadedAt: base.Add(time.Second), Votes: []string{"v1"}},
			"p2": {ID: "p2", PlayerID: "p2", UploadedAt: base, Votes: []string{"v2"}},
		},
	}
	if got := roundWinner(state); got != "p2" {
		t.Fatalf("expected the earlier upload to win the tie, got %s", got)
	}

	state.Submissions["p1"] = SubmissionRow{ID: "p1", PlayerID: "p1", UploadedAt: base, Votes: []string{"v1"}}
	if got := roundWinner(state); got != "p1" {
		t.Fatalf("expected the smaller id to win an exact tie, got %s", got)
	}

	state.Submissions["p1"] = SubmissionRow{ID: "p1", PlayerID: "p1", UploadedAt: base, Votes: []string{}}
	state.Submissions["p2"] = SubmissionRow{ID: "p2", PlayerID: "p2", UploadedAt: base, Votes: []string{}}
	if got := roundWinner(state); got != "" {
		t.Fatalf("expected no winner without votes, got %s", got)
	}
}

func TestAllPlayersVotedEmptyEligible(t *testing.T) {
	state := &State{
		SessionRow: SessionRow{Phase: PhaseVoting, SelectedPlayers: []string{"p1", "p2"}},
		Players: map[string]PlayerRow{
			"p1": {ID: "p1"},
			"p2": {ID: "p2"},
		},
		Submissions: map[string]SubmissionRow{},
	}
	if allPlayersVoted(state) {
		t.Fatal("an empty eligible voter set must never satisfy completion")
	}
}

func TestNextRoundLadder(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov", "Eri")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start easy: %v", err)
	}
	playRound(t, engine, code)

	if err := engine.NextRound(code); err != nil {
		t.Fatalf("advance to medium: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.CurrentRound != TierMedium {
		t.Fatalf("expected medium, got %s", state.CurrentRound)
	}
	playRound(t, engine, code)

	if err := engine.NextRound(code); err != nil {
		t.Fatalf("advance to hard: %v", err)
	}
	state, err = engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.CurrentRound != TierHard {
		t.Fatalf("expected hard, got %s", state.CurrentRound)
	}
	playRound(t, engine, code)

	if err := engine.NextRound(code); err != nil {
		t.Fatalf("advance past hard: %v", err)
	}
	state, err = engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Phase != PhaseGameOver {
		t.Fatalf("expected game over, got %s", state.Phase)
	}
	if state.AdminID != ids[0] {
		t.Fatal("a natural game over must keep the captain seated")
	}
}

func TestResetGameKeepsCaptain(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben", "Cleo", "Dov")

	if err := engine.StartRound(TierEasy, code); err != nil {
		t.Fatalf("start round: %v", err)
	}
	playRound(t, engine, code)

	if err := engine.ResetGame(code); err != nil {
		t.Fatalf("reset game: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Phase != PhaseLobby || state.RoundNumber != 0 {
		t.Fatalf("unexpected state after reset: phase=%s round=%d", state.Phase, state.RoundNumber)
	}
	if state.AdminID != ids[0] {
		t.Fatalf("expected captain %s to survive the reset, got %s", ids[0], state.AdminID)
	}
	if len(state.Players) != 1 {
		t.Fatalf("expected only the captain on the roster, got %d players", len(state.Players))
	}
	if len(state.Submissions) != 0 {
		t.Fatalf("expected submissions cleared, got %d", len(state.Submissions))
	}
}

func TestEndGameClearsCaptain(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, _ := setupSession(t, engine, "Ada", "Ben")

	if err := engine.EndGame(code); err != nil {
		t.Fatalf("end game: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Phase != PhaseGameOver || state.AdminID != "" {
		t.Fatalf("expected game over with no captain, got phase=%s admin=%q", state.Phase, state.AdminID)
	}
}

func TestCompleteReset(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code, ids := setupSession(t, engine, "Ada", "Ben")

	if err := engine.CompleteReset(code, ids[1]); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for a non-captain, got %v", err)
	}
	if err := engine.CompleteReset(code, ids[0]); err != nil {
		t.Fatalf("complete reset: %v", err)
	}
	state, err := engine.State(code)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.AdminID != "" || len(state.Players) != 0 {
		t.Fatalf("expected an empty session, got admin=%q players=%d", state.AdminID, len(state.Players))
	}
}
