package game

import (
	"fmt"
	"log"
	"time"
)

// RecordSubmission upserts a player's image for the current round and runs
// the creating-to-voting check. The submission id is the player id: one
// submission per player per round, and rounds clear submissions on start.
func (e *Engine) RecordSubmission(playerID, imageURL, code string) error {
	row := SubmissionRow{
		ID:          playerID,
		SessionCode: code,
		PlayerID:    playerID,
		ImageURL:    imageURL,
		UploadedAt:  e.clock.Now().UTC(),
		Votes:       []string{},
	}
	if err := e.store.UpsertSubmission(row); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	log.Printf("submission recorded session_code=%s player_id=%s", code, playerID)
	e.notify(code)
	return e.CheckSubmissionsAndTransition(code)
}

// CheckSubmissionsAndTransition moves the session to voting once both
// selected players have submitted. Safe to re-invoke: the phase guard makes
// a second call a no-op.
func (e *Engine) CheckSubmissionsAndTransition(code string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}
	if state.Phase != PhaseCreating || len(state.SelectedPlayers) != 2 {
		return nil
	}
	for _, id := range state.SelectedPlayers {
		if _, ok := state.Submissions[id]; !ok {
			return nil
		}
	}
	now := e.clock.Now().UTC()
	patch := SessionPatch{
		Phase:          stringPtr(PhaseVoting),
		TimerStartedAt: timePtr(now),
		TimerDuration:  intPtr(e.cfg.VoteSeconds),
	}
	claimed, err := e.store.UpdateSessionIf(code, PhaseCreating, patch)
	if err != nil {
		return fmt.Errorf("transition to voting: %w", err)
	}
	if !claimed {
		return nil
	}
	e.schedulePhaseTimer(code, PhaseVoting, e.cfg.VoteSeconds)
	log.Printf("voting started session_code=%s", code)
	e.notify(code)
	return nil
}

// allPlayersVoted reports whether every eligible voter has cast a vote.
// Eligible voters are everyone but the two competitors; an empty voter set
// is never satisfied, so a two-player game waits for the timer instead of
// ending voting instantly.
func allPlayersVoted(state *State) bool {
	if state == nil || state.Phase != PhaseVoting {
		return false
	}
	eligible := make([]string, 0, len(state.Players))
	for id := range state.Players {
		if !contains(state.SelectedPlayers, id) {
			eligible = append(eligible, id)
		}
	}
	if len(eligible) == 0 {
		return false
	}
	voted := make(map[string]struct{})
	for _, submission := range state.Submissions {
		for _, voterID := range submission.Votes {
			voted[voterID] = struct{}{}
		}
	}
	for _, id := range eligible {
		if _, ok := voted[id]; !ok {
			return false
		}
	}
	return true
}

// SubmitVote appends the voter to a submission's vote list. Duplicate votes
// are silently ignored. Completion is evaluated against the updated
// in-memory view rather than a re-read, so the just-written vote is never
// lost to store lag.
func (e *Engine) SubmitVote(voterID, submissionID, code string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}
	if state.Phase != PhaseVoting {
		return nil
	}
	submission, ok, err := e.store.SubmissionByID(code, submissionID)
	if err != nil {
		return fmt.Errorf("load submission: %w", err)
	}
	if !ok || contains(submission.Votes, voterID) {
		return nil
	}
	votes := append(submission.Votes, voterID)
	if err := e.store.UpdateSubmissionVotes(code, submissionID, votes); err != nil {
		return fmt.Errorf("record vote: %w", err)
	}
	log.Printf("vote recorded session_code=%s voter_id=%s submission_id=%s", code, voterID, submissionID)

	submission.Votes = votes
	state.Submissions[submission.PlayerID] = submission
	if allPlayersVoted(state) {
		if err := e.store.UpdateSession(code, SessionPatch{TimerStartedAt: timePtr(time.Time{})}); err != nil {
			log.Printf("stop voting timer failed session_code=%s error=%v", code, err)
		}
		e.cancelPhaseTimer(code)
		e.notify(code)
		return e.ConsolidateVotingScores(code)
	}
	e.notify(code)
	return nil
}

// roundWinner returns the submission owner with strictly the most votes.
// Ties break to the earliest upload, then the smaller player id; no votes at
// all yields no winner.
func roundWinner(state *State) string {
	maxVotes := 0
	winnerID := ""
	var winnerAt time.Time
	for playerID, submission := range state.Submissions {
		count := len(submission.Votes)
		if count == 0 {
			continue
		}
		better := count > maxVotes
		if count == maxVotes {
			if submission.UploadedAt.Before(winnerAt) {
				better = true
			} else if submission.UploadedAt.Equal(winnerAt) && playerID < winnerID {
				better = true
			}
		}
		if better {
			maxVotes = count
			winnerID = playerID
			winnerAt = submission.UploadedAt
		}
	}
	return winnerID
}

// ConsolidateVotingScores closes out voting: it claims the voting-to-results
// transition, then awards the winner's point at most once. A concurrent
// caller losing the phase guard no-ops.
func (e *Engine) ConsolidateVotingScores(code string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}
	if state.Phase != PhaseVoting {
		return nil
	}
	winnerID := roundWinner(state)
	if winnerID == "" {
		patch := SessionPatch{
			Phase:          stringPtr(PhaseResults),
			TimerStartedAt: timePtr(time.Time{}),
		}
		if _, err := e.store.UpdateSessionIf(code, PhaseVoting, patch); err != nil {
			return fmt.Errorf("close voting: %w", err)
		}
		e.cancelPhaseTimer(code)
		log.Printf("voting closed without votes session_code=%s", code)
		e.notify(code)
		return nil
	}
	return e.advanceWinner(winnerID, state)
}

// EndVotingEarly is the captain's override: it consolidates before the
// voting timer expires, erroring instead of closing quietly when nobody has
// voted yet.
func (e *Engine) EndVotingEarly(code string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}
	if state.Phase != PhaseVoting {
		return nil
	}
	if roundWinner(state) == "" {
		return ErrNoVotes
	}
	return e.ConsolidateVotingScores(code)
}

// advanceWinner claims the results transition, appending the winner to the
// advancing list. After an easy round both competitors join the easy-played
// set, win or lose, so the rotation moves regardless of outcome.
func (e *Engine) advanceWinner(winnerID string, state *State) error {
	code := state.Code
	winners := append(append([]string(nil), state.RoundWinners...), winnerID)
	easyPlayed := append([]string(nil), state.EasyRoundPlayers...)
	if state.CurrentRound == TierEasy {
		for _, id := range state.SelectedPlayers {
			if !contains(easyPlayed, id) {
				easyPlayed = append(easyPlayed, id)
			}
		}
	}
	patch := SessionPatch{
		Phase:            stringPtr(PhaseResults),
		TimerStartedAt:   timePtr(time.Time{}),
		RoundWinners:     listPtr(winners),
		EasyRoundPlayers: listPtr(easyPlayed),
	}
	claimed, err := e.store.UpdateSessionIf(code, PhaseVoting, patch)
	if err != nil {
		return fmt.Errorf("advance winner: %w", err)
	}
	if !claimed {
		return nil
	}
	e.cancelPhaseTimer(code)
	if winner, ok := state.Players[winnerID]; ok {
		if err := e.store.UpdatePlayerScore(code, winnerID, winner.Score+1); err != nil {
			log.Printf("award score failed session_code=%s player_id=%s error=%v", code, winnerID, err)
		}
	}
	log.Printf("round won session_code=%s winner_id=%s", code, winnerID)
	e.notify(code)
	return nil
}
