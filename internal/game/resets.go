package game

import (
	"fmt"
	"log"
	"time"
)

func (e *Engine) resetPatch() SessionPatch {
	return SessionPatch{
		Phase:            stringPtr(PhaseLobby),
		CurrentRound:     stringPtr(""),
		RoundNumber:      intPtr(0),
		SelectedPlayers:  listPtr([]string{}),
		TimerStartedAt:   timePtr(time.Time{}),
		TimerDuration:    intPtr(e.cfg.CreateSeconds),
		RoundWinners:     listPtr([]string{}),
		EasyRoundPlayers: listPtr([]string{}),
		CategoryDescr:    stringPtr(""),
	}
}

// ResetGame restarts the session with the same captain: round state cleared,
// every non-captain player and all submissions removed.
func (e *Engine) ResetGame(code string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}
	patch := e.resetPatch()
	if state.AdminID != "" {
		patch.AdminID = stringPtr(state.AdminID)
	}
	if err := e.store.UpdateSession(code, patch); err != nil {
		return fmt.Errorf("reset game: %w", err)
	}
	if err := e.store.DeletePlayers(code, state.AdminID); err != nil {
		return fmt.Errorf("reset players: %w", err)
	}
	if err := e.store.DeleteSubmissions(code, nil); err != nil {
		return fmt.Errorf("reset submissions: %w", err)
	}
	e.cancelPhaseTimer(code)
	log.Printf("game reset session_code=%s", code)
	e.notify(code)
	return nil
}

// EndGame closes the session and logs the captain out of the seat.
func (e *Engine) EndGame(code string) error {
	patch := SessionPatch{
		Phase:   stringPtr(PhaseGameOver),
		AdminID: stringPtr(""),
	}
	if err := e.store.UpdateSession(code, patch); err != nil {
		return fmt.Errorf("end game: %w", err)
	}
	e.cancelPhaseTimer(code)
	log.Printf("game ended session_code=%s", code)
	e.notify(code)
	return nil
}

// CompleteReset wipes everything including the captain. Captain-only and
// irrecoverable.
func (e *Engine) CompleteReset(code, captainID string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}
	if state.AdminID == "" || state.AdminID != captainID {
		return ErrNotAuthorized
	}
	patch := e.resetPatch()
	patch.AdminID = stringPtr("")
	if err := e.store.UpdateSession(code, patch); err != nil {
		return fmt.Errorf("complete reset: %w", err)
	}
	if err := e.store.DeletePlayers(code, ""); err != nil {
		return fmt.Errorf("complete reset players: %w", err)
	}
	if err := e.store.DeleteSubmissions(code, nil); err != nil {
		log.Printf("complete reset submissions failed session_code=%s error=%v", code, err)
	}
	e.cancelPhaseTimer(code)
	log.Printf("complete reset session_code=%s", code)
	e.notify(code)
	return nil
}
