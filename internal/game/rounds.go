package game

import (
	"fmt"
	"log"
	"sort"
)

// StartRound picks the prompt and the competing pair for a tier and moves
// the session to selecting_players. For the medium tier the eligible pool is
// first narrowed to the top scorers.
func (e *Engine) StartRound(tier, code string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}

	if tier == TierMedium {
		pool := e.mediumPool(state)
		if len(pool) < 2 {
			return ErrInsufficientPlayers
		}
		if err := e.store.UpdateSession(code, SessionPatch{RoundWinners: listPtr(pool)}); err != nil {
			return fmt.Errorf("set medium pool: %w", err)
		}
		state.RoundWinners = pool
	}

	descr, err := e.pickCategory(tier)
	if err != nil {
		return err
	}

	state.CurrentRound = tier
	selected := e.selectRandomPlayers(state)

	patch := SessionPatch{
		Phase:           stringPtr(PhaseSelectingPlayers),
		CurrentRound:    stringPtr(tier),
		RoundNumber:     intPtr(state.RoundNumber + 1),
		SelectedPlayers: listPtr(selected),
		CategoryDescr:   stringPtr(descr),
	}
	if err := e.store.UpdateSession(code, patch); err != nil {
		return fmt.Errorf("start round: %w", err)
	}

	// Defensive cleanup: the incoming pair must start the round without
	// leftover submissions.
	if len(selected) > 0 {
		if err := e.store.DeleteSubmissions(code, selected); err != nil {
			log.Printf("clear submissions failed session_code=%s error=%v", code, err)
		}
	}
	log.Printf("round started session_code=%s tier=%s selected=%v", code, tier, selected)
	e.notify(code)
	return nil
}

// mediumPool is the non-captain roster sorted by descending score, capped at
// the configured pool size.
func (e *Engine) mediumPool(state *State) []string {
	players := make([]PlayerRow, 0, len(state.Players))
	for _, p := range state.Players {
		if p.ID != state.AdminID {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	size := e.cfg.MediumPoolSize
	if len(players) < size {
		size = len(players)
	}
	pool := make([]string, 0, size)
	for _, p := range players[:size] {
		pool = append(pool, p.ID)
	}
	return pool
}

// selectRandomPlayers picks the two competitors for the current tier.
//
// Easy tier rotates through players who have not competed yet; when the
// unplayed count is odd and the captain has not played, the captain is
// folded in so the rotation comes out even. Medium and hard pick from the
// advancing pool, falling back to random non-captain players when the pool
// is too small.
func (e *Engine) selectRandomPlayers(state *State) []string {
	playerIDs := state.PlayerIDs()
	if len(playerIDs) == 0 {
		return []string{}
	}

	if state.CurrentRound == TierEasy {
		unplayed := make([]string, 0, len(playerIDs))
		for _, id := range playerIDs {
			if !contains(state.EasyRoundPlayers, id) {
				unplayed = append(unplayed, id)
			}
		}
		if len(unplayed) == 0 {
			// Full cycle done; start over with random non-captain players.
			return e.takeShuffled(nonAdmin(playerIDs, state.AdminID), 2)
		}
		if len(unplayed)%2 == 1 && state.AdminID != "" && !contains(state.EasyRoundPlayers, state.AdminID) {
			others := without(unplayed, state.AdminID)
			if len(others) > 0 {
				return []string{state.AdminID, e.takeShuffled(others, 1)[0]}
			}
		}
		return e.takeShuffled(unplayed, 2)
	}

	eligible := state.RoundWinners
	if len(eligible) < 2 {
		return e.takeShuffled(nonAdmin(playerIDs, state.AdminID), 2)
	}
	return e.takeShuffled(eligible, 2)
}

// takeShuffled returns up to n ids from a uniform Fisher-Yates shuffle of
// list. Not cryptographic; outcomes are reproducible only under a seeded
// source.
func (e *Engine) takeShuffled(list []string, n int) []string {
	shuffled := append([]string(nil), list...)
	e.rngMu.Lock()
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	e.rngMu.Unlock()
	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}

func nonAdmin(playerIDs []string, adminID string) []string {
	return without(playerIDs, adminID)
}

// pickCategory selects a uniform random prompt for the tier. Entries with no
// tier are eligible for any round; an empty pool yields an empty prompt.
func (e *Engine) pickCategory(tier string) (string, error) {
	rows, err := e.store.CategoriesForTier(tier)
	if err != nil {
		return "", fmt.Errorf("load categories: %w", err)
	}
	if len(rows) == 0 {
		log.Printf("no categories found tier=%s", tier)
		return "", nil
	}
	e.rngMu.Lock()
	row := rows[e.rng.Intn(len(rows))]
	e.rngMu.Unlock()
	return row.ImageDescr, nil
}

// StartTimer opens the creation window. Kept separate from StartRound so
// the captain can hold the selecting_players announcement before the clock
// starts.
func (e *Engine) StartTimer(code string) error {
	now := e.clock.Now().UTC()
	patch := SessionPatch{
		Phase:          stringPtr(PhaseCreating),
		TimerStartedAt: timePtr(now),
		TimerDuration:  intPtr(e.cfg.CreateSeconds),
	}
	if err := e.store.UpdateSession(code, patch); err != nil {
		return fmt.Errorf("start timer: %w", err)
	}
	e.schedulePhaseTimer(code, PhaseCreating, e.cfg.CreateSeconds)
	e.notify(code)
	return nil
}

// NextRound advances the tier ladder: easy, medium, hard, then game over.
// The captain seat survives a natural game over; EndGame clears it.
func (e *Engine) NextRound(code string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}
	switch state.CurrentRound {
	case TierEasy:
		return e.StartRound(TierMedium, code)
	case TierMedium:
		return e.StartRound(TierHard, code)
	case TierHard:
		if err := e.store.UpdateSession(code, SessionPatch{Phase: stringPtr(PhaseGameOver)}); err != nil {
			return fmt.Errorf("end game: %w", err)
		}
		e.cancelPhaseTimer(code)
		log.Printf("game over session_code=%s", code)
		e.notify(code)
		return nil
	default:
		return e.StartRound(TierEasy, code)
	}
}
