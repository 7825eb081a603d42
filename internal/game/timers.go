package game

import (
	"log"
	"time"
)

// schedulePhaseTimer arms the one-shot window for the phase just entered.
// Clients poll wall-clock elapsed time for display; this server-side timer
// only catches the case where nobody triggers the closing write in time.
func (e *Engine) schedulePhaseTimer(code, phase string, seconds int) {
	if seconds <= 0 {
		e.cancelPhaseTimer(code)
		return
	}
	duration := time.Duration(seconds) * time.Second
	e.timersMu.Lock()
	if existing, ok := e.timers[code]; ok {
		existing.Stop()
	}
	e.timers[code] = e.clock.AfterFunc(duration, func() {
		e.phaseTimerExpired(code, phase)
	})
	e.timersMu.Unlock()
}

func (e *Engine) cancelPhaseTimer(code string) {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()
	if timer, ok := e.timers[code]; ok {
		timer.Stop()
		delete(e.timers, code)
	}
}

func (e *Engine) phaseTimerExpired(code, expectedPhase string) {
	switch expectedPhase {
	case PhaseCreating:
		// Creation window ran out before both submissions landed; force the
		// voting phase open with a fresh window.
		now := e.clock.Now().UTC()
		patch := SessionPatch{
			Phase:          stringPtr(PhaseVoting),
			TimerStartedAt: timePtr(now),
			TimerDuration:  intPtr(e.cfg.VoteSeconds),
		}
		claimed, err := e.store.UpdateSessionIf(code, PhaseCreating, patch)
		if err != nil {
			log.Printf("creating timeout failed session_code=%s error=%v", code, err)
			return
		}
		if !claimed {
			return
		}
		e.schedulePhaseTimer(code, PhaseVoting, e.cfg.VoteSeconds)
		log.Printf("creating window expired session_code=%s", code)
		e.notify(code)
	case PhaseVoting:
		if err := e.ConsolidateVotingScores(code); err != nil {
			log.Printf("voting timeout consolidation failed session_code=%s error=%v", code, err)
		}
	}
}
