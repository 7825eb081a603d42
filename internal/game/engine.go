package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Config struct {
	CreateSeconds   int
	VoteSeconds     int
	CodeAttempts    int
	MediumPoolSize  int
	ImportBatchSize int
}

func DefaultConfig() Config {
	return Config{
		CreateSeconds:   180,
		VoteSeconds:     60,
		CodeAttempts:    10,
		MediumPoolSize:  4,
		ImportBatchSize: 50,
	}
}

// Engine drives the session state machine. It holds no session state of its
// own: every operation reads the store, re-validates its precondition and
// writes back, so redundant or racing invocations stay harmless.
type Engine struct {
	store    Store
	cfg      Config
	clock    clockwork.Clock
	watch    *watcher
	rngMu    sync.Mutex
	rng      *rand.Rand
	timersMu sync.Mutex
	timers   map[string]clockwork.Timer
}

func NewEngine(store Store, cfg Config) *Engine {
	return &Engine{
		store:  store,
		cfg:    cfg,
		clock:  clockwork.NewRealClock(),
		watch:  newWatcher(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		timers: make(map[string]clockwork.Timer),
	}
}

// Subscribe registers a change callback for a session and returns the
// unsubscribe handle. The callback fires after any write touching the
// session's rows.
func (e *Engine) Subscribe(code string, fn func()) func() {
	return e.watch.subscribe(code, fn)
}

func (e *Engine) notify(code string) {
	e.watch.notify(code)
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (e *Engine) newSessionCode() string {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	buf := make([]byte, 6)
	for i := range buf {
		buf[i] = codeAlphabet[e.rng.Intn(len(codeAlphabet))]
	}
	return string(buf)
}

func (e *Engine) defaultSession(code string) SessionRow {
	return SessionRow{
		Code:             code,
		Phase:            PhaseLobby,
		TimerDuration:    e.cfg.CreateSeconds,
		SelectedPlayers:  []string{},
		RoundWinners:     []string{},
		EasyRoundPlayers: []string{},
	}
}

// CreateSession generates a fresh code, retrying on collisions, and inserts
// the lobby row with the requesting player as captain.
func (e *Engine) CreateSession(playerID string) (string, error) {
	for attempt := 0; attempt < e.cfg.CodeAttempts; attempt++ {
		code := e.newSessionCode()
		if _, exists, err := e.store.Session(code); err != nil {
			return "", fmt.Errorf("check session code: %w", err)
		} else if exists {
			continue
		}
		row := e.defaultSession(code)
		row.AdminID = playerID
		if err := e.store.InsertSession(row); err != nil {
			if errors.Is(err, ErrDuplicateSession) {
				continue
			}
			return "", fmt.Errorf("create session: %w", err)
		}
		log.Printf("session created session_code=%s admin_id=%s", code, playerID)
		return code, nil
	}
	return "", ErrSessionCodesExhausted
}

func (e *Engine) VerifySession(code string) (bool, error) {
	_, exists, err := e.store.Session(code)
	if err != nil {
		return false, fmt.Errorf("verify session: %w", err)
	}
	return exists, nil
}

// State returns the composed session view, initializing the default lobby
// row if the session does not exist yet. Two callers racing the insert are
// fine: the primary key keeps one insert, the loser reads what won.
func (e *Engine) State(code string) (*State, error) {
	row, exists, err := e.store.Session(code)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !exists {
		row = e.defaultSession(code)
		if err := e.store.InsertSession(row); err != nil && !errors.Is(err, ErrDuplicateSession) {
			return nil, fmt.Errorf("init session: %w", err)
		}
		if fresh, ok, err := e.store.Session(code); err == nil && ok {
			row = fresh
		}
	}
	players, err := e.store.Players(code)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	submissions, err := e.store.Submissions(code)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}
	state := &State{
		SessionRow:  row,
		Players:     make(map[string]PlayerRow, len(players)),
		Submissions: make(map[string]SubmissionRow, len(submissions)),
	}
	for _, p := range players {
		state.Players[p.ID] = p
	}
	for _, s := range submissions {
		state.Submissions[s.PlayerID] = s
	}
	return state, nil
}

// RequireAdmin reports ErrNotAuthorized unless playerID is the captain.
func (e *Engine) RequireAdmin(code, playerID string) error {
	row, exists, err := e.store.Session(code)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !exists || row.AdminID == "" || row.AdminID != playerID {
		return ErrNotAuthorized
	}
	return nil
}

func (e *Engine) AddPlayer(player PlayerRow) error {
	if player.JoinedAt.IsZero() {
		player.JoinedAt = e.clock.Now().UTC()
	}
	if err := e.store.UpsertPlayer(player); err != nil {
		return fmt.Errorf("add player: %w", err)
	}
	log.Printf("player joined session_code=%s player_id=%s name=%s", player.SessionCode, player.ID, player.Name)
	e.notify(player.SessionCode)
	return nil
}

// ClaimAdmin makes playerID the captain if the seat is empty. The
// read-then-write window is accepted: a lost race just returns false on the
// next attempt.
func (e *Engine) ClaimAdmin(playerID, code string) (bool, error) {
	row, exists, err := e.store.Session(code)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if exists && row.AdminID != "" {
		return false, nil
	}
	if !exists {
		fresh := e.defaultSession(code)
		fresh.AdminID = playerID
		if err := e.store.InsertSession(fresh); err != nil {
			if errors.Is(err, ErrDuplicateSession) {
				return false, nil
			}
			return false, fmt.Errorf("claim admin: %w", err)
		}
		e.notify(code)
		return true, nil
	}
	if err := e.store.UpdateSession(code, SessionPatch{AdminID: stringPtr(playerID)}); err != nil {
		return false, fmt.Errorf("claim admin: %w", err)
	}
	e.notify(code)
	return true, nil
}

// DeletePlayer removes a non-captain player and their submissions, then
// best-effort scrubs the id from the selection and winner lists.
func (e *Engine) DeletePlayer(playerID, code string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}
	if state.AdminID == playerID {
		return ErrCannotDeleteAdmin
	}
	if err := e.store.DeleteSubmissions(code, []string{playerID}); err != nil {
		log.Printf("delete submissions failed session_code=%s player_id=%s error=%v", code, playerID, err)
	}
	if err := e.store.DeletePlayer(code, playerID); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if contains(state.SelectedPlayers, playerID) {
		patch := SessionPatch{SelectedPlayers: listPtr(without(state.SelectedPlayers, playerID))}
		if err := e.store.UpdateSession(code, patch); err != nil {
			log.Printf("scrub selected players failed session_code=%s player_id=%s error=%v", code, playerID, err)
		}
	}
	if contains(state.RoundWinners, playerID) {
		patch := SessionPatch{RoundWinners: listPtr(without(state.RoundWinners, playerID))}
		if err := e.store.UpdateSession(code, patch); err != nil {
			log.Printf("scrub round winners failed session_code=%s player_id=%s error=%v", code, playerID, err)
		}
	}
	e.notify(code)
	return nil
}

// TransferCaptain hands the captain seat to an existing player.
func (e *Engine) TransferCaptain(newAdminID, code string) error {
	state, err := e.State(code)
	if err != nil {
		return err
	}
	if _, ok := state.Players[newAdminID]; !ok {
		return ErrPlayerNotFound
	}
	if err := e.store.UpdateSession(code, SessionPatch{AdminID: stringPtr(newAdminID)}); err != nil {
		return fmt.Errorf("transfer captain: %w", err)
	}
	log.Printf("captain transferred session_code=%s admin_id=%s", code, newAdminID)
	e.notify(code)
	return nil
}
