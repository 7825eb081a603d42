package game

import "sync"

// MemStore is an in-memory Store used by tests and database-less runs.
type MemStore struct {
	mu          sync.Mutex
	sessions    map[string]*SessionRow
	players     map[string]map[string]PlayerRow
	submissions map[string]map[string]SubmissionRow
	categories  []CategoryRow
	nextCatID   uint
}

func NewMemStore() *MemStore {
	return &MemStore{
		sessions:    make(map[string]*SessionRow),
		players:     make(map[string]map[string]PlayerRow),
		submissions: make(map[string]map[string]SubmissionRow),
		nextCatID:   1,
	}
}

func (m *MemStore) Session(code string) (SessionRow, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.sessions[code]
	if !ok {
		return SessionRow{}, false, nil
	}
	return copySession(*row), true, nil
}

func (m *MemStore) InsertSession(row SessionRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[row.Code]; ok {
		return ErrDuplicateSession
	}
	stored := copySession(row)
	m.sessions[row.Code] = &stored
	return nil
}

func (m *MemStore) UpdateSession(code string, patch SessionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.sessions[code]; ok {
		patch.Apply(row)
	}
	return nil
}

func (m *MemStore) UpdateSessionIf(code, expectPhase string, patch SessionPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.sessions[code]
	if !ok || row.Phase != expectPhase {
		return false, nil
	}
	patch.Apply(row)
	return true, nil
}

func (m *MemStore) Players(code string) ([]PlayerRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]PlayerRow, 0, len(m.players[code]))
	for _, row := range m.players[code] {
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *MemStore) UpsertPlayer(row PlayerRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	group := m.players[row.SessionCode]
	if group == nil {
		group = make(map[string]PlayerRow)
		m.players[row.SessionCode] = group
	}
	group[row.ID] = row
	return nil
}

func (m *MemStore) UpdatePlayerScore(code, playerID string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.players[code][playerID]; ok {
		row.Score = score
		m.players[code][playerID] = row
	}
	return nil
}

func (m *MemStore) DeletePlayer(code, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.players[code], playerID)
	return nil
}

func (m *MemStore) DeletePlayers(code, keepID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.players[code] {
		if id != keepID {
			delete(m.players[code], id)
		}
	}
	return nil
}

func (m *MemStore) Submissions(code string) ([]SubmissionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]SubmissionRow, 0, len(m.submissions[code]))
	for _, row := range m.submissions[code] {
		rows = append(rows, copySubmission(row))
	}
	return rows, nil
}

func (m *MemStore) SubmissionByID(code, id string) (SubmissionRow, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.submissions[code][id]
	if !ok {
		return SubmissionRow{}, false, nil
	}
	return copySubmission(row), true, nil
}

func (m *MemStore) UpsertSubmission(row SubmissionRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	group := m.submissions[row.SessionCode]
	if group == nil {
		group = make(map[string]SubmissionRow)
		m.submissions[row.SessionCode] = group
	}
	group[row.ID] = copySubmission(row)
	return nil
}

func (m *MemStore) UpdateSubmissionVotes(code, id string, votes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.submissions[code][id]; ok {
		row.Votes = append([]string(nil), votes...)
		m.submissions[code][id] = row
	}
	return nil
}

func (m *MemStore) DeleteSubmissions(code string, playerIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if playerIDs == nil {
		delete(m.submissions, code)
		return nil
	}
	for id, row := range m.submissions[code] {
		if contains(playerIDs, row.PlayerID) {
			delete(m.submissions[code], id)
		}
	}
	return nil
}

func (m *MemStore) InsertCategories(rows []CategoryRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		row.ID = m.nextCatID
		m.nextCatID++
		m.categories = append(m.categories, row)
	}
	return nil
}

func (m *MemStore) CategoriesForTier(tier string) ([]CategoryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]CategoryRow, 0, len(m.categories))
	for _, row := range m.categories {
		if tier == "" || row.RoundTier == "" || row.RoundTier == tier {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func copySession(row SessionRow) SessionRow {
	row.SelectedPlayers = append([]string(nil), row.SelectedPlayers...)
	row.RoundWinners = append([]string(nil), row.RoundWinners...)
	row.EasyRoundPlayers = append([]string(nil), row.EasyRoundPlayers...)
	return row
}

func copySubmission(row SubmissionRow) SubmissionRow {
	row.Votes = append([]string(nil), row.Votes...)
	return row
}
