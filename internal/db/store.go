package db

import (
	"errors"

	"nano-banana/internal/game"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the Postgres-backed persistence gateway.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (s *Store) Session(code string) (game.SessionRow, bool, error) {
	var record GameState
	err := s.conn.Where("session_code = ?", code).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.SessionRow{}, false, nil
	}
	if err != nil {
		return game.SessionRow{}, false, err
	}
	return sessionRow(record), true, nil
}

func (s *Store) InsertSession(row game.SessionRow) error {
	record := sessionRecord(row)
	if err := s.conn.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrDuplicateSession
		}
		return err
	}
	return nil
}

func (s *Store) UpdateSession(code string, patch game.SessionPatch) error {
	return s.conn.Model(&GameState{}).
		Where("session_code = ?", code).
		Updates(patchColumns(patch)).Error
}

func (s *Store) UpdateSessionIf(code, expectPhase string, patch game.SessionPatch) (bool, error) {
	tx := s.conn.Model(&GameState{}).
		Where("session_code = ? AND phase = ?", code, expectPhase).
		Updates(patchColumns(patch))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (s *Store) Players(code string) ([]game.PlayerRow, error) {
	var records []Player
	if err := s.conn.Where("session_code = ?", code).Find(&records).Error; err != nil {
		return nil, err
	}
	rows := make([]game.PlayerRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, game.PlayerRow{
			ID:          record.ID,
			SessionCode: record.SessionCode,
			Name:        record.Name,
			Icon:        record.Icon,
			Score:       record.Score,
			JoinedAt:    record.JoinedAt,
		})
	}
	return rows, nil
}

func (s *Store) UpsertPlayer(row game.PlayerRow) error {
	record := Player{
		ID:          row.ID,
		SessionCode: row.SessionCode,
		Name:        row.Name,
		Icon:        row.Icon,
		Score:       row.Score,
		JoinedAt:    row.JoinedAt,
	}
	return s.conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "session_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "icon", "score", "joined_at"}),
	}).Create(&record).Error
}

func (s *Store) UpdatePlayerScore(code, playerID string, score int) error {
	return s.conn.Model(&Player{}).
		Where("id = ? AND session_code = ?", playerID, code).
		Update("score", score).Error
}

func (s *Store) DeletePlayer(code, playerID string) error {
	return s.conn.Where("id = ? AND session_code = ?", playerID, code).Delete(&Player{}).Error
}

func (s *Store) DeletePlayers(code, keepID string) error {
	tx := s.conn.Where("session_code = ?", code)
	if keepID != "" {
		tx = tx.Where("id <> ?", keepID)
	}
	return tx.Delete(&Player{}).Error
}

func (s *Store) Submissions(code string) ([]game.SubmissionRow, error) {
	var records []Submission
	if err := s.conn.Where("session_code = ?", code).Find(&records).Error; err != nil {
		return nil, err
	}
	rows := make([]game.SubmissionRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, submissionRow(record))
	}
	return rows, nil
}

func (s *Store) SubmissionByID(code, id string) (game.SubmissionRow, bool, error) {
	var record Submission
	err := s.conn.Where("id = ? AND session_code = ?", id, code).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.SubmissionRow{}, false, nil
	}
	if err != nil {
		return game.SubmissionRow{}, false, err
	}
	return submissionRow(record), true, nil
}

func (s *Store) UpsertSubmission(row game.SubmissionRow) error {
	record := Submission{
		ID:          row.ID,
		SessionCode: row.SessionCode,
		PlayerID:    row.PlayerID,
		ImageURL:    row.ImageURL,
		UploadedAt:  row.UploadedAt,
		Votes:       datatypes.NewJSONSlice(row.Votes),
	}
	return s.conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "session_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"player_id", "image_url", "uploaded_at", "votes"}),
	}).Create(&record).Error
}

func (s *Store) UpdateSubmissionVotes(code, id string, votes []string) error {
	return s.conn.Model(&Submission{}).
		Where("id = ? AND session_code = ?", id, code).
		Update("votes", datatypes.NewJSONSlice(votes)).Error
}

func (s *Store) DeleteSubmissions(code string, playerIDs []string) error {
	tx := s.conn.Where("session_code = ?", code)
	if playerIDs != nil {
		tx = tx.Where("player_id IN ?", playerIDs)
	}
	return tx.Delete(&Submission{}).Error
}

func (s *Store) InsertCategories(rows []game.CategoryRow) error {
	if len(rows) == 0 {
		return nil
	}
	records := make([]Category, 0, len(rows))
	for _, row := range rows {
		record := Category{
			ImageDescr: row.ImageDescr,
			UploadedAt: row.UploadedAt,
		}
		if row.RoundTier != "" {
			tier := row.RoundTier
			record.RoundTier = &tier
		}
		records = append(records, record)
	}
	return s.conn.Create(&records).Error
}

func (s *Store) CategoriesForTier(tier string) ([]game.CategoryRow, error) {
	tx := s.conn.Order("uploaded_at DESC")
	if tier != "" {
		tx = tx.Where("round_tier = ? OR round_tier IS NULL", tier)
	}
	var records []Category
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	rows := make([]game.CategoryRow, 0, len(records))
	for _, record := range records {
		row := game.CategoryRow{
			ID:         record.ID,
			ImageDescr: record.ImageDescr,
			UploadedAt: record.UploadedAt,
		}
		if record.RoundTier != nil {
			row.RoundTier = *record.RoundTier
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sessionRow(record GameState) game.SessionRow {
	row := game.SessionRow{
		Code:             record.SessionCode,
		AdminID:          record.AdminID,
		Phase:            record.Phase,
		CurrentRound:     record.CurrentRound,
		RoundNumber:      record.RoundNumber,
		SelectedPlayers:  record.SelectedPlayers,
		TimerDuration:    record.TimerDuration,
		RoundWinners:     record.RoundWinners,
		EasyRoundPlayers: record.EasyRoundPlayers,
		CategoryDescr:    record.CategoryDescr,
	}
	if record.TimerStartedAt != nil {
		row.TimerStartedAt = *record.TimerStartedAt
	}
	return row
}

func sessionRecord(row game.SessionRow) GameState {
	record := GameState{
		SessionCode:      row.Code,
		AdminID:          row.AdminID,
		Phase:            row.Phase,
		CurrentRound:     row.CurrentRound,
		RoundNumber:      row.RoundNumber,
		SelectedPlayers:  datatypes.NewJSONSlice(row.SelectedPlayers),
		TimerDuration:    row.TimerDuration,
		RoundWinners:     datatypes.NewJSONSlice(row.RoundWinners),
		EasyRoundPlayers: datatypes.NewJSONSlice(row.EasyRoundPlayers),
		CategoryDescr:    row.CategoryDescr,
	}
	if !row.TimerStartedAt.IsZero() {
		at := row.TimerStartedAt
		record.TimerStartedAt = &at
	}
	return record
}

func submissionRow(record Submission) game.SubmissionRow {
	return game.SubmissionRow{
		ID:          record.ID,
		SessionCode: record.SessionCode,
		PlayerID:    record.PlayerID,
		ImageURL:    record.ImageURL,
		UploadedAt:  record.UploadedAt,
		Votes:       record.Votes,
	}
}

func patchColumns(patch game.SessionPatch) map[string]any {
	columns := make(map[string]any)
	if patch.AdminID != nil {
		columns["admin_id"] = *patch.AdminID
	}
	if patch.Phase != nil {
		columns["phase"] = *patch.Phase
	}
	if patch.CurrentRound != nil {
		columns["current_round"] = *patch.CurrentRound
	}
	if patch.RoundNumber != nil {
		columns["round_number"] = *patch.RoundNumber
	}
	if patch.SelectedPlayers != nil {
		columns["selected_players"] = datatypes.NewJSONSlice(*patch.SelectedPlayers)
	}
	if patch.TimerStartedAt != nil {
		if patch.TimerStartedAt.IsZero() {
			columns["timer_started_at"] = nil
		} else {
			columns["timer_started_at"] = *patch.TimerStartedAt
		}
	}
	if patch.TimerDuration != nil {
		columns["timer_duration"] = *patch.TimerDuration
	}
	if patch.RoundWinners != nil {
		columns["round_winners"] = datatypes.NewJSONSlice(*patch.RoundWinners)
	}
	if patch.EasyRoundPlayers != nil {
		columns["easy_round_players"] = datatypes.NewJSONSlice(*patch.EasyRoundPlayers)
	}
	if patch.CategoryDescr != nil {
		columns["category_descr"] = *patch.CategoryDescr
	}
	return columns
}

var _ game.Store = (*Store)(nil)
