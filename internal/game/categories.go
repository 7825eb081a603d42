package game

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
)

// ParseCategoriesCSV reads an admin category upload: a header row naming at
// least "category" and "image_descr", then one prompt per row. Rows with an
// unknown tier or an empty description are skipped with a warning; the parse
// fails only when the required columns are absent or nothing valid remains.
func ParseCategoriesCSV(r io.Reader) ([]CategoryRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportFormat, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyImport
	}

	tierIndex, descrIndex := -1, -1
	for i, column := range records[0] {
		switch strings.ToLower(strings.TrimSpace(column)) {
		case "category":
			tierIndex = i
		case "image_descr":
			descrIndex = i
		}
	}
	if tierIndex == -1 || descrIndex == -1 {
		return nil, ErrInvalidImportFormat
	}

	var rows []CategoryRow
	for i, record := range records[1:] {
		if len(record) <= tierIndex || len(record) <= descrIndex {
			log.Printf("category row skipped row=%d reason=missing_columns", i+2)
			continue
		}
		tier := strings.ToLower(strings.TrimSpace(record[tierIndex]))
		descr := strings.TrimSpace(record[descrIndex])
		if tier != TierEasy && tier != TierMedium && tier != TierHard {
			log.Printf("category row skipped row=%d reason=invalid_tier tier=%q", i+2, tier)
			continue
		}
		if descr == "" {
			log.Printf("category row skipped row=%d reason=empty_description", i+2)
			continue
		}
		rows = append(rows, CategoryRow{RoundTier: tier, ImageDescr: descr})
	}
	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}
	return rows, nil
}

// ImportCategories inserts parsed rows in bounded batches on behalf of the
// captain. A failing batch aborts the rest but keeps what already landed;
// the error names the batch so the partial import is visible.
func (e *Engine) ImportCategories(code, actorID string, rows []CategoryRow) (int, error) {
	if err := e.RequireAdmin(code, actorID); err != nil {
		return 0, err
	}
	uploadedAt := e.clock.Now().UTC()
	batchSize := e.cfg.ImportBatchSize
	if batchSize <= 0 {
		batchSize = len(rows)
	}
	inserted := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := make([]CategoryRow, end-start)
		copy(batch, rows[start:end])
		for i := range batch {
			batch[i].UploadedAt = uploadedAt
		}
		if err := e.store.InsertCategories(batch); err != nil {
			return inserted, fmt.Errorf("insert categories batch %d: %w", start/batchSize+1, err)
		}
		inserted += len(batch)
	}
	log.Printf("categories imported session_code=%s count=%d", code, inserted)
	return inserted, nil
}

// Categories lists the pool, optionally narrowed to a tier (including
// tier-less entries).
func (e *Engine) Categories(tier string) ([]CategoryRow, error) {
	rows, err := e.store.CategoriesForTier(tier)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return rows, nil
}
