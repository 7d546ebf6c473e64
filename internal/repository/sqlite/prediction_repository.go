package sqlite

import (
	"fmt"

	"catdog/internal/model"
)

// PredictionRepository implements repository.PredictionRepository for SQLite.
type PredictionRepository struct {
	db *DB
}

// NewPredictionRepository creates a new SQLite prediction repository.
func NewPredictionRepository(db *DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// InsertBatch adds multiple predictions in a single transaction.
func (r *PredictionRepository) InsertBatch(predictions []model.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO predictions (session_id, label, confidence, raw_score, guess, outcome,
			image_width, image_height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range predictions {
		if _, err := stmt.Exec(p.SessionID, p.Label, p.Confidence, p.RawScore, p.Guess, p.Outcome,
			p.ImageWidth, p.ImageHeight, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert prediction: %w", err)
		}
	}

	return tx.Commit()
}

// whereClause builds the shared filter for GetAll and GetTotalCount.
func whereClause(filter *model.PredictionFilter) (string, []interface{}) {
	query := " WHERE 1=1"
	args := []interface{}{}

	if filter == nil {
		return query, args
	}

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}

	if filter.Label != "" {
		query += " AND label = ?"
		args = append(args, filter.Label)
	}

	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, filter.Outcome)
	}

	return query, args
}

// GetAll retrieves predictions based on filter criteria, newest first.
func (r *PredictionRepository) GetAll(filter *model.PredictionFilter) ([]model.Prediction, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	query := `
		SELECT id, session_id, label, confidence, raw_score, guess, outcome,
			image_width, image_height, created_at
		FROM predictions` + where + " ORDER BY created_at DESC, id DESC"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []model.Prediction
	for rows.Next() {
		var p model.Prediction
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Label, &p.Confidence, &p.RawScore, &p.Guess,
			&p.Outcome, &p.ImageWidth, &p.ImageHeight, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// GetTotalCount returns the total count of predictions matching the filter.
func (r *PredictionRepository) GetTotalCount(filter *model.PredictionFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM predictions`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return count, nil
}

// GetStats returns statistics about stored predictions.
func (r *PredictionRepository) GetStats() (*model.PredictionStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &model.PredictionStats{
		PerLabel:   make(map[string]int),
		PerOutcome: make(map[string]int),
	}

	if err := r.db.Conn().QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(confidence), 0), COUNT(DISTINCT session_id) FROM predictions
	`).Scan(&stats.TotalPredictions, &stats.AverageConfidence, &stats.Sessions); err != nil {
		return nil, fmt.Errorf("failed to read totals: %w", err)
	}

	if err := r.countBy("label", stats.PerLabel); err != nil {
		return nil, err
	}
	if err := r.countBy("outcome", stats.PerOutcome); err != nil {
		return nil, err
	}

	return stats, nil
}

// countBy fills dst with COUNT(*) grouped by column. column is never user input.
func (r *PredictionRepository) countBy(column string, dst map[string]int) error {
	rows, err := r.db.Conn().Query(`SELECT ` + column + `, COUNT(*) FROM predictions GROUP BY ` + column)
	if err != nil {
		return fmt.Errorf("failed to group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		dst[key] = count
	}
	return rows.Err()
}

// DeleteAll removes the whole prediction history.
func (r *PredictionRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM predictions`); err != nil {
		return fmt.Errorf("failed to delete predictions: %w", err)
	}
	return nil
}
