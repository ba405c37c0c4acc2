package db

import (
	"context"
	"fmt"
)

func (d *DB) RecordAnswer(ctx context.Context, gameID, userID, questionID int64, optionIndex int, correct bool, timeTakenMs int64) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO game_answers (game_id, user_id, question_id, answer_index, is_correct, time_taken_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, gameID, nullID(userID), questionID, optionIndex, correct, timeTakenMs)
	if err != nil {
		return fmt.Errorf("recording answer: %w", err)
	}
	return nil
}
