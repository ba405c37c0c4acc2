package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"quizwire/internal/rooms"
)

// CreateGame opens a history row for a room's game. A hostUserID of 0 means
// the host is a guest and the row carries no owner.
func (d *DB) CreateGame(ctx context.Context, roomCode string, hostUserID int64, settings rooms.Settings) (int64, error) {
	cfg, err := json.Marshal(settings)
	if err != nil {
		return 0, fmt.Errorf("encoding settings: %w", err)
	}

	var id int64
	err = d.conn.QueryRowContext(ctx, `
		INSERT INTO games (room_code, host_id, status, settings, started_at)
		VALUES ($1, $2, 'waiting', $3, now())
		RETURNING id
	`, roomCode, nullID(hostUserID), cfg).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating game: %w", err)
	}
	return id, nil
}

func (d *DB) AddParticipant(ctx context.Context, gameID, userID int64, name string) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO game_participants (game_id, user_id, username)
		VALUES ($1, $2, $3)
	`, gameID, nullID(userID), name)
	if err != nil {
		return fmt.Errorf("adding participant: %w", err)
	}
	return nil
}

func (d *DB) UpdateGameStatus(ctx context.Context, gameID int64, status string, startedAt, endedAt *time.Time) error {
	_, err := d.conn.ExecContext(ctx, `
		UPDATE games
		SET status = $2,
			started_at = COALESCE($3, started_at),
			ended_at = COALESCE($4, ended_at)
		WHERE id = $1
	`, gameID, status, startedAt, endedAt)
	if err != nil {
		return fmt.Errorf("updating game status: %w", err)
	}
	return nil
}

// UpdateFinalScore records a participant's final score and folds it into
// the user's lifetime stats.
func (d *DB) UpdateFinalScore(ctx context.Context, gameID, userID int64, score int) error {
	_, err := d.conn.ExecContext(ctx, `
		UPDATE game_participants SET score = $3
		WHERE game_id = $1 AND user_id = $2
	`, gameID, userID, score)
	if err != nil {
		return fmt.Errorf("updating participant score: %w", err)
	}

	_, err = d.conn.ExecContext(ctx, `
		UPDATE users
		SET total_games = total_games + 1,
			total_score = total_score + $2,
			best_score = GREATEST(best_score, $2)
		WHERE id = $1
	`, userID, score)
	if err != nil {
		return fmt.Errorf("updating user stats: %w", err)
	}
	return nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
