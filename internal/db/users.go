package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quizwire/internal/auth"
)

// GetUserByUsername returns (nil, nil) when no such user exists, matching
// what auth.UserStore expects.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	return d.getUser(ctx, `SELECT id, username, email, password_hash, total_games, total_score, best_score
		FROM users WHERE username = $1`, username)
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return d.getUser(ctx, `SELECT id, username, email, password_hash, total_games, total_score, best_score
		FROM users WHERE email = $1`, email)
}

func (d *DB) getUser(ctx context.Context, query, arg string) (*auth.User, error) {
	var u auth.User
	err := d.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.TotalGames, &u.TotalScore, &u.BestScore,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return &u, nil
}

func (d *DB) CreateUser(ctx context.Context, username, email, passwordHash string) (int64, error) {
	var id int64
	err := d.conn.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, username, email, passwordHash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return id, nil
}

// UserStats is the aggregate line shown on a player's profile.
type UserStats struct {
	TotalGames int     `json:"totalGames"`
	TotalScore int     `json:"totalScore"`
	BestScore  int     `json:"bestScore"`
	AvgScore   float64 `json:"avgScore"`
}

func (d *DB) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	var s UserStats
	err := d.conn.QueryRowContext(ctx, `
		SELECT total_games, total_score, best_score,
			CASE WHEN total_games > 0 THEN total_score::float / total_games ELSE 0 END
		FROM users WHERE id = $1
	`, userID).Scan(&s.TotalGames, &s.TotalScore, &s.BestScore, &s.AvgScore)
	if err != nil {
		return nil, fmt.Errorf("loading user stats: %w", err)
	}
	return &s, nil
}
