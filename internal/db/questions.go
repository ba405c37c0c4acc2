package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"quizwire/internal/questions"
)

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (d *DB) Categories(ctx context.Context) ([]Category, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), icon
		FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// LoadQuestions picks a random question set. An empty category or difficulty
// means no filter on that axis.
func (d *DB) LoadQuestions(ctx context.Context, category, difficulty string, count int) ([]questions.Question, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT q.id, q.question, q.options, q.correct_answer,
			COALESCE(c.name, ''), q.difficulty, COALESCE(q.explanation, '')
		FROM questions q
		LEFT JOIN categories c ON q.category_id = c.id
		WHERE ($1 = '' OR c.name ILIKE $1)
		  AND ($2 = '' OR q.difficulty = $2)
		ORDER BY random()
		LIMIT $3
	`, category, difficulty, count)
	if err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}
	defer rows.Close()

	var qs []questions.Question
	for rows.Next() {
		var q questions.Question
		var options []byte
		if err := rows.Scan(&q.ID, &q.Text, &options, &q.Correct, &q.Category, &q.Difficulty, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("decoding options for question %d: %w", q.ID, err)
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

// SeedQuestions inserts the built-in question set if the table is empty.
// Safe to run on every boot.
func (d *DB) SeedQuestions(ctx context.Context, qs []questions.Question) error {
	var n int
	if err := d.conn.QueryRowContext(ctx, `SELECT count(*) FROM questions`).Scan(&n); err != nil {
		return fmt.Errorf("counting questions: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, q := range qs {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encoding options: %w", err)
		}
		var categoryID sql.NullInt64
		if q.Category != "" {
			err := d.conn.QueryRowContext(ctx,
				`SELECT id FROM categories WHERE name ILIKE $1 OR name ILIKE $1 || ' %'`,
				q.Category).Scan(&categoryID.Int64)
			if err == nil {
				categoryID.Valid = true
			} else if err != sql.ErrNoRows {
				return fmt.Errorf("resolving category %q: %w", q.Category, err)
			}
		}
		_, err = d.conn.ExecContext(ctx, `
			INSERT INTO questions (question, options, correct_answer, category_id, difficulty, explanation)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		`, q.Text, options, q.Correct, categoryID, q.Difficulty, q.Explanation)
		if err != nil {
			return fmt.Errorf("inserting question: %w", err)
		}
	}
	return nil
}
