// Package questions defines the question snapshot handed to rooms and an
// in-memory catalog used when no database is configured.
package questions

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
)

type Question struct {
	ID          int64
	Text        string
	Options     []string
	Correct     int
	Category    string
	Difficulty  string
	Explanation string
}

// MemoryCatalog serves questions from a fixed slice.
type MemoryCatalog struct {
	mu sync.Mutex
	qs []Question
}

func NewMemoryCatalog(qs []Question) *MemoryCatalog {
	return &MemoryCatalog{qs: qs}
}

// LoadQuestions returns up to count questions matching the given category
// and difficulty filters (empty string matches everything), in random order.
// It may return fewer than requested; it returns an empty slice when nothing
// matches.
func (c *MemoryCatalog) LoadQuestions(_ context.Context, category, difficulty string, count int) ([]Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	matched := make([]Question, 0, len(c.qs))
	for _, q := range c.qs {
		if category != "" && !strings.EqualFold(q.Category, category) {
			continue
		}
		if difficulty != "" && !strings.EqualFold(q.Difficulty, difficulty) {
			continue
		}
		matched = append(matched, q)
	}

	rand.Shuffle(len(matched), func(i, j int) {
		matched[i], matched[j] = matched[j], matched[i]
	})

	if count > 0 && len(matched) > count {
		matched = matched[:count]
	}
	return matched, nil
}

// All returns a copy of every question in the catalog.
func (c *MemoryCatalog) All() []Question {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Question, len(c.qs))
	copy(out, c.qs)
	return out
}

func (c *MemoryCatalog) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, q := range c.qs {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	return out
}
