package db

import (
	"context"
	"os"
	"testing"
	"time"

	"quizwire/internal/questions"
	"quizwire/internal/rooms"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		// Clean up test data
		database.conn.Exec("DELETE FROM game_answers")
		database.conn.Exec("DELETE FROM game_participants")
		database.conn.Exec("DELETE FROM games")
		database.conn.Exec("DELETE FROM questions")
		database.conn.Exec("DELETE FROM users")
		database.Close()
	})
	return database
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	if err := database.Ping(); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	database := getTestDB(t)

	// Verify tables exist by querying them
	tables := []string{"users", "categories", "questions", "games", "game_participants", "game_answers"}
	for _, table := range tables {
		var exists bool
		err := database.conn.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
		`, table).Scan(&exists)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestCreateAndLookupUser(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	id, err := database.CreateUser(ctx, "alice", "alice@example.com", "hash123")
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if id == 0 {
		t.Fatal("CreateUser() returned zero id")
	}

	u, err := database.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error: %v", err)
	}
	if u == nil {
		t.Fatal("GetUserByUsername() returned nil for existing user")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}

	byEmail, err := database.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error: %v", err)
	}
	if byEmail == nil || byEmail.ID != id {
		t.Errorf("GetUserByEmail() = %+v, want id %d", byEmail, id)
	}

	missing, err := database.GetUserByUsername(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername(missing) error: %v", err)
	}
	if missing != nil {
		t.Errorf("GetUserByUsername(missing) = %+v, want nil", missing)
	}
}

func TestSeedAndLoadQuestions(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	if err := database.SeedQuestions(ctx, questions.DefaultCatalog().All()); err != nil {
		t.Fatalf("SeedQuestions() error: %v", err)
	}
	// Seeding twice must not duplicate
	if err := database.SeedQuestions(ctx, questions.DefaultCatalog().All()); err != nil {
		t.Fatalf("second SeedQuestions() error: %v", err)
	}

	qs, err := database.LoadQuestions(ctx, "", "", 5)
	if err != nil {
		t.Fatalf("LoadQuestions() error: %v", err)
	}
	if len(qs) != 5 {
		t.Errorf("question count = %d, want 5", len(qs))
	}
	for _, q := range qs {
		if len(q.Options) == 0 {
			t.Errorf("question %d has no options", q.ID)
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			t.Errorf("question %d correct index %d out of range", q.ID, q.Correct)
		}
	}

	science, err := database.LoadQuestions(ctx, "Science", "", 50)
	if err != nil {
		t.Fatalf("LoadQuestions(Science) error: %v", err)
	}
	for _, q := range science {
		if q.Category != "Science" {
			t.Errorf("category = %q, want Science", q.Category)
		}
	}

	easy, err := database.LoadQuestions(ctx, "", "easy", 50)
	if err != nil {
		t.Fatalf("LoadQuestions(easy) error: %v", err)
	}
	for _, q := range easy {
		if q.Difficulty != "easy" {
			t.Errorf("difficulty = %q, want easy", q.Difficulty)
		}
	}
}

func TestCategories(t *testing.T) {
	database := getTestDB(t)

	cats, err := database.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("Categories() returned no rows, want seeded defaults")
	}
	for _, c := range cats {
		if c.Name == "" {
			t.Error("category with empty name")
		}
	}
}

func TestGameLifecycle(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	userID, err := database.CreateUser(ctx, "host", "host@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if err := database.SeedQuestions(ctx, questions.DefaultCatalog().All()); err != nil {
		t.Fatalf("SeedQuestions() error: %v", err)
	}
	qs, err := database.LoadQuestions(ctx, "", "", 1)
	if err != nil || len(qs) == 0 {
		t.Fatalf("LoadQuestions() error: %v", err)
	}

	gameID, err := database.CreateGame(ctx, "ABC234", userID, rooms.DefaultSettings())
	if err != nil {
		t.Fatalf("CreateGame() error: %v", err)
	}

	if err := database.AddParticipant(ctx, gameID, userID, "host"); err != nil {
		t.Fatalf("AddParticipant() error: %v", err)
	}
	// Guest participant has no user row
	if err := database.AddParticipant(ctx, gameID, 0, "visitor"); err != nil {
		t.Fatalf("AddParticipant(guest) error: %v", err)
	}

	now := time.Now()
	if err := database.UpdateGameStatus(ctx, gameID, "playing", &now, nil); err != nil {
		t.Fatalf("UpdateGameStatus(playing) error: %v", err)
	}

	if err := database.RecordAnswer(ctx, gameID, userID, qs[0].ID, qs[0].Correct, true, 1200); err != nil {
		t.Fatalf("RecordAnswer() error: %v", err)
	}

	if err := database.UpdateFinalScore(ctx, gameID, userID, 15); err != nil {
		t.Fatalf("UpdateFinalScore() error: %v", err)
	}
	ended := time.Now()
	if err := database.UpdateGameStatus(ctx, gameID, "finished", nil, &ended); err != nil {
		t.Fatalf("UpdateGameStatus(finished) error: %v", err)
	}

	stats, err := database.GetUserStats(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserStats() error: %v", err)
	}
	if stats.TotalGames != 1 {
		t.Errorf("TotalGames = %d, want 1", stats.TotalGames)
	}
	if stats.TotalScore != 15 {
		t.Errorf("TotalScore = %d, want 15", stats.TotalScore)
	}
	if stats.BestScore != 15 {
		t.Errorf("BestScore = %d, want 15", stats.BestScore)
	}

	var status string
	if err := database.conn.QueryRow(`SELECT status FROM games WHERE id = $1`, gameID).Scan(&status); err != nil {
		t.Fatalf("reading game status: %v", err)
	}
	if status != "finished" {
		t.Errorf("status = %q, want finished", status)
	}
}
