package rooms

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"quizwire/internal/events"
	"quizwire/internal/identity"
)

func TestRegistry_Create(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)

	room, err := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(room.Code) != codeLength {
		t.Errorf("code length = %d, want %d", len(room.Code), codeLength)
	}
	if room.Status() != StatusWaiting {
		t.Errorf("status = %q, want waiting", room.Status())
	}
	if room.HostConnID() != "host" {
		t.Errorf("host = %q, want host", room.HostConnID())
	}
	if room.MemberCount() != 1 {
		t.Errorf("member count = %d, want 1", room.MemberCount())
	}
}

func TestRegistry_Create_AlreadyInRoom(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1))

	if _, err := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1)); err != ErrAlreadyInRoom {
		t.Errorf("second Create() = %v, want ErrAlreadyInRoom", err)
	}
}

func TestRegistry_Join(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	room, _ := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1))

	joined, err := reg.Join(room.Code, "p1", identity.Guest{Name: "Bob"})
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if joined.Code != room.Code {
		t.Errorf("joined room %q, want %q", joined.Code, room.Code)
	}
	if room.MemberCount() != 2 {
		t.Errorf("member count = %d, want 2", room.MemberCount())
	}
}

func TestRegistry_Join_NotFound(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)

	if _, err := reg.Join("ZZZZZZ", "p1", identity.Guest{Name: "Bob"}); err != ErrRoomNotFound {
		t.Errorf("Join() = %v, want ErrRoomNotFound", err)
	}
}

func TestRegistry_Join_RejectedWhilePlaying(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	room, _ := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1))
	room.Start("host")

	if _, err := reg.Join(room.Code, "p1", identity.Guest{Name: "Bob"}); err != ErrRoomNotJoinable {
		t.Errorf("Join() on playing room = %v, want ErrRoomNotJoinable", err)
	}
	if room.MemberCount() != 1 {
		t.Errorf("member count = %d, want 1 (membership unchanged)", room.MemberCount())
	}
}

func TestRegistry_Join_AlreadyInRoom(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	room1, _ := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1))
	room2, _ := reg.Create("host2", identity.Guest{Name: "Cara"}, testSettings(1))
	reg.Join(room1.Code, "p1", identity.Guest{Name: "Bob"})

	if _, err := reg.Join(room2.Code, "p1", identity.Guest{Name: "Bob"}); err != ErrAlreadyInRoom {
		t.Errorf("Join() while in another room = %v, want ErrAlreadyInRoom", err)
	}
}

func TestRegistry_Get_NormalizesCode(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	room, _ := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1))

	if got := reg.Get(" " + room.Code + " "); got != room {
		t.Error("Get() should trim whitespace")
	}
	if got := reg.Get("nosuch"); got != nil {
		t.Error("Get() should return nil for unknown code")
	}
}

func TestRegistry_Leave_HostFailover(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	room, _ := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1))
	reg.Join(room.Code, "p1", identity.Guest{Name: "Bob"})
	reg.Join(room.Code, "p2", identity.Guest{Name: "Cara"})

	got := reg.Leave("host")
	if got != room {
		t.Fatal("Leave() should return the room while members remain")
	}
	if room.Status() != StatusWaiting {
		t.Errorf("status = %q, want waiting", room.Status())
	}
	// Earliest remaining joiner becomes host
	if room.HostConnID() != "p1" {
		t.Errorf("new host = %q, want p1", room.HostConnID())
	}

	room.mu.Lock()
	hosts := 0
	for _, p := range room.members {
		if p.IsHost {
			hosts++
		}
	}
	room.mu.Unlock()
	if hosts != 1 {
		t.Errorf("host count = %d, want exactly 1", hosts)
	}
}

func TestRegistry_Leave_HostLeavingMidGameDoesNotPromote(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(2)}, nil)
	room, _ := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(2))
	reg.Join(room.Code, "p1", identity.Guest{Name: "Bob"})
	if err := room.Start("host"); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if got := reg.Leave("host"); got != room {
		t.Fatal("Leave() should return the room while members remain")
	}

	// The host role is only reassigned before the game starts.
	if room.HostConnID() != "host" {
		t.Errorf("host conn = %q, want unchanged %q", room.HostConnID(), "host")
	}
	room.mu.Lock()
	for _, p := range room.members {
		if p.IsHost {
			t.Errorf("player %q flagged as host after mid-game departure", p.ConnID)
		}
	}
	room.mu.Unlock()

	// The game itself carries on for the remaining player.
	if err := room.SubmitAnswer("p1", 0); err != nil {
		t.Fatalf("SubmitAnswer() error: %v", err)
	}
}

func TestRegistry_Leave_LastMemberRemovesRoom(t *testing.T) {
	reg, ems := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	room, _ := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1))
	room.Start("host")

	if got := reg.Leave("host"); got != nil {
		t.Error("Leave() should return nil when the room empties")
	}
	if reg.Get(room.Code) != nil {
		t.Error("room should be deregistered")
	}
	if reg.RoomFor("host") != nil {
		t.Error("reverse index entry should be removed")
	}

	// The countdown that was running must fire no further events
	em := ems.forRoom(room.Code)
	em.mu.Lock()
	before := len(em.sent)
	em.mu.Unlock()

	time.Sleep(1500 * time.Millisecond)

	em.mu.Lock()
	after := len(em.sent)
	em.mu.Unlock()
	if after != before {
		t.Errorf("events after room removal: %d new", after-before)
	}
}

func TestRegistry_Leave_Unknown(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	if got := reg.Leave("nobody"); got != nil {
		t.Error("Leave() for unknown connection should return nil")
	}
}

func TestRegistry_LeaveThenJoinElsewhere(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	room1, _ := reg.Create("host1", identity.Guest{Name: "Alice"}, testSettings(1))
	room2, _ := reg.Create("host2", identity.Guest{Name: "Bob"}, testSettings(1))

	reg.Join(room1.Code, "p1", identity.Guest{Name: "Cara"})
	reg.Leave("p1")

	if _, err := reg.Join(room2.Code, "p1", identity.Guest{Name: "Cara"}); err != nil {
		t.Errorf("Join() after leaving = %v, want nil", err)
	}
}

func TestRegistry_MidRoundLeave_TriggersEarlyEnd(t *testing.T) {
	reg, ems := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	room, _ := reg.Create("host", identity.Guest{Name: "Alice"}, testSettings(1))
	reg.Join(room.Code, "p1", identity.Guest{Name: "Bob"})
	room.Start("host")

	// Bob answers; Alice leaves without answering. Everyone remaining has
	// answered, so the round ends early.
	room.SubmitAnswer("p1", 0)
	reg.Leave("host")

	em := ems.forRoom(room.Code)
	if got := em.count(events.QuestionSummary); got != 1 {
		t.Fatalf("questionSummary count = %d, want 1", got)
	}
	payload, _ := em.last(events.QuestionSummary)
	if !payload.(events.SummaryPayload).EndedEarly {
		t.Error("summary should report early end")
	}
}

func TestRegistry_SlowStartDoesNotBlockOtherRooms(t *testing.T) {
	cat := &fakeCatalog{qs: testQuestions(1), delay: 600 * time.Millisecond}
	reg, _ := newTestRegistry(cat, nil)

	roomA, _ := reg.Create("hostA", identity.Guest{Name: "Alice"}, testSettings(1))
	reg.Join(roomA.Code, "p1", identity.Guest{Name: "Bob"})

	started := make(chan error, 1)
	go func() { started <- roomA.Start("hostA") }()

	// Let the start reach the catalog call.
	time.Sleep(50 * time.Millisecond)

	begin := time.Now()
	if _, err := reg.Create("hostB", identity.Guest{Name: "Carol"}, testSettings(1)); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if room := reg.Leave("p1"); room == nil {
		t.Fatal("Leave() returned nil for a member of a live room")
	}
	if elapsed := time.Since(begin); elapsed > 200*time.Millisecond {
		t.Errorf("registry operations took %v during another room's start, want well under the catalog delay", elapsed)
	}

	if err := <-started; err != nil {
		t.Fatalf("Start() error: %v", err)
	}
}

func TestStart_HostReplacedDuringCatalogLoad(t *testing.T) {
	cat := &fakeCatalog{qs: testQuestions(1), delay: 300 * time.Millisecond}
	reg, _ := newTestRegistry(cat, nil)

	room, _ := reg.Create("hostA", identity.Guest{Name: "Alice"}, testSettings(1))
	reg.Join(room.Code, "p1", identity.Guest{Name: "Bob"})

	started := make(chan error, 1)
	go func() { started <- room.Start("hostA") }()

	time.Sleep(50 * time.Millisecond)
	reg.Leave("hostA") // p1 is promoted while the catalog call is in flight

	if err := <-started; err != ErrNotHost {
		t.Fatalf("Start() error = %v, want ErrNotHost", err)
	}
	if got := room.Status(); got != StatusWaiting {
		t.Errorf("status = %q, want waiting", got)
	}
}

func TestRegistry_ConcurrentCreates(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			reg.Create(fmt.Sprintf("conn-%d", n), identity.Guest{Name: "p"}, testSettings(1))
		}(i)
	}
	wg.Wait()

	if reg.Count() != 50 {
		t.Errorf("concurrent creates: got %d rooms, want 50", reg.Count())
	}
}

func TestRegistry_RoomIsolation(t *testing.T) {
	reg, _ := newTestRegistry(&fakeCatalog{qs: testQuestions(1)}, nil)
	room1, _ := reg.Create("h1", identity.Guest{Name: "Alice"}, testSettings(1))
	room2, _ := reg.Create("h2", identity.Guest{Name: "Bob"}, testSettings(1))

	reg.Join(room1.Code, "p1", identity.Guest{Name: "Cara"})

	if room1.MemberCount() != 2 {
		t.Errorf("room1 member count = %d, want 2", room1.MemberCount())
	}
	if room2.MemberCount() != 1 {
		t.Errorf("room2 member count = %d, want 1", room2.MemberCount())
	}
}
