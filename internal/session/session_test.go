package session

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/engine"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/rng"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := ManagerConfig{
		Engine: engine.Config{StartingBalance: 1000},
	}
	m := NewManager(cfg, rng.New(), nil)
	t.Cleanup(m.CloseAll)
	return m
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(t)

	eng := m.Create("Streamer", engine.Hooks{})
	if eng.ID() == "" {
		t.Fatal("session without id")
	}
	if eng.Broadcaster() != "Streamer" {
		t.Errorf("unexpected broadcaster %q", eng.Broadcaster())
	}

	got, err := m.Get(eng.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != eng {
		t.Error("Get returned a different engine")
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 session, got %d", m.Count())
	}
}

func TestGetUnknown(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestClose(t *testing.T) {
	m := newTestManager(t)
	eng := m.Create("Streamer", engine.Hooks{})

	if err := m.Close(eng.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Get(eng.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Error("session still reachable after close")
	}
	if err := m.Close(eng.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double close: expected ErrSessionNotFound, got %v", err)
	}

	// The engine itself is shut down.
	if _, err := eng.PostChat("v1", "alice", "hi", time.Now()); !errors.Is(err, engine.ErrClosed) {
		t.Errorf("engine still open after manager close: %v", err)
	}
}

func TestList(t *testing.T) {
	m := newTestManager(t)
	m.Create("A", engine.Hooks{})
	m.Create("B", engine.Hooks{})

	infos := m.List()
	if len(infos) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(infos))
	}
	for _, info := range infos {
		if info.ID == "" || info.Broadcaster == "" {
			t.Errorf("incomplete info: %+v", info)
		}
	}
}

func TestReapIdle(t *testing.T) {
	m := newTestManager(t)
	idle := m.Create("Idle", engine.Hooks{})
	active := m.Create("Active", engine.Hooks{})

	time.Sleep(30 * time.Millisecond)
	if _, err := active.PostChat("v1", "alice", "hi", time.Now()); err != nil {
		t.Fatalf("chat failed: %v", err)
	}

	reaped := m.ReapIdle(20 * time.Millisecond)
	if reaped != 1 {
		t.Fatalf("expected 1 reaped, got %d", reaped)
	}
	if _, err := m.Get(idle.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session survived reaping")
	}
	if _, err := m.Get(active.ID()); err != nil {
		t.Error("active session was reaped")
	}
}

func TestCreateWithScoreFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[{"amount":25}],"cursor":"c1"}`)
	}))
	defer srv.Close()

	m := NewManager(ManagerConfig{
		Engine:           engine.Config{StartingBalance: 1000, BattleTick: time.Hour},
		SimulateOpponent: true,
		FeedURL:          srv.URL,
		FeedPollInterval: 10 * time.Millisecond,
	}, rng.New(), nil)
	t.Cleanup(m.CloseAll)

	eng := m.Create("Streamer", engine.Hooks{})
	if _, err := eng.StartBattle(60, "Rival", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Opponent scoring comes from the remote feed, not the simulator.
	deadline := time.Now().Add(2 * time.Second)
	for eng.BattleState().ScoreOpponent == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no opponent score delivered from the feed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCloseAll(t *testing.T) {
	m := newTestManager(t)
	m.Create("A", engine.Hooks{})
	m.Create("B", engine.Hooks{})

	m.CloseAll()
	if m.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", m.Count())
	}
}
