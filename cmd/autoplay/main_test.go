package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/tilemerge/api"
	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/scores"
	"github.com/wricardo/mcp-training/tilemerge/game/service"
	"github.com/wricardo/mcp-training/tilemerge/game/session"
	"github.com/wricardo/mcp-training/tilemerge/game/strategy"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	dir := t.TempDir()
	data := []byte(`{
  "name": "Small",
  "description": "3x3 board",
  "grid_size": 3,
  "seed": 5,
  "messages": {"welcome": "hi", "moved": "Score: %d", "no_change": "stuck", "game_over": "over at %d"}
}`)
	if err := os.WriteFile(filepath.Join(dir, "small.json"), data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("config manager: %v", err)
	}
	sessions := session.NewManager()
	svc := service.NewGameService(sessions, configs, service.WithScoreStore(scores.NewMemoryStore()))

	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)
	return server, sessions
}

func newPlayer(t *testing.T, baseURL, name string) *Player {
	t.Helper()
	s, err := strategy.New(name, engine.NewRandomSource(3))
	if err != nil {
		t.Fatal(err)
	}
	return &Player{client: NewClient(baseURL + "/"), strategy: s}
}

func TestPlayer_Run(t *testing.T) {
	server, sessions := newTestServer(t)
	player := newPlayer(t, server.URL, "greedy")

	summaries, err := player.Run(context.Background(), "small", 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("Expected 2 games, got %d", len(summaries))
	}
	for i, s := range summaries {
		if !s.GameOver {
			t.Errorf("Game %d: expected to play until game over", i+1)
		}
		if s.Moves == 0 {
			t.Errorf("Game %d: expected some moves, got %+v", i+1, s)
		}
	}
	if summaries[0].GameID == summaries[1].GameID {
		t.Error("Expected a new game ID for the second game")
	}
	if sessions.Count() != 0 {
		t.Error("Expected the session to be deleted after the run")
	}

	top, err := player.client.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 recorded games, got %d", len(top))
	}
	for _, entry := range top {
		if !entry.Finished || entry.ConfigName != "Small" {
			t.Errorf("Unexpected leaderboard entry %+v", entry)
		}
	}
}

func TestPlayer_MaxMoves(t *testing.T) {
	server, _ := newTestServer(t)
	player := newPlayer(t, server.URL, "corner")
	player.maxMoves = 3

	summaries, err := player.Run(context.Background(), "small", 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summaries[0].Moves != 3 || summaries[0].GameOver {
		t.Errorf("Expected the game to stop after 3 moves, got %+v", summaries[0])
	}
}

func TestClient_Errors(t *testing.T) {
	server, _ := newTestServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	if _, err := client.CreateSession(ctx, "missing"); err == nil {
		t.Error("Expected an error for an unknown config")
	}

	_, err := client.Move(ctx, "nope", engine.Left)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected the API error message, got %v", err)
	}

	if err := client.DeleteSession(ctx, "nope"); err == nil {
		t.Error("Expected an error deleting an unknown session")
	}
}

func TestClient_StatusWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CreateSession(context.Background(), "")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("Expected the HTTP status in the error, got %v", err)
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf,
		[]*GameSummary{{Score: 120, BestTile: 32, Moves: 40}, {Score: 300, BestTile: 64, Moves: 70}},
		[]*service.ScoreEntry{{Score: 300, BestTile: 64, ConfigName: "Classic"}},
	)

	out := buf.String()
	for _, want := range []string{"Game 1: score 120", "Game 2: score 300", "Best score: 300", "Leaderboard:", "(Classic)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in report:\n%s", want, out)
		}
	}
}
