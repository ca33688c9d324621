// Command autoplay plays games against a running server through the REST API.
// Every move is chosen locally from the grid returned by the previous call.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/service"
	"github.com/wricardo/mcp-training/tilemerge/game/strategy"
)

// Client talks to the game REST API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id, ""), nil, nil)
}

func (c *Client) Move(ctx context.Context, id string, dir engine.Direction) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, sessionPath(id, "/move"), map[string]string{"direction": dir.String()}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) NewGame(ctx context.Context, id string) (*engine.GameState, error) {
	var resp struct {
		State *engine.GameState `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, sessionPath(id, "/new-game"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]*service.ScoreEntry, error) {
	var resp struct {
		Scores []*service.ScoreEntry `json:"scores"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/leaderboard?limit=%d", limit), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}

// Player drives one session with a strategy
type Player struct {
	client   *Client
	strategy strategy.Strategy
	maxMoves int
}

// GameSummary is the outcome of one played game
type GameSummary struct {
	GameID   string
	Score    uint64
	BestTile uint32
	Moves    int
	GameOver bool
}

// PlayGame moves until the game is over, the strategy finds no move or
// maxMoves is reached.
func (p *Player) PlayGame(ctx context.Context, sessionID string, state *engine.GameState) (*GameSummary, error) {
	summary := &GameSummary{GameID: state.GameID}

	for !state.GameOver && (p.maxMoves <= 0 || summary.Moves < p.maxMoves) {
		grid, err := engine.GridFromRows(state.Grid)
		if err != nil {
			return nil, fmt.Errorf("rebuild grid: %w", err)
		}
		dir, ok := p.strategy.NextMove(grid)
		if !ok {
			break
		}

		result, err := p.client.Move(ctx, sessionID, dir)
		if err != nil {
			return nil, err
		}
		if !result.Changed {
			return nil, fmt.Errorf("move %s changed nothing on the server", dir)
		}
		state = result.GameState
		summary.Moves++

		log.Debug().
			Str("session", sessionID).
			Str("direction", dir.String()).
			Uint64("score_delta", result.ScoreDelta).
			Uint64("score", state.Score).
			Msg("move")
	}

	summary.Score = state.Score
	summary.BestTile = state.BestTile
	summary.GameOver = state.GameOver
	return summary, nil
}

// Run plays games in a fresh session and deletes it afterwards
func (p *Player) Run(ctx context.Context, configID string, games int) ([]*GameSummary, error) {
	info, err := p.client.CreateSession(ctx, configID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := p.client.DeleteSession(context.WithoutCancel(ctx), info.ID); err != nil {
			log.Warn().Err(err).Str("session", info.ID).Msg("delete session")
		}
	}()

	log.Info().Str("session", info.ID).Str("config", info.ConfigName).Msg("session created")

	state := info.GameState
	var summaries []*GameSummary
	for i := 0; i < games; i++ {
		if i > 0 {
			if state, err = p.client.NewGame(ctx, info.ID); err != nil {
				return summaries, err
			}
		}

		summary, err := p.PlayGame(ctx, info.ID, state)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)

		log.Info().
			Int("game", i+1).
			Uint64("score", summary.Score).
			Uint32("best_tile", summary.BestTile).
			Int("moves", summary.Moves).
			Bool("game_over", summary.GameOver).
			Msg("game finished")
	}
	return summaries, nil
}

func printReport(w io.Writer, summaries []*GameSummary, top []*service.ScoreEntry) {
	var best uint64
	for i, s := range summaries {
		fmt.Fprintf(w, "Game %d: score %d, best tile %d, %d moves\n", i+1, s.Score, s.BestTile, s.Moves)
		if s.Score > best {
			best = s.Score
		}
	}
	fmt.Fprintf(w, "Best score: %d\n", best)

	if len(top) == 0 {
		return
	}
	fmt.Fprintln(w, "\nLeaderboard:")
	for i, entry := range top {
		fmt.Fprintf(w, "%2d. %6d  best %d  (%s)\n", i+1, entry.Score, entry.BestTile, entry.ConfigName)
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play games against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Config ID for the session"},
			&cli.StringFlag{Name: "strategy", Value: "greedy", Usage: "random, corner or greedy"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "Games to play"},
			&cli.IntFlag{Name: "max-moves", Usage: "Stop a game after this many moves (0 for no limit)"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Seed for the random strategy"},
			&cli.BoolFlag{Name: "verbose", Usage: "Log every move"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if cmd.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			s, err := strategy.New(cmd.String("strategy"), engine.NewRandomSource(uint64(cmd.Int("seed"))))
			if err != nil {
				return err
			}
			client := NewClient(cmd.String("url"))
			player := &Player{client: client, strategy: s, maxMoves: int(cmd.Int("max-moves"))}

			summaries, err := player.Run(ctx, cmd.String("config"), int(cmd.Int("games")))
			if err != nil {
				return err
			}

			top, err := client.Leaderboard(ctx, 5)
			if err != nil {
				log.Warn().Err(err).Msg("leaderboard")
			}
			printReport(os.Stdout, summaries, top)
			return nil
		},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("autoplay")
	}
}
