// Command analyze plays many games in process and prints human-readable
// statistics: score spread, move counts and how often each best tile was
// reached. It is useful for comparing board sizes and move strategies.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/strategy"
)

// safety net for a strategy that never ends a game
const maxMovesPerGame = 100000

// GameResult is the outcome of one simulated game
type GameResult struct {
	Score    uint64
	BestTile uint32
	Moves    int
}

// Summary aggregates simulated games
type Summary struct {
	Strategy    string
	GridSize    int
	Games       int
	MeanScore   float64
	MedianScore uint64
	MinScore    uint64
	MaxScore    uint64
	MeanMoves   float64
	BestTiles   map[uint32]int // best tile -> number of games
}

// Simulation describes a batch of games
type Simulation struct {
	Config   *engine.GameConfig
	Strategy string
	Games    int
	Seed     uint64
	Workers  int
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Simulate games and print statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations"},
			&cli.StringFlag{Name: "config", Value: config.DefaultConfigName, Usage: "Config ID to simulate"},
			&cli.StringFlag{Name: "strategy", Value: "all", Usage: "random, corner, greedy or all"},
			&cli.IntFlag{Name: "games", Value: 200, Usage: "Games per strategy"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Seed of the first game; game i uses seed+i"},
			&cli.IntFlag{Name: "workers", Value: 4, Usage: "Games simulated in parallel"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return err
			}
			gameConfig, err := manager.LoadConfig(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config %s: %w", cmd.String("config"), err)
			}

			names := strategy.Names
			if s := cmd.String("strategy"); s != "all" {
				names = []string{s}
			}

			fmt.Printf("=== %s (%dx%d) ===\n", gameConfig.Name, gameConfig.GridSize, gameConfig.GridSize)
			for _, name := range names {
				summary, err := Simulation{
					Config:   gameConfig,
					Strategy: name,
					Games:    int(cmd.Int("games")),
					Seed:     uint64(cmd.Int("seed")),
					Workers:  int(cmd.Int("workers")),
				}.Run(ctx)
				if err != nil {
					return err
				}
				printSummary(os.Stdout, summary)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("analyze")
	}
}

// Run plays every game of the simulation. Results depend only on the seed,
// not on the number of workers.
func (s Simulation) Run(ctx context.Context) (*Summary, error) {
	if _, err := strategy.New(s.Strategy, nil); err != nil {
		return nil, err
	}
	if s.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", s.Games)
	}
	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]GameResult, s.Games)
	errs := make([]error, s.Games)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = playGame(s.Config, s.Strategy, s.Seed+uint64(i))
			}
		}()
	}

feed:
	for i := 0; i < s.Games; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return summarize(s.Strategy, s.Config.GridSize, results), nil
}

// playGame plays one game to the end with its own engine and seed
func playGame(gameConfig *engine.GameConfig, strategyName string, seed uint64) (GameResult, error) {
	rng := engine.NewRandomSource(seed)
	e, err := engine.NewEngine(gameConfig, rng)
	if err != nil {
		return GameResult{}, err
	}
	s, err := strategy.New(strategyName, engine.NewRandomSource(^seed))
	if err != nil {
		return GameResult{}, err
	}

	moves := 0
	for !e.IsGameOver() && moves < maxMovesPerGame {
		dir, ok := s.NextMove(e.Grid())
		if !ok {
			break
		}
		if _, err := e.Move(dir); err != nil {
			return GameResult{}, err
		}
		moves++
	}

	return GameResult{Score: e.Score(), BestTile: e.BestTile(), Moves: moves}, nil
}

func summarize(strategyName string, gridSize int, results []GameResult) *Summary {
	summary := &Summary{
		Strategy:  strategyName,
		GridSize:  gridSize,
		Games:     len(results),
		BestTiles: make(map[uint32]int),
	}
	if len(results) == 0 {
		return summary
	}

	scores := make([]uint64, len(results))
	var totalScore uint64
	totalMoves := 0
	for i, r := range results {
		scores[i] = r.Score
		totalScore += r.Score
		totalMoves += r.Moves
		summary.BestTiles[r.BestTile]++
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i] < scores[j] })

	summary.MinScore = scores[0]
	summary.MaxScore = scores[len(scores)-1]
	summary.MedianScore = scores[len(scores)/2]
	summary.MeanScore = float64(totalScore) / float64(len(results))
	summary.MeanMoves = float64(totalMoves) / float64(len(results))
	return summary
}

// ReachedRate is the fraction of games whose best tile was at least tile
func (s *Summary) ReachedRate(tile uint32) float64 {
	if s.Games == 0 {
		return 0
	}
	reached := 0
	for best, n := range s.BestTiles {
		if best >= tile {
			reached += n
		}
	}
	return float64(reached) / float64(s.Games)
}

func printSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "\n--- %s: %d games ---\n", s.Strategy, s.Games)
	fmt.Fprintf(w, "Score:  mean %.1f, median %d, min %d, max %d\n", s.MeanScore, s.MedianScore, s.MinScore, s.MaxScore)
	fmt.Fprintf(w, "Moves:  mean %.1f\n", s.MeanMoves)

	tiles := make([]uint32, 0, len(s.BestTiles))
	for tile := range s.BestTiles {
		tiles = append(tiles, tile)
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i] > tiles[j] })

	fmt.Fprintln(w, "Best tile reached:")
	for _, tile := range tiles {
		rate := s.ReachedRate(tile)
		fmt.Fprintf(w, "  %5d  %5.1f%%  %s\n", tile, rate*100, strings.Repeat("#", int(rate*40)))
	}
}
