// Command validate checks the game configuration JSON files in a directory.
// It checks:
//   - JSON structure, with unknown fields rejected
//   - Required fields, grid size bounds and message format verbs
//   - That the file name is usable as a config ID
//   - That a game starts on the configured board with two tiles
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	if id := strings.TrimSuffix(result.File, ".json"); !validConfigID(id) {
		result.fail("Config ID %q may only use a-z, 0-9, - and _", id)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}
	result.info("Grid: %dx%d", config.GridSize, config.GridSize)
	if config.Seed != nil {
		result.info("Seed: fixed at %d", *config.Seed)
	} else {
		result.info("Seed: random")
	}

	validateStart(&config, &result)
	return result
}

// validateStart plays the opening of a game on the configured board
func validateStart(config *engine.GameConfig, result *ValidationResult) {
	e, err := engine.NewEngine(config, engine.NewRandomSource(1))
	if err != nil {
		result.fail("Engine rejected config: %v", err)
		return
	}

	state := e.GetState()
	cells := config.GridSize * config.GridSize
	if tiles := cells - state.EmptyCells; tiles != 2 {
		result.fail("New game starts with %d tiles, want 2", tiles)
		return
	}
	if state.GameOver {
		result.fail("New game is over before the first move")
		return
	}
	if len(e.GetPossibleMoves()) == 0 {
		result.fail("New game has no possible moves")
		return
	}
	result.info("Start: 2 tiles, %d possible moves", len(e.GetPossibleMoves()))
}

func validConfigID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

// validateDir validates every *.json file in dir, printing a concise report.
// It returns false if any file is invalid.
func validateDir(dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no config files in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "Validate game configuration files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "Directory containing game configurations"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(cmd.String("dir"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if !ok {
				return cli.Exit("❌ Some configurations have errors", 1)
			}
			fmt.Println("✅ All configurations are valid!")
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
