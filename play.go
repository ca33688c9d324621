package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/render"
	"github.com/wricardo/mcp-training/tilemerge/game/service"
)

const playHelp = "w/a/s/d (or up/left/down/right) to move, n for a new game, q to quit"

// runPlay runs a line based terminal game against the game service. The
// session is deleted on exit so an unfinished game reaches the leaderboard.
func runPlay(ctx context.Context, svc service.GameService, configID string, in io.Reader, out io.Writer) error {
	info, err := svc.CreateSession(ctx, configID)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.DeleteSession(context.WithoutCancel(ctx), info.ID); err != nil && !errors.Is(err, service.ErrSessionNotFound) {
			fmt.Fprintf(out, "failed to close session: %v\n", err)
		}
	}()

	fmt.Fprintf(out, "%s (%s)\n%s\n\n", info.GameState.Message, info.ConfigName, playHelp)
	fmt.Fprint(out, render.Text(info.GameState))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		switch input := strings.ToLower(strings.TrimSpace(scanner.Text())); input {
		case "":
			continue
		case "q", "quit", "exit":
			fmt.Fprintln(out, "Bye!")
			return nil
		case "n", "new":
			state, err := svc.NewGame(ctx, info.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", state.Message)
			fmt.Fprint(out, render.Text(state))
		case "h", "help", "?":
			fmt.Fprintln(out, playHelp)
		default:
			result, err := svc.Move(ctx, info.ID, input, false)
			if errors.Is(err, engine.ErrInvalidDirection) {
				fmt.Fprintln(out, playHelp)
				continue
			}
			if err != nil {
				return err
			}

			fmt.Fprint(out, render.Text(result.GameState))
			fmt.Fprintln(out, result.GameState.Message)
			if result.GameState.GameOver {
				fmt.Fprintln(out, "n for a new game, q to quit")
			}
		}
	}
}
