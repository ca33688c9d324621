package engine

import "time"

// addMoveToHistory appends a move to both the cumulative history and the
// current game segment, numbering it and stamping the time.
func (gs *GameState) addMoveToHistory(entry MoveHistoryEntry) {
	entry.Timestamp = time.Now().Unix()
	entry.MoveNumber = gs.TotalMoves + 1

	// Append to cumulative history (never cleared by a new game) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
