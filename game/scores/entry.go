package scores

import (
	"errors"
	"strings"

	"github.com/wricardo/mcp-training/tilemerge/game/service"
)

var ErrInvalidEntry = errors.New("invalid score entry")

func validateEntry(entry *service.ScoreEntry) error {
	if entry == nil {
		return ErrInvalidEntry
	}
	if strings.TrimSpace(entry.ID) == "" {
		return errors.Join(ErrInvalidEntry, errors.New("id is required"))
	}
	if entry.RecordedAt.IsZero() {
		return errors.Join(ErrInvalidEntry, errors.New("recorded_at is required"))
	}
	return nil
}

// ranksAbove orders by score, then by who got there first
func ranksAbove(a, b *service.ScoreEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.RecordedAt.Before(b.RecordedAt)
}
