package gateway

import (
	"context"
	"log/slog"
)

// SessionLister is the read side of the gateway API used by Directory.
type SessionLister interface {
	ListSessions(ctx context.Context) ([]Session, error)
}

// Board receives the full session list after every reload.
type Board interface {
	ReplaceSessions(sessions []Session)
}

// Directory reloads the session list on demand and hands it to a Board.
// It satisfies livesync.SessionDirectory.
type Directory struct {
	lister SessionLister
	board  Board
	logger *slog.Logger
}

// NewDirectory creates a Directory. logger may be nil.
func NewDirectory(lister SessionLister, board Board, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{lister: lister, board: board, logger: logger}
}

// Reload fetches the session list and replaces the board contents.
// On failure the board keeps its previous contents.
func (d *Directory) Reload(ctx context.Context) {
	sessions, err := d.lister.ListSessions(ctx)
	if err != nil {
		d.logger.Warn("failed to reload sessions", "error", err)
		return
	}
	d.board.ReplaceSessions(sessions)
	d.logger.Debug("sessions reloaded", "count", len(sessions), "counts", CountByStatus(sessions))
}

// CountByStatus aggregates sessions per status value.
func CountByStatus(sessions []Session) map[string]int {
	counts := make(map[string]int, len(sessions))
	for _, s := range sessions {
		counts[s.Status]++
	}
	return counts
}
