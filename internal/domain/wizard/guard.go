// Package wizard tracks provisional parent resources created by
// multi-step flows and rolls back orphans when the flow is abandoned.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/casedeck/internal/repository"
)

// ErrAlreadyArmed is returned when Arm is called while a wizard session
// is already being tracked.
var ErrAlreadyArmed = errors.New("wizard guard already armed")

// Guard tracks one wizard session at a time. A parent container created
// early in the flow is deleted on close unless a child item was attached
// first. Not safe for concurrent use; one guard per view.
type Guard struct {
	api      repository.EntityAPI
	notifier repository.Notifier
	logger   *slog.Logger

	teamID    string
	parentID  string
	armed     bool
	committed bool
}

func NewGuard(api repository.EntityAPI, notifier repository.Notifier, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{api: api, notifier: notifier, logger: logger}
}

// Arm starts tracking a provisional parent. It may be called once per
// wizard open; re-arming without a close is a programming error.
func (g *Guard) Arm(teamID, parentID string) error {
	if g.armed {
		return fmt.Errorf("%w: parent %s", ErrAlreadyArmed, g.parentID)
	}
	g.teamID = teamID
	g.parentID = parentID
	g.armed = true
	g.committed = false
	return nil
}

// MarkCommitted records that at least one child item was attached to the
// provisional parent. After this the parent survives close.
func (g *Guard) MarkCommitted() {
	if !g.armed {
		return
	}
	g.committed = true
}

// Armed reports whether a wizard session is currently tracked.
func (g *Guard) Armed() bool {
	return g.armed
}

// OnClose runs when the hosting dialog closes. An armed, uncommitted
// parent is deleted and an informational notice raised; a committed or
// unarmed close is a no-op. The guard disarms either way.
func (g *Guard) OnClose(ctx context.Context) error {
	if !g.armed {
		return nil
	}
	teamID, parentID, committed := g.teamID, g.parentID, g.committed
	g.disarm()

	if committed {
		return nil
	}

	if err := g.api.DeleteContainer(ctx, teamID, parentID); err != nil {
		g.logger.Warn("orphan rollback failed", "team", teamID,
			"container", parentID, "error", err)
		return fmt.Errorf("deleting provisional container %s: %w", parentID, err)
	}

	g.logger.Info("removed abandoned container", "team", teamID, "container", parentID)
	if g.notifier != nil {
		g.notifier.Notify("The empty test case set was removed.")
	}
	return nil
}

func (g *Guard) disarm() {
	g.teamID = ""
	g.parentID = ""
	g.armed = false
	g.committed = false
}
