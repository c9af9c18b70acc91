// Package editor drives one plan the way the floor-plan page does: every
// applied change is recorded for undo and written to the local copy.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/geometry"
	"github.com/kirinyoku/seatplan/internal/history"
	"github.com/kirinyoku/seatplan/internal/planner"
	"github.com/kirinyoku/seatplan/internal/snapshot"
)

// AutoSaveInterval is how often RunAutoSave writes the local copy.
const AutoSaveInterval = 10 * time.Second

// Persistence stores the plan locally and shares it remotely.
type Persistence interface {
	SaveLocal(ctx context.Context, s *snapshot.Snapshot) error
	LoadLocal(ctx context.Context) (*snapshot.Snapshot, error)
	SaveRemote(ctx context.Context, s *snapshot.Snapshot) (id, url string, err error)
	LoadRemoteIfNeeded(ctx context.Context) (*snapshot.Snapshot, error)
}

// Source tells where Open found the plan.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceLocal   Source = "local"
	SourceDefault Source = "default"
)

type Session struct {
	mu      sync.Mutex
	engine  *planner.Engine
	history *history.History
	store   Persistence
	logger  *slog.Logger
	source  Source
	planID  string
}

// Open loads the shared plan if one is configured, otherwise the local
// copy, otherwise a default layout. Load failures on the way are logged and
// skipped. History starts with the opened state.
func Open(ctx context.Context, engine *planner.Engine, store Persistence, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		engine:  engine,
		history: history.New(history.DefaultLimit),
		store:   store,
		logger:  logger,
	}

	s.source = SourceDefault
	if snap, err := store.LoadRemoteIfNeeded(ctx); err != nil {
		logger.Warn("remote plan unavailable", slog.String("err", err.Error()))
	} else if snap != nil && s.load(snap) {
		s.source = SourceRemote
	}

	if s.source == SourceDefault {
		if snap, err := store.LoadLocal(ctx); err != nil {
			logger.Warn("local plan unavailable", slog.String("err", err.Error()))
		} else if snap != nil && s.load(snap) {
			s.source = SourceLocal
		}
	}

	if s.source == SourceDefault {
		engine.CreateDefaultLayout(planner.DefaultTableCount, domain.ModeLess)
	}

	s.history.Reset()
	s.history.Push(engine.Snapshot())
	return s
}

func (s *Session) load(snap *snapshot.Snapshot) bool {
	if err := s.engine.Load(snap); err != nil {
		s.logger.Warn("discarding plan", slog.String("err", err.Error()))
		return false
	}
	return true
}

// Source reports where the opened plan came from.
func (s *Session) Source() Source { return s.source }

// PlanID is the id of the last shared version, if any.
func (s *Session) PlanID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planID
}

// apply runs fn on the engine. When fn changes the plan the pre-state goes
// onto the undo stack and the result is saved locally; a failed or no-op
// fn records nothing.
func (s *Session) apply(ctx context.Context, op string, fn func(e *planner.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.engine.Snapshot()
	if err := fn(s.engine); err != nil {
		return err
	}
	if reflect.DeepEqual(before, s.engine.Snapshot()) {
		return nil
	}
	s.history.Push(before)
	return s.saveLocked(ctx, op)
}

func (s *Session) saveLocked(ctx context.Context, op string) error {
	if err := s.store.SaveLocal(ctx, s.engine.Snapshot()); err != nil {
		return fmt.Errorf("%s: save local: %w", op, err)
	}
	return nil
}

func (s *Session) SetTableCount(ctx context.Context, n int, confirm bool) error {
	return s.apply(ctx, "editor.Session.SetTableCount", func(e *planner.Engine) error {
		return e.SetTableCount(n, confirm)
	})
}

func (s *Session) SetMode(ctx context.Context, mode domain.Mode) error {
	return s.apply(ctx, "editor.Session.SetMode", func(e *planner.Engine) error {
		e.SetMode(mode)
		return nil
	})
}

func (s *Session) AddTable(ctx context.Context) (domain.Table, error) {
	var t domain.Table
	err := s.apply(ctx, "editor.Session.AddTable", func(e *planner.Engine) (err error) {
		t, err = e.AddTable()
		return err
	})
	return t, err
}

func (s *Session) DeleteTable(ctx context.Context, id string, confirm bool) error {
	return s.apply(ctx, "editor.Session.DeleteTable", func(e *planner.Engine) error {
		return e.DeleteTable(id, confirm)
	})
}

func (s *Session) UpdateTable(ctx context.Context, id string, u planner.TableUpdate, confirm bool) (domain.Table, error) {
	var t domain.Table
	err := s.apply(ctx, "editor.Session.UpdateTable", func(e *planner.Engine) (err error) {
		t, err = e.UpdateTable(id, u, confirm)
		return err
	})
	return t, err
}

func (s *Session) AddGuest(ctx context.Context, name string) (domain.Guest, error) {
	var g domain.Guest
	err := s.apply(ctx, "editor.Session.AddGuest", func(e *planner.Engine) (err error) {
		g, err = e.AddGuest(name)
		return err
	})
	return g, err
}

func (s *Session) RemoveGuest(ctx context.Context, guestID string) error {
	return s.apply(ctx, "editor.Session.RemoveGuest", func(e *planner.Engine) error {
		return e.RemoveGuest(guestID)
	})
}

func (s *Session) RenameGuest(ctx context.Context, guestID, name string) error {
	return s.apply(ctx, "editor.Session.RenameGuest", func(e *planner.Engine) error {
		return e.RenameGuest(guestID, name)
	})
}

func (s *Session) AssignGuest(ctx context.Context, guestID, chairID string) error {
	return s.apply(ctx, "editor.Session.AssignGuest", func(e *planner.Engine) error {
		return e.AssignGuest(guestID, chairID)
	})
}

// AssignGuestByName is the chair form: find or create the named guest and
// seat them, or clear the chair when name is empty.
func (s *Session) AssignGuestByName(ctx context.Context, name, chairID string) (domain.Guest, error) {
	var g domain.Guest
	err := s.apply(ctx, "editor.Session.AssignGuestByName", func(e *planner.Engine) (err error) {
		g, err = e.AssignGuestByName(name, chairID)
		return err
	})
	return g, err
}

func (s *Session) ClearChair(ctx context.Context, chairID string) error {
	return s.apply(ctx, "editor.Session.ClearChair", func(e *planner.Engine) error {
		return e.ClearChair(chairID)
	})
}

// Reset replaces the plan with a default layout of the current size and
// mode. Guests stay on the list, unseated.
func (s *Session) Reset(ctx context.Context) error {
	return s.apply(ctx, "editor.Session.Reset", func(e *planner.Engine) error {
		e.CreateDefaultLayout(len(e.Tables()), e.Mode())
		return nil
	})
}

// Load replaces the plan with snap, e.g. a fetched shared plan.
func (s *Session) Load(ctx context.Context, snap *snapshot.Snapshot) error {
	return s.apply(ctx, "editor.Session.Load", func(e *planner.Engine) error {
		return e.Load(snap)
	})
}

// Undo steps back one change. It reports false when there is nothing to undo.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	return s.step(ctx, "editor.Session.Undo", s.history.Undo)
}

// Redo reapplies the last undone change.
func (s *Session) Redo(ctx context.Context) (bool, error) {
	return s.step(ctx, "editor.Session.Redo", s.history.Redo)
}

func (s *Session) step(ctx context.Context, op string, move func(*snapshot.Snapshot) (*snapshot.Snapshot, bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.Dragging() {
		return false, planner.ErrAlreadyDragging
	}
	target, ok := move(s.engine.Snapshot())
	if !ok {
		return false, nil
	}
	if err := s.engine.Load(target); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, s.saveLocked(ctx, op)
}

func (s *Session) CanUndo() bool { return s.history.CanUndo() }

func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Share saves the plan on the server and returns its id and link. A failed
// share changes nothing.
func (s *Session) Share(ctx context.Context) (id, url string, err error) {
	const op = "editor.Session.Share"

	snap := s.Snapshot()
	id, url, err = s.store.SaveRemote(ctx, snap)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.planID = id
	s.mu.Unlock()
	return id, url, nil
}

// RunAutoSave writes the local copy every interval until ctx is done.
// Failures are logged; the plan itself is only read.
func (s *Session) RunAutoSave(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = AutoSaveInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.store.SaveLocal(ctx, s.Snapshot()); err != nil {
				s.logger.Warn("auto-save failed", slog.String("err", err.Error()))
			}
		}
	}
}

func (s *Session) BeginDrag(tableIDs []string, pointer geometry.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.BeginDrag(tableIDs, pointer)
}

func (s *Session) UpdateDrag(pointer geometry.Point) (planner.Validation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.UpdateDrag(pointer)
}

// CommitDrag finishes a drag. A drop that moved tables is recorded like any
// other change; a rejected drop is rolled back by the engine.
func (s *Session) CommitDrag(ctx context.Context) error {
	const op = "editor.Session.CommitDrag"

	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.engine.CommitDrag()
	if err != nil {
		return err
	}
	if before == nil {
		return nil
	}
	s.history.Push(before)
	return s.saveLocked(ctx, op)
}

func (s *Session) CancelDrag() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.CancelDrag()
}

func (s *Session) Snapshot() *snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

func (s *Session) Summary() domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Summary()
}

func (s *Session) Tables() []domain.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Tables()
}

func (s *Session) Guests() []domain.Guest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Guests()
}

func (s *Session) Mode() domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Mode()
}
