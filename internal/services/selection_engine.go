package services

import (
	"fmt"
	"math/rand/v2"
	"time"

	"roulette/internal/models"
)

// EngineState is the lifecycle state of the selection engine.
type EngineState string

const (
	StateIdle     EngineState = "idle"
	StateDrawing  EngineState = "drawing"
	StateResolved EngineState = "resolved"
)

// Rand is the random source used to pick winners. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// SelectionEngine draws winners from the pool and, in task mode, assigns a
// pending task. Only one draw may be outstanding: after a draw the engine
// stays Resolved until Resolve is called.
type SelectionEngine struct {
	pool     *ParticipantPool
	tasks    *TaskQueue
	settings *SettingsStore
	history  *HistoryLog

	rng Rand
	now func() time.Time

	state      EngineState
	last       *models.DrawResult
	resolvedAt time.Time
}

// NewSelectionEngine wires an engine to its stores. A nil rng uses the
// package-level generator of math/rand/v2.
func NewSelectionEngine(pool *ParticipantPool, tasks *TaskQueue, settings *SettingsStore, history *HistoryLog, rng Rand) *SelectionEngine {
	if rng == nil {
		rng = globalRand{}
	}
	return &SelectionEngine{
		pool:     pool,
		tasks:    tasks,
		settings: settings,
		history:  history,
		rng:      rng,
		now:      time.Now,
		state:    StateIdle,
	}
}

// State returns the current engine state.
func (e *SelectionEngine) State() EngineState {
	return e.state
}

// LastResult returns the outstanding result while Resolved, nil otherwise.
func (e *SelectionEngine) LastResult() *models.DrawResult {
	if e.state != StateResolved || e.last == nil {
		return nil
	}
	r := *e.last
	return &r
}

// Draw picks a winner. Failures leave every store unchanged.
func (e *SelectionEngine) Draw() (*models.DrawResult, error) {
	if e.state != StateIdle {
		return nil, ErrAlreadyInProgress
	}

	settings := e.settings.Get()
	participants := e.pool.List()
	if len(participants) == 0 {
		return nil, ErrEmptyPool
	}
	var pending []models.Task
	if settings.RouletteMode == models.ModeTasks {
		pending = e.tasks.Pending()
		if len(pending) == 0 {
			return nil, ErrNoTasksRemaining
		}
	}

	e.state = StateDrawing

	winner := participants[e.rng.IntN(len(participants))]
	result := &models.DrawResult{
		Mode:        settings.RouletteMode,
		Participant: models.DrawnParticipant{ID: winner.ID, Name: winner.Name},
	}
	entry := models.HistoryEntry{
		Timestamp:             e.now().UTC(),
		Mode:                  settings.RouletteMode,
		WinnerParticipantID:   winner.ID,
		WinnerParticipantName: winner.Name,
	}

	if settings.RouletteMode == models.ModeTasks {
		task := pending[e.rng.IntN(len(pending))]
		// The task was just read from the pending set, so this cannot fail
		// unless the queue is corrupted.
		if err := e.tasks.MarkCompleted(task.ID); err != nil {
			e.state = StateIdle
			return nil, fmt.Errorf("complete drawn task: %w", err)
		}
		result.Task = &models.DrawnTask{ID: task.ID, Name: task.Name, Description: task.Description}
		entry.TaskID = task.ID
		entry.TaskName = task.Name
		entry.TaskDescription = task.Description
	}

	if settings.AutoRemoveParticipants {
		e.pool.Remove(winner.ID)
	}
	e.history.Append(entry)

	e.state = StateResolved
	e.last = result
	e.resolvedAt = e.now()
	out := *result
	return &out, nil
}

// OutstandingFor reports how long the current result has been waiting for
// Resolve. It returns false when no draw is outstanding.
func (e *SelectionEngine) OutstandingFor() (time.Duration, bool) {
	if e.state != StateResolved {
		return 0, false
	}
	return e.now().Sub(e.resolvedAt), true
}

// Resolve ends the display phase of the outstanding draw. It is a no-op
// when no draw is outstanding.
func (e *SelectionEngine) Resolve() {
	if e.state != StateResolved {
		return
	}
	e.state = StateIdle
	e.last = nil
}
