package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"roulette/internal/models"
	"roulette/internal/storage"

	"github.com/google/logger"
)

// RouletteService is the command surface used by the presentation layer.
// It serializes every command, and writes the affected records to the
// store after each mutation.
type RouletteService struct {
	mu    sync.Mutex
	store storage.Store

	participants *ParticipantPool
	tasks        *TaskQueue
	settings     *SettingsStore
	history      *HistoryLog
	engine       *SelectionEngine
}

// Option configures a RouletteService.
type Option func(*options)

type options struct {
	rng Rand
	now func() time.Time
}

// WithRand sets the random source used for draws.
func WithRand(r Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithClock sets the clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Snapshot is a consistent view of the whole roulette state.
type Snapshot struct {
	Participants []models.Participant  `json:"participants"`
	Tasks        []models.Task         `json:"tasks"`
	Settings     models.Settings       `json:"settings"`
	History      []models.HistoryEntry `json:"history"`
	State        EngineState           `json:"state"`
	Outstanding  *models.DrawResult    `json:"outstanding,omitempty"`
}

// NewRouletteService loads each record from store independently. A record
// that is missing or cannot be decoded starts from its empty default.
func NewRouletteService(store storage.Store, opts ...Option) *RouletteService {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	var participants []models.Participant
	if !load(store, storage.KeyParticipants, &participants) {
		participants = nil
	}
	var tasks []models.Task
	if !load(store, storage.KeyTasks, &tasks) {
		tasks = nil
	}
	settings := models.DefaultSettings()
	if !load(store, storage.KeySettings, &settings) {
		settings = models.DefaultSettings()
	}
	var history []models.HistoryEntry
	if !load(store, storage.KeyHistory, &history) {
		history = nil
	}

	s := &RouletteService{
		store:        store,
		participants: NewParticipantPool(participants),
		tasks:        NewTaskQueue(tasks),
		settings:     NewSettingsStore(settings),
		history:      NewHistoryLog(history),
	}
	s.engine = NewSelectionEngine(s.participants, s.tasks, s.settings, s.history, o.rng)
	s.engine.now = o.now

	logger.Infof("Loaded roulette state: %d participants, %d tasks, %d history entries",
		s.participants.Count(), len(s.tasks.List()), s.history.Count())
	return s
}

// load reports whether v was filled from the store.
func load(store storage.Store, key string, v any) bool {
	err := store.Get(key, v)
	if err == nil {
		return true
	}
	var derr *storage.DeserializationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case errors.As(err, &derr):
		logger.Warningf("Discarding unreadable %q record: %v", key, derr)
	default:
		logger.Errorf("Failed to load %q record, starting empty: %v", key, err)
	}
	return false
}

// persist writes the named records. Callers hold s.mu.
func (s *RouletteService) persist(keys ...string) error {
	var errs []error
	for _, key := range keys {
		var v any
		switch key {
		case storage.KeyParticipants:
			v = s.participants.List()
		case storage.KeyTasks:
			v = s.tasks.List()
		case storage.KeySettings:
			v = s.settings.Get()
		case storage.KeyHistory:
			v = s.history.List()
		default:
			continue
		}
		if err := s.store.Set(key, v); err != nil {
			logger.Errorf("Failed to persist %q: %v", key, err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrPersistence, errors.Join(errs...))
	}
	return nil
}

// Snapshot returns the full current state.
func (s *RouletteService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Participants: s.participants.List(),
		Tasks:        s.tasks.List(),
		Settings:     s.settings.Get(),
		History:      s.history.List(),
		State:        s.engine.State(),
		Outstanding:  s.engine.LastResult(),
	}
}

// GetParticipants returns the participants in insertion order.
func (s *RouletteService) GetParticipants() []models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participants.List()
}

// AddParticipant adds a new participant.
func (s *RouletteService) AddParticipant(name string) (models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.participants.Add(name)
	if err != nil {
		return models.Participant{}, err
	}
	return p, s.persist(storage.KeyParticipants)
}

// AddParticipantsBulk adds one participant per line and reports how many
// lines were skipped as invalid.
func (s *RouletteService) AddParticipantsBulk(input string) ([]models.Participant, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, skipped := s.participants.AddBulk(input)
	if len(added) == 0 {
		return added, skipped, nil
	}
	return added, skipped, s.persist(storage.KeyParticipants)
}

// ImportParticipants adds one participant per name in a single batch,
// saved once. Invalid names are skipped and counted.
func (s *RouletteService) ImportParticipants(names []string) ([]models.Participant, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, skipped := s.participants.AddAll(names)
	if len(added) == 0 {
		return added, skipped, nil
	}
	return added, skipped, s.persist(storage.KeyParticipants)
}

// RemoveParticipant removes the participant with id. Absent ids succeed.
func (s *RouletteService) RemoveParticipant(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.participants.Remove(id) {
		return nil
	}
	return s.persist(storage.KeyParticipants)
}

// ClearParticipants removes every participant.
func (s *RouletteService) ClearParticipants() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants.Clear()
	logger.Infof("Cleared all participants")
	return s.persist(storage.KeyParticipants)
}

// GetTasks returns all tasks in insertion order.
func (s *RouletteService) GetTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.List()
}

// AddTask adds a new pending task.
func (s *RouletteService) AddTask(name, description string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.tasks.Add(name, description)
	if err != nil {
		return models.Task{}, err
	}
	return t, s.persist(storage.KeyTasks)
}

// AddTaskBulk adds one pending task per line.
func (s *RouletteService) AddTaskBulk(input string) ([]models.Task, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, skipped := s.tasks.AddBulk(input)
	if len(added) == 0 {
		return added, skipped, nil
	}
	return added, skipped, s.persist(storage.KeyTasks)
}

// ImportTasks adds one pending task per input in a single batch, saved once.
func (s *RouletteService) ImportTasks(inputs []TaskInput) ([]models.Task, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, skipped := s.tasks.AddAll(inputs)
	if len(added) == 0 {
		return added, skipped, nil
	}
	return added, skipped, s.persist(storage.KeyTasks)
}

// RemoveTask removes a pending task.
func (s *RouletteService) RemoveTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks.Get(id); !ok {
		return nil
	}
	if err := s.tasks.Remove(id); err != nil {
		return err
	}
	return s.persist(storage.KeyTasks)
}

// ClearTasks removes every task.
func (s *RouletteService) ClearTasks() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks.Clear()
	logger.Infof("Cleared all tasks")
	return s.persist(storage.KeyTasks)
}

// GetSettings returns the current settings.
func (s *RouletteService) GetSettings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Get()
}

func (s *RouletteService) SetMode(mode models.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.settings.SetMode(mode); err != nil {
		return err
	}
	return s.persist(storage.KeySettings)
}

func (s *RouletteService) SetAutoRemove(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.SetAutoRemove(v)
	return s.persist(storage.KeySettings)
}

func (s *RouletteService) SetShowModal(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.SetShowModal(v)
	return s.persist(storage.KeySettings)
}

func (s *RouletteService) SetDuration(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.settings.SetDuration(seconds); err != nil {
		return err
	}
	return s.persist(storage.KeySettings)
}

// UpdateSettings applies a partial update. The whole patch is validated
// first; on rejection nothing changes and nothing is saved.
func (s *RouletteService) UpdateSettings(patch SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.settings.Apply(patch); err != nil {
		return s.settings.Get(), err
	}
	return s.settings.Get(), s.persist(storage.KeySettings)
}

// Draw runs one draw. If the outcome was applied but could not be
// persisted, the result is returned together with an ErrPersistence error.
func (s *RouletteService) Draw() (*models.DrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.engine.Draw()
	if err != nil {
		return nil, err
	}
	logger.Infof("Drew %q (%s) in %s mode", result.Participant.Name, result.Participant.ID, result.Mode)

	keys := []string{storage.KeyHistory}
	if result.Task != nil {
		keys = append(keys, storage.KeyTasks)
	}
	if s.settings.Get().AutoRemoveParticipants {
		keys = append(keys, storage.KeyParticipants)
	}
	return result, s.persist(keys...)
}

// Resolve returns the engine to Idle after the result has been shown.
func (s *RouletteService) Resolve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Resolve()
}

// ResolveStale resolves an outstanding draw that has waited longer than
// maxAge, for clients that went away without calling Resolve.
func (s *RouletteService) ResolveStale(maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	age, ok := s.engine.OutstandingFor()
	if !ok || age <= maxAge {
		return false
	}
	s.engine.Resolve()
	logger.Infof("Resolved draw left outstanding for %s", age.Round(time.Second))
	return true
}

// GetHistory returns the draw history, newest first.
func (s *RouletteService) GetHistory() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.List()
}

// ClearHistory removes every history entry.
func (s *RouletteService) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
	logger.Infof("Cleared draw history")
	return s.persist(storage.KeyHistory)
}
