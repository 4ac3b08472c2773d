package services

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"roulette/internal/models"
	"roulette/internal/storage"
)

// failingStore wraps a MemoryStore and fails every Set once armed.
type failingStore struct {
	*storage.MemoryStore
	fail bool
}

func (f *failingStore) Set(key string, v any) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(key, v)
}

func TestRouletteService_PersistAndReload(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	service := NewRouletteService(store, WithRand(&seqRand{values: []int{0}}), WithClock(clock))

	alice, err := service.AddParticipant("Alice")
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if _, _, err := service.AddParticipantsBulk("Bob\nCarol"); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if _, err := service.AddTask("Sweep", "kitchen"); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if _, _, err := service.AddTaskBulk("Dust\nMop"); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if err := service.SetMode(models.ModeTasks); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if err := service.SetAutoRemove(true); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if err := service.SetDuration(3); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}

	result, err := service.Draw()
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if result.Participant.ID != alice.ID {
		t.Errorf("Expected Alice to win, got %+v", result.Participant)
	}
	service.Resolve()

	before := service.Snapshot()
	reloaded := NewRouletteService(store)
	after := reloaded.Snapshot()

	if !reflect.DeepEqual(before.Participants, after.Participants) {
		t.Errorf("participants mismatch:\n got  %+v\n want %+v", after.Participants, before.Participants)
	}
	if !reflect.DeepEqual(before.Tasks, after.Tasks) {
		t.Errorf("tasks mismatch:\n got  %+v\n want %+v", after.Tasks, before.Tasks)
	}
	if before.Settings != after.Settings {
		t.Errorf("settings mismatch: got %+v, want %+v", after.Settings, before.Settings)
	}
	if !reflect.DeepEqual(before.History, after.History) {
		t.Errorf("history mismatch:\n got  %+v\n want %+v", after.History, before.History)
	}
	if len(after.Participants) != 2 {
		t.Errorf("Expected auto-removed winner to stay removed, got %d participants", len(after.Participants))
	}
	if after.State != StateIdle {
		t.Errorf("Expected reloaded engine to be Idle, got %s", after.State)
	}
}

func TestRouletteService_DefaultsWhenEmpty(t *testing.T) {
	service := NewRouletteService(storage.NewMemoryStore())
	if got := service.GetSettings(); got != models.DefaultSettings() {
		t.Errorf("Expected default settings, got %+v", got)
	}
	if len(service.GetParticipants()) != 0 || len(service.GetTasks()) != 0 || len(service.GetHistory()) != 0 {
		t.Error("Expected empty collections")
	}
}

func TestRouletteService_CorruptedRecordIsIsolated(t *testing.T) {
	store := storage.NewMemoryStore()
	seeded := NewRouletteService(store)
	seeded.AddParticipant("Alice")
	seeded.SetShowModal(false)
	store.SetRaw(storage.KeyTasks, []byte("{broken"))

	service := NewRouletteService(store)
	if len(service.GetTasks()) != 0 {
		t.Errorf("Expected corrupted tasks to start empty, got %+v", service.GetTasks())
	}
	if got := service.GetParticipants(); len(got) != 1 || got[0].Name != "Alice" {
		t.Errorf("Expected participants to load independently, got %+v", got)
	}
	if service.GetSettings().ShowWinnerModal {
		t.Error("Expected settings to load independently")
	}
}

func TestRouletteService_PersistenceFailure(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	service := NewRouletteService(store)
	if _, err := service.AddParticipant("Alice"); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}

	store.fail = true
	if _, err := service.AddParticipant("Bob"); !errors.Is(err, ErrPersistence) {
		t.Errorf("Expected ErrPersistence, got %v", err)
	}

	result, err := service.Draw()
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("Expected ErrPersistence from draw, got %v", err)
	}
	if result == nil {
		t.Fatal("Expected the applied result to be returned alongside the error")
	}
	if len(service.GetHistory()) != 1 {
		t.Errorf("Expected in-memory history to hold the draw, got %d", len(service.GetHistory()))
	}
}

func TestRouletteService_ValidationLeavesStateUnchanged(t *testing.T) {
	service := NewRouletteService(storage.NewMemoryStore())
	if err := service.SetDuration(0); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
	if got := service.GetSettings().WinnerDisplayDurationSeconds; got != 5 {
		t.Errorf("Expected duration 5 to be retained, got %v", got)
	}
	if _, err := service.AddParticipant("  "); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
	if err := service.RemoveParticipant("missing"); err != nil {
		t.Errorf("Expected removing an absent id to succeed, got %v", err)
	}
}

func TestRouletteService_RemoveCompletedTask(t *testing.T) {
	service := NewRouletteService(storage.NewMemoryStore())
	service.AddParticipant("Alice")
	task, _ := service.AddTask("Sweep", "")
	service.SetMode(models.ModeTasks)

	if _, err := service.Draw(); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if err := service.RemoveTask(task.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}

	if err := service.ClearTasks(); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if err := service.ClearHistory(); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if len(service.GetTasks()) != 0 || len(service.GetHistory()) != 0 {
		t.Error("Expected tasks and history to be cleared")
	}
}

func TestRouletteService_ResolveStale(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	service := NewRouletteService(storage.NewMemoryStore(), WithClock(func() time.Time { return now }))
	service.AddParticipant("Alice")

	if service.ResolveStale(time.Minute) {
		t.Error("Expected nothing to resolve while Idle")
	}
	if _, err := service.Draw(); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if service.ResolveStale(time.Minute) {
		t.Error("Expected a fresh draw to stay outstanding")
	}

	now = now.Add(2 * time.Minute)
	if !service.ResolveStale(time.Minute) {
		t.Fatal("Expected the stale draw to be resolved")
	}
	if _, err := service.Draw(); err != nil {
		t.Errorf("Expected draw after stale resolve to succeed, got %v", err)
	}
}

func TestRouletteService_UpdateSettingsRejectedIsNotSaved(t *testing.T) {
	store := storage.NewMemoryStore()
	service := NewRouletteService(store)
	autoRemove := true
	badDuration := 0.0

	if _, err := service.UpdateSettings(SettingsPatch{AutoRemoveParticipants: &autoRemove, WinnerDisplayDurationSeconds: &badDuration}); !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
	var saved models.Settings
	if err := store.Get(storage.KeySettings, &saved); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected nothing saved for a rejected update, got %+v (%v)", saved, err)
	}

	settings, err := service.UpdateSettings(SettingsPatch{AutoRemoveParticipants: &autoRemove})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if err := store.Get(storage.KeySettings, &saved); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if saved != settings || !saved.AutoRemoveParticipants {
		t.Errorf("Expected saved settings %+v, got %+v", settings, saved)
	}
}

func TestRouletteService_ImportIsOneBatch(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	service := NewRouletteService(store)

	tasks, skipped, err := service.ImportTasks([]TaskInput{{Name: "Sweep", Description: "kitchen"}, {Name: " "}, {Name: "Dust"}})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if len(tasks) != 2 || skipped != 1 {
		t.Errorf("Expected 2 added and 1 skipped, got %d and %d", len(tasks), skipped)
	}

	participants, skipped, err := service.ImportParticipants([]string{"Alice", "Bob\nSmith"})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if len(participants) != 2 || skipped != 0 {
		t.Errorf("Expected 2 added and 0 skipped, got %d and %d", len(participants), skipped)
	}

	store.fail = true
	if _, _, err := service.ImportTasks([]TaskInput{{Name: "Mop"}, {Name: "Vacuum"}}); !errors.Is(err, ErrPersistence) {
		t.Errorf("Expected a single ErrPersistence for the batch, got %v", err)
	}
}
