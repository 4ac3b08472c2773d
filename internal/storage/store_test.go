package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"roulette/internal/models"
)

type record struct {
	Participants []models.Participant
	Settings     models.Settings
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSqlite(filepath.Join(t.TempDir(), "roulette.db"))
	if err != nil {
		t.Fatalf("OpenSqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	want := record{
		Participants: []models.Participant{
			{ID: "a", Name: "João Silva", Color: models.Palette[0], CreatedAt: created},
			{ID: "b", Name: "João Silva", Color: models.Palette[1], CreatedAt: created},
		},
		Settings: models.DefaultSettings(),
	}

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(KeyParticipants, want); err != nil {
				t.Fatalf("Set: %v", err)
			}
			var got record
			if err := store.Get(KeyParticipants, &got); err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
			}

			// Overwrite replaces the previous value.
			want.Settings.AutoRemoveParticipants = true
			if err := store.Set(KeyParticipants, want); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got = record{}
			if err := store.Get(KeyParticipants, &got); err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !got.Settings.AutoRemoveParticipants {
				t.Error("expected overwritten value")
			}
			want.Settings.AutoRemoveParticipants = false
		})
	}
}

func TestStore_MissingKey(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			var s models.Settings
			if err := store.Get(KeySettings, &s); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_CorruptedValue(t *testing.T) {
	mem := NewMemoryStore()
	mem.SetRaw(KeyTasks, []byte("{not json"))

	sq, err := OpenSqlite(filepath.Join(t.TempDir(), "corrupt.db"))
	if err != nil {
		t.Fatalf("OpenSqlite: %v", err)
	}
	defer func() { _ = sq.Close() }()
	if err := sq.setRaw(KeyTasks, "[{\"id\":"); err != nil {
		t.Fatalf("setRaw: %v", err)
	}

	for name, store := range map[string]Store{"memory": mem, "sqlite": sq} {
		t.Run(name, func(t *testing.T) {
			var tasks []models.Task
			err := store.Get(KeyTasks, &tasks)
			var derr *DeserializationError
			if !errors.As(err, &derr) {
				t.Fatalf("expected DeserializationError, got %v", err)
			}
			if derr.Key != KeyTasks {
				t.Errorf("key = %q, want %q", derr.Key, KeyTasks)
			}
		})
	}
}

func TestSqliteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	sq, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite: %v", err)
	}
	settings := models.Settings{RouletteMode: models.ModeTasks, WinnerDisplayDurationSeconds: 3}
	if err := sq.Set(KeySettings, settings); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = sq.Close()

	sq, err = OpenSqlite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = sq.Close() }()

	var got models.Settings
	if err := sq.Get(KeySettings, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != settings {
		t.Errorf("got %+v, want %+v", got, settings)
	}
}
