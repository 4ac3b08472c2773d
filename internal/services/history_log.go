package services

import (
	"slices"

	"roulette/internal/models"
)

// HistoryLog records resolved draws. Entries are kept oldest first
// internally and returned newest first.
type HistoryLog struct {
	entries []models.HistoryEntry
}

// NewHistoryLog creates a log from entries ordered newest first.
func NewHistoryLog(seed []models.HistoryEntry) *HistoryLog {
	entries := slices.Clone(seed)
	slices.Reverse(entries)
	if entries == nil {
		entries = make([]models.HistoryEntry, 0)
	}
	return &HistoryLog{entries: entries}
}

// Append records entry as the newest.
func (h *HistoryLog) Append(entry models.HistoryEntry) {
	h.entries = append(h.entries, entry)
}

// List returns a copy of all entries, newest first.
func (h *HistoryLog) List() []models.HistoryEntry {
	out := slices.Clone(h.entries)
	slices.Reverse(out)
	return out
}

// Latest returns the newest entry, if any.
func (h *HistoryLog) Latest() (models.HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return models.HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *HistoryLog) Count() int {
	return len(h.entries)
}

func (h *HistoryLog) Clear() {
	h.entries = make([]models.HistoryEntry, 0)
}
