package models

import "time"

// Mode selects what the roulette draws: only a participant, or a
// participant together with a pending task.
type Mode string

const (
	ModeParticipants Mode = "participants"
	ModeTasks        Mode = "tasks"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeParticipants || m == ModeTasks
}

// TaskStatus is the lifecycle state of a task. Completed is terminal.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// Palette is the fixed set of wheel colors handed out round-robin.
var Palette = []string{
	"#EF4444", "#F97316", "#F59E0B", "#10B981", "#14B8A6",
	"#3B82F6", "#6366F1", "#8B5CF6", "#EC4899", "#64748B",
}

// Participant represents a person on the wheel.
// Names are display attributes only; identity is the ID.
type Participant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is an assignment that can be handed to a drawn participant.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color"`
	CreatedAt   time.Time  `json:"createdAt"`
	Status      TaskStatus `json:"status"`
}

// Settings holds the operating mode and behavioral flags.
type Settings struct {
	RouletteMode                 Mode    `json:"rouletteMode"`
	AutoRemoveParticipants       bool    `json:"autoRemoveParticipants"`
	ShowWinnerModal              bool    `json:"showWinnerModal"`
	WinnerDisplayDurationSeconds float64 `json:"winnerDisplayDurationSeconds"`
}

// DefaultSettings returns the settings used when nothing has been persisted.
func DefaultSettings() Settings {
	return Settings{
		RouletteMode:                 ModeParticipants,
		AutoRemoveParticipants:       false,
		ShowWinnerModal:              true,
		WinnerDisplayDurationSeconds: 5,
	}
}

// HistoryEntry is a snapshot of one resolved draw. It copies names so that
// later removal of the participant or task does not alter the record.
type HistoryEntry struct {
	Timestamp             time.Time `json:"timestamp"`
	Mode                  Mode      `json:"mode"`
	WinnerParticipantID   string    `json:"winnerParticipantId"`
	WinnerParticipantName string    `json:"winnerParticipantName"`
	TaskID                string    `json:"taskId,omitempty"`
	TaskName              string    `json:"taskName,omitempty"`
	TaskDescription       string    `json:"taskDescription,omitempty"`
}

// DrawnParticipant is the participant part of a DrawResult.
type DrawnParticipant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DrawnTask is the task part of a DrawResult.
type DrawnTask struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DrawResult is the outcome of a single draw.
type DrawResult struct {
	Mode        Mode             `json:"mode"`
	Participant DrawnParticipant `json:"participant"`
	Task        *DrawnTask       `json:"task,omitempty"`
}
