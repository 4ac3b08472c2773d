package services

import (
	"fmt"
	"slices"
	"time"

	"roulette/internal/models"

	"github.com/google/uuid"
)

// TaskInput is the name and optional description of a task to add.
type TaskInput struct {
	Name        string
	Description string
}

// TaskQueue holds tasks in insertion order together with their status.
type TaskQueue struct {
	tasks     []models.Task
	nextColor int
}

// NewTaskQueue creates a queue seeded with the given tasks.
func NewTaskQueue(seed []models.Task) *TaskQueue {
	q := &TaskQueue{tasks: slices.Clone(seed)}
	if q.tasks == nil {
		q.tasks = make([]models.Task, 0)
	}
	q.nextColor = len(q.tasks)
	return q
}

// Add validates and appends a new pending task.
func (q *TaskQueue) Add(name, description string) (models.Task, error) {
	name, err := validateName(name)
	if err != nil {
		return models.Task{}, err
	}
	description, err = validateDescription(description)
	if err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Color:       models.Palette[q.nextColor%len(models.Palette)],
		CreatedAt:   time.Now().UTC(),
		Status:      models.TaskPending,
	}
	q.nextColor++
	q.tasks = append(q.tasks, task)
	return task, nil
}

// AddBulk adds one task per line of input, skipping invalid lines.
func (q *TaskQueue) AddBulk(input string) ([]models.Task, int) {
	lines := splitLines(input)
	inputs := make([]TaskInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, TaskInput{Name: line})
	}
	return q.AddAll(inputs)
}

// AddAll adds one task per input, skipping and counting invalid inputs.
func (q *TaskQueue) AddAll(inputs []TaskInput) ([]models.Task, int) {
	added := make([]models.Task, 0, len(inputs))
	skipped := 0
	for _, in := range inputs {
		task, err := q.Add(in.Name, in.Description)
		if err != nil {
			skipped++
			continue
		}
		added = append(added, task)
	}
	return added, skipped
}

// Remove deletes a pending task. Absent ids are ignored; completed tasks are
// part of the history and cannot be removed.
func (q *TaskQueue) Remove(id string) error {
	i := q.index(id)
	if i < 0 {
		return nil
	}
	if q.tasks[i].Status == models.TaskCompleted {
		return fmt.Errorf("%w: task %s is completed", ErrInvalidState, id)
	}
	q.tasks = slices.Delete(q.tasks, i, i+1)
	return nil
}

// MarkCompleted transitions a pending task to completed.
func (q *TaskQueue) MarkCompleted(id string) error {
	i := q.index(id)
	if i < 0 {
		return fmt.Errorf("%w: task %s not found", ErrInvalidState, id)
	}
	if q.tasks[i].Status == models.TaskCompleted {
		return fmt.Errorf("%w: task %s already completed", ErrInvalidState, id)
	}
	q.tasks[i].Status = models.TaskCompleted
	return nil
}

// Get returns the task with id.
func (q *TaskQueue) Get(id string) (models.Task, bool) {
	i := q.index(id)
	if i < 0 {
		return models.Task{}, false
	}
	return q.tasks[i], true
}

// Clear removes every task, pending or completed.
func (q *TaskQueue) Clear() {
	q.tasks = make([]models.Task, 0)
}

// List returns a copy of all tasks in insertion order.
func (q *TaskQueue) List() []models.Task {
	return slices.Clone(q.tasks)
}

// Pending returns the pending tasks in insertion order.
func (q *TaskQueue) Pending() []models.Task {
	return q.filter(models.TaskPending)
}

// Completed returns the completed tasks in insertion order.
func (q *TaskQueue) Completed() []models.Task {
	return q.filter(models.TaskCompleted)
}

func (q *TaskQueue) filter(status models.TaskStatus) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range q.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (q *TaskQueue) index(id string) int {
	return slices.IndexFunc(q.tasks, func(t models.Task) bool { return t.ID == id })
}
