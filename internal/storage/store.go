package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the records the roulette persists.
const (
	KeyParticipants = "participants"
	KeyTasks        = "tasks"
	KeySettings     = "settings"
	KeyHistory      = "history"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// DeserializationError reports a stored value that could not be decoded.
type DeserializationError struct {
	Key string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize %q: %v", e.Key, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// Store is a durable key/value store for the roulette state.
// Get decodes the value stored under key into v.
type Store interface {
	Get(key string, v any) error
	Set(key string, v any) error
	Close() error
}

func encode(key string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize %q: %w", key, err)
	}
	return data, nil
}

func decode(key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &DeserializationError{Key: key, Err: err}
	}
	return nil
}
