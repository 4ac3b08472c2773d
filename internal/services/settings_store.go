package services

import (
	"fmt"
	"math"

	"roulette/internal/models"
)

// SettingsStore holds the roulette settings record.
type SettingsStore struct {
	settings models.Settings
}

// NewSettingsStore creates a store from s, falling back to defaults for
// any field that fails validation.
func NewSettingsStore(s models.Settings) *SettingsStore {
	def := models.DefaultSettings()
	if !s.RouletteMode.Valid() {
		s.RouletteMode = def.RouletteMode
	}
	if validateDuration(s.WinnerDisplayDurationSeconds) != nil {
		s.WinnerDisplayDurationSeconds = def.WinnerDisplayDurationSeconds
	}
	return &SettingsStore{settings: s}
}

// Get returns the current settings.
func (s *SettingsStore) Get() models.Settings {
	return s.settings
}

// SetMode switches between participant and task draws. Pool and queue
// contents are left untouched.
func (s *SettingsStore) SetMode(mode models.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, mode)
	}
	s.settings.RouletteMode = mode
	return nil
}

func (s *SettingsStore) SetAutoRemove(v bool) {
	s.settings.AutoRemoveParticipants = v
}

func (s *SettingsStore) SetShowModal(v bool) {
	s.settings.ShowWinnerModal = v
}

// SetDuration sets how long the winner is displayed. Non-positive values
// are rejected and the previous value kept.
func (s *SettingsStore) SetDuration(seconds float64) error {
	if err := validateDuration(seconds); err != nil {
		return err
	}
	s.settings.WinnerDisplayDurationSeconds = seconds
	return nil
}

// SettingsPatch is a partial settings update; nil fields are left untouched.
type SettingsPatch struct {
	RouletteMode                 *models.Mode `json:"rouletteMode"`
	AutoRemoveParticipants       *bool        `json:"autoRemoveParticipants"`
	ShowWinnerModal              *bool        `json:"showWinnerModal"`
	WinnerDisplayDurationSeconds *float64     `json:"winnerDisplayDurationSeconds"`
}

// Apply validates every field of patch before changing anything, so a
// rejected patch leaves the settings as they were.
func (s *SettingsStore) Apply(patch SettingsPatch) error {
	if patch.RouletteMode != nil && !patch.RouletteMode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, *patch.RouletteMode)
	}
	if patch.WinnerDisplayDurationSeconds != nil {
		if err := validateDuration(*patch.WinnerDisplayDurationSeconds); err != nil {
			return err
		}
	}

	if patch.RouletteMode != nil {
		s.settings.RouletteMode = *patch.RouletteMode
	}
	if patch.AutoRemoveParticipants != nil {
		s.settings.AutoRemoveParticipants = *patch.AutoRemoveParticipants
	}
	if patch.ShowWinnerModal != nil {
		s.settings.ShowWinnerModal = *patch.ShowWinnerModal
	}
	if patch.WinnerDisplayDurationSeconds != nil {
		s.settings.WinnerDisplayDurationSeconds = *patch.WinnerDisplayDurationSeconds
	}
	return nil
}

func validateDuration(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return fmt.Errorf("%w: duration must be a positive number of seconds", ErrValidation)
	}
	return nil
}
