package services

import (
	"slices"
	"time"

	"roulette/internal/models"

	"github.com/google/uuid"
)

// ParticipantPool is the ordered collection of participants on the wheel.
// All operations key by ID; names may repeat.
type ParticipantPool struct {
	participants []models.Participant
	nextColor    int
}

// NewParticipantPool creates a pool seeded with the given participants.
func NewParticipantPool(seed []models.Participant) *ParticipantPool {
	p := &ParticipantPool{participants: slices.Clone(seed)}
	if p.participants == nil {
		p.participants = make([]models.Participant, 0)
	}
	p.nextColor = len(p.participants)
	return p
}

// Add validates name and appends a new participant with a fresh ID.
func (p *ParticipantPool) Add(name string) (models.Participant, error) {
	name, err := validateName(name)
	if err != nil {
		return models.Participant{}, err
	}
	participant := models.Participant{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     models.Palette[p.nextColor%len(models.Palette)],
		CreatedAt: time.Now().UTC(),
	}
	p.nextColor++
	p.participants = append(p.participants, participant)
	return participant, nil
}

// AddBulk adds one participant per line of input. Invalid lines are skipped
// and counted; they never abort the batch.
func (p *ParticipantPool) AddBulk(input string) ([]models.Participant, int) {
	return p.AddAll(splitLines(input))
}

// AddAll adds one participant per name, skipping and counting invalid names.
func (p *ParticipantPool) AddAll(names []string) ([]models.Participant, int) {
	added := make([]models.Participant, 0, len(names))
	skipped := 0
	for _, name := range names {
		participant, err := p.Add(name)
		if err != nil {
			skipped++
			continue
		}
		added = append(added, participant)
	}
	return added, skipped
}

// Remove deletes the participant with id. Absent ids are ignored.
func (p *ParticipantPool) Remove(id string) bool {
	before := len(p.participants)
	p.participants = slices.DeleteFunc(p.participants, func(x models.Participant) bool {
		return x.ID == id
	})
	return len(p.participants) != before
}

// Get returns the participant with id.
func (p *ParticipantPool) Get(id string) (models.Participant, bool) {
	i := slices.IndexFunc(p.participants, func(x models.Participant) bool { return x.ID == id })
	if i < 0 {
		return models.Participant{}, false
	}
	return p.participants[i], true
}

// Clear removes every participant.
func (p *ParticipantPool) Clear() {
	p.participants = make([]models.Participant, 0)
}

// List returns a copy of the participants in insertion order.
func (p *ParticipantPool) List() []models.Participant {
	return slices.Clone(p.participants)
}

// Count returns the number of participants.
func (p *ParticipantPool) Count() int {
	return len(p.participants)
}
