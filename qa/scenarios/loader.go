// Package scenarios replays YAML described allocation scenarios through the
// allocation manager.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/mealmatch/core/model"
)

type RecipientDef struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Capacity int     `yaml:"capacity"`
	Urgency  int     `yaml:"urgency"`
	Distance float64 `yaml:"distance"`
}

func (r RecipientDef) ToModel() model.Recipient {
	return model.Recipient{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Urgency: r.Urgency, Distance: r.Distance}
}

type VolunteerDef struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Distance float64 `yaml:"distance"`
	// Unavailable volunteers are loaded but cannot be picked.
	Unavailable bool `yaml:"unavailable,omitempty"`
}

func (v VolunteerDef) ToModel() model.Volunteer {
	return model.Volunteer{ID: v.ID, Name: v.Name, Distance: v.Distance, Available: !v.Unavailable}
}

type BatchDef struct {
	ID       string `yaml:"id"`
	DonorID  string `yaml:"donor_id"`
	Quantity int    `yaml:"quantity"`
	Location string `yaml:"location"`
}

func (b BatchDef) ToModel() *model.Batch {
	return &model.Batch{ID: b.ID, DonorID: b.DonorID, Quantity: b.Quantity, DonorLocation: b.Location}
}

// AssignmentDef is one expected assignment, in emission order.
type AssignmentDef struct {
	Volunteer string `yaml:"volunteer"`
	Recipient string `yaml:"recipient"`
	Quantity  int    `yaml:"quantity"`
}

// BatchResult is what one batch is expected to end with.
type BatchResult struct {
	Status      string          `yaml:"status"`
	Remaining   int             `yaml:"remaining"`
	Assignments []AssignmentDef `yaml:"assignments"`
}

type Expected struct {
	// Batches lines up with Scenario.Batches.
	Batches    []BatchResult  `yaml:"batches"`
	Capacities map[string]int `yaml:"capacities"`
	Acked      int            `yaml:"acked"`
}

type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Recipients  []RecipientDef `yaml:"recipients"`
	Volunteers  []VolunteerDef `yaml:"volunteers"`
	Batches     []BatchDef     `yaml:"batches"`
	// FailVolunteers cannot be reached, NoAckVolunteers never acknowledge.
	FailVolunteers  []string `yaml:"fail_volunteers,omitempty"`
	NoAckVolunteers []string `yaml:"no_ack_volunteers,omitempty"`
	Expected        Expected `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	if len(sc.Expected.Batches) != len(sc.Batches) {
		return nil, fmt.Errorf("%s: %d batches but %d expected results", path, len(sc.Batches), len(sc.Expected.Batches))
	}
	return &sc, nil
}
