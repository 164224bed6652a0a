package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/mealmatch/core/model"
	"github.com/kilianp07/mealmatch/core/store"
)

// Fleet is the initial content of the recipient and volunteer stores.
type Fleet struct {
	Recipients []model.Recipient `json:"recipients"`
	Volunteers []model.Volunteer `json:"volunteers"`
	// Batch is an optional sample batch used by the allocate command.
	Batch *model.Batch `json:"batch"`
}

// fleetVolunteer lets volunteers default to available when the field is
// omitted.
type fleetVolunteer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Distance  float64 `json:"distance"`
	Available *bool   `json:"available"`
}

// LoadFleet reads a YAML or JSON fleet file.
func LoadFleet(path string) (*Fleet, error) {
	k, err := newKoanf(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Recipients []model.Recipient `json:"recipients"`
		Volunteers []fleetVolunteer  `json:"volunteers"`
		Batch      *model.Batch      `json:"batch"`
	}
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("fleet %s: %w", path, err)
	}
	f := &Fleet{Recipients: raw.Recipients, Batch: raw.Batch}
	for _, v := range raw.Volunteers {
		f.Volunteers = append(f.Volunteers, model.Volunteer{
			ID:        v.ID,
			Name:      v.Name,
			Distance:  v.Distance,
			Available: v.Available == nil || *v.Available,
		})
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("fleet %s: %w", path, err)
	}
	return f, nil
}

// Validate rejects invalid entries and duplicate ids.
func (f Fleet) Validate() error {
	seen := make(map[string]bool, len(f.Recipients))
	for _, r := range f.Recipients {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate recipient %s", r.ID)
		}
		seen[r.ID] = true
	}
	seen = make(map[string]bool, len(f.Volunteers))
	for _, v := range f.Volunteers {
		if err := v.Validate(); err != nil {
			return err
		}
		if seen[v.ID] {
			return fmt.Errorf("duplicate volunteer %s", v.ID)
		}
		seen[v.ID] = true
	}
	return nil
}

// Populate returns new stores seeded with the fleet.
func (f Fleet) Populate() (*store.RecipientStore, *store.VolunteerStore) {
	return store.NewRecipientStore(f.Recipients...), store.NewVolunteerStore(f.Volunteers...)
}
