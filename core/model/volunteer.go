package model

import "fmt"

// Volunteer delivers units from the donor to a recipient. A volunteer makes a
// single trip per allocation run.
type Volunteer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Distance  float64 `json:"distance"` // distance to the donor, lower is preferred
	Available bool    `json:"available"`
}

// Validate checks that the volunteer configuration is sound.
func (v Volunteer) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("volunteer id is required")
	}
	return nil
}

// Nearer reports whether v should be picked before o.
func (v Volunteer) Nearer(o Volunteer) bool {
	if v.Distance != o.Distance {
		return v.Distance < o.Distance
	}
	return v.ID < o.ID
}
