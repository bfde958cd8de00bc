package models

import (
	"time"

	"github.com/google/uuid"
)

// Disciplines flags the way a climb is protected/climbed. A climb may
// carry several route disciplines, but bouldering never mixes with any
// route discipline within the same area.
type Disciplines struct {
	Trad       bool `json:"trad,omitempty"`
	Sport      bool `json:"sport,omitempty"`
	Bouldering bool `json:"bouldering,omitempty"`
	TR         bool `json:"tr,omitempty"`
	Alpine     bool `json:"alpine,omitempty"`
	Mixed      bool `json:"mixed,omitempty"`
	Aid        bool `json:"aid,omitempty"`
	Snow       bool `json:"snow,omitempty"`
	Ice        bool `json:"ice,omitempty"`
}

// IsBoulder reports whether the climb is a boulder problem
func (d Disciplines) IsBoulder() bool {
	return d.Bouldering
}

// Any reports whether at least one discipline is set
func (d Disciplines) Any() bool {
	return d.Trad || d.Sport || d.Bouldering || d.TR || d.Alpine || d.Mixed || d.Aid || d.Snow || d.Ice
}

// Labels returns the set discipline names, in a fixed order
func (d Disciplines) Labels() []string {
	var out []string
	for _, e := range []struct {
		name string
		set  bool
	}{
		{"trad", d.Trad},
		{"sport", d.Sport},
		{"bouldering", d.Bouldering},
		{"tr", d.TR},
		{"alpine", d.Alpine},
		{"mixed", d.Mixed},
		{"aid", d.Aid},
		{"snow", d.Snow},
		{"ice", d.Ice},
	} {
		if e.set {
			out = append(out, e.name)
		}
	}
	return out
}

// Climb is a leaf-only entity attached to exactly one leaf area.
// Maps to: climb table
type Climb struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`

	// Back-reference to the owning leaf area
	AreaID uuid.UUID `db:"area_id" json:"areaRef"`

	Grade       string      `db:"grade" json:"grade"`
	Disciplines Disciplines `db:"disciplines" json:"disciplines"`

	Description string `db:"description" json:"description"`
	Location    string `db:"location" json:"location"`
	Protection  string `db:"protection" json:"protection"`
	FA          string `db:"fa" json:"fa"`

	Length         int `db:"length" json:"length"`
	BoltsCount     int `db:"bolts_count" json:"boltsCount"`
	LeftRightIndex int `db:"left_right_index" json:"leftRightIndex"`

	LngLat *Point `db:"lnglat" json:"lnglat,omitempty"`

	Change   *ChangeRecordMetadata `db:"change" json:"_change,omitempty"`
	Deleting *time.Time            `db:"deleting" json:"_deleting,omitempty"`

	CreatedBy uuid.UUID `db:"created_by" json:"createdBy"`
	UpdatedBy uuid.UUID `db:"updated_by" json:"updatedBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ClimbChange is one add-or-update entry for AddOrUpdateClimbs. A nil
// ID adds a new climb; a non-nil ID updates the existing one.
type ClimbChange struct {
	ID             *uuid.UUID  `json:"id,omitempty"`
	Name           string      `json:"name"`
	Grade          string      `json:"grade"`
	Disciplines    Disciplines `json:"disciplines"`
	Description    *string     `json:"description,omitempty"`
	Location       *string     `json:"location,omitempty"`
	Protection     *string     `json:"protection,omitempty"`
	FA             *string     `json:"fa,omitempty"`
	Length         *int        `json:"length,omitempty"`
	BoltsCount     *int        `json:"boltsCount,omitempty"`
	LeftRightIndex *int        `json:"leftRightIndex,omitempty"`
}
