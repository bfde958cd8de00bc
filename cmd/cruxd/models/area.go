package models

import (
	"time"

	"github.com/google/uuid"
)

// Area is a node in the climbing-area tree (country -> region -> crag).
// Maps to: area table
type Area struct {
	// Deterministic id. Derived from the ancestor path (or an external
	// source id) at creation time and never changed afterwards, even on
	// rename.
	ID uuid.UUID `db:"id" json:"id"`

	Name string `db:"name" json:"areaName"`

	// ISO alpha-3 code, country nodes only
	ShortCode string `db:"short_code" json:"shortCode,omitempty"`

	// Non-owning back-reference to the parent. The parent's children
	// array owns the existence of the link.
	ParentID *uuid.UUID `db:"parent_id" json:"parentId,omitempty"`

	// Ordered child ids, owned by this node
	Children []uuid.UUID `db:"children" json:"children"`

	// Materialized root-to-self id chain (inclusive). Length is always
	// depth+1; computed once at creation, never re-parented.
	Ancestors []uuid.UUID `db:"ancestors" json:"ancestors"`

	// Display names parallel to Ancestors, root first
	PathTokens []string `db:"path_tokens" json:"pathTokens"`

	// Grade context inherited from the country (US, FR, ...)
	GradeContext string `db:"grade_context" json:"gradeContext"`

	IsDestination bool `db:"is_destination" json:"isDestination"`

	// A leaf (crag) has climbs directly attached and no child areas
	IsLeaf    bool `db:"is_leaf" json:"isLeaf"`
	IsBoulder bool `db:"is_boulder" json:"isBoulder"`

	// Left-to-right sort position among siblings; -1 means unordered
	LeftRightIndex int `db:"left_right_index" json:"leftRightIndex"`

	LngLat  *Point  `db:"lnglat" json:"lnglat,omitempty"`
	BBox    *BBox   `db:"bbox" json:"bbox,omitempty"`
	Polygon []Point `db:"polygon" json:"polygon,omitempty"`

	Description string `db:"description" json:"description"`

	// Derived statistics. Always a pure function of the subtree; only
	// the statistics reducer writes these.
	TotalClimbs int       `db:"total_climbs" json:"totalClimbs"`
	Density     float64   `db:"density" json:"density"`
	Aggregate   Aggregate `db:"aggregate" json:"aggregate"`

	// Most recent change-record metadata for this document
	Change *ChangeRecordMetadata `db:"change" json:"_change,omitempty"`

	// Soft-delete marker. Set instead of physically removing the row so
	// the change feed captures a terminal snapshot; the expiry sweep
	// removes the row later.
	Deleting *time.Time `db:"deleting" json:"_deleting,omitempty"`

	CreatedBy uuid.UUID `db:"created_by" json:"createdBy"`
	UpdatedBy uuid.UUID `db:"updated_by" json:"updatedBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsCountry reports whether the node is a tree root
func (a *Area) IsCountry() bool {
	return len(a.PathTokens) == 1
}

// Depth returns the node's depth (country = 0)
func (a *Area) Depth() int {
	return len(a.PathTokens) - 1
}

// AreaEditableFields are the fields updateArea accepts. Nil means
// "leave unchanged". Country name and short code are immutable.
type AreaEditableFields struct {
	Name           *string  `json:"areaName,omitempty"`
	Description    *string  `json:"description,omitempty"`
	ShortCode      *string  `json:"shortCode,omitempty"`
	IsDestination  *bool    `json:"isDestination,omitempty"`
	IsLeaf         *bool    `json:"isLeaf,omitempty"`
	IsBoulder      *bool    `json:"isBoulder,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lng            *float64 `json:"lng,omitempty"`
	LeftRightIndex *int     `json:"leftRightIndex,omitempty"`
}
