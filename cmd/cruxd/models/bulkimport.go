package models

import (
	"fmt"

	"github.com/google/uuid"
)

// BulkImportInput is the root of a caller-supplied import tree. The
// whole tree is applied inside one transaction, all-or-nothing.
type BulkImportInput struct {
	Areas []AreaImportNode `json:"areas"`
}

// AreaImportNode is a tagged variant: exactly one of Update or Create
// must be set. Children and climbs recurse under either branch.
type AreaImportNode struct {
	Update *AreaImportUpdate `json:"update,omitempty"`
	Create *AreaImportCreate `json:"create,omitempty"`

	Children []AreaImportNode `json:"children,omitempty"`
	Climbs   []ClimbChange    `json:"climbs,omitempty"`
}

// AreaImportUpdate edits an existing area by id
type AreaImportUpdate struct {
	ID     uuid.UUID          `json:"id"`
	Fields AreaEditableFields `json:"fields"`
}

// AreaImportCreate creates a new area. Root-level nodes need a
// CountryCode or ParentID; nested nodes inherit the parent from the
// walk.
type AreaImportCreate struct {
	Name        string     `json:"areaName"`
	ParentID    *uuid.UUID `json:"parentId,omitempty"`
	CountryCode string     `json:"countryCode,omitempty"`
	Description *string    `json:"description,omitempty"`
	Lat         *float64   `json:"lat,omitempty"`
	Lng         *float64   `json:"lng,omitempty"`
	IsLeaf      *bool      `json:"isLeaf,omitempty"`
	IsBoulder   *bool      `json:"isBoulder,omitempty"`
}

// Validate checks the variant invariant on this node and its subtree
func (n *AreaImportNode) Validate() error {
	switch {
	case n.Update == nil && n.Create == nil:
		return fmt.Errorf("import node: %w", ErrImportVariant)
	case n.Update != nil && n.Create != nil:
		return fmt.Errorf("import node sets both update and create: %w", ErrImportVariant)
	}

	if n.Create != nil && n.Create.Name == "" {
		return fmt.Errorf("import create node requires areaName: %w", ErrImportVariant)
	}

	for i := range n.Children {
		if err := n.Children[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SeedLine is one record of a path-delimited seed file: the delimited
// area path of a crag plus the crag's source fields. Intermediate path
// segments become container areas.
type SeedLine struct {
	Path      string        `json:"path"`
	URL       string        `json:"url,omitempty"`
	Lat       *float64      `json:"lat,omitempty"`
	Lng       *float64      `json:"lng,omitempty"`
	IsBoulder bool          `json:"isBoulder,omitempty"`
	Climbs    []ClimbChange `json:"climbs,omitempty"`
}

// BulkImportResult reports what one import changed
type BulkImportResult struct {
	AddedAreas           []*Area  `json:"addedAreas"`
	UpdatedAreas         []*Area  `json:"updatedAreas"`
	AddedOrUpdatedClimbs []*Climb `json:"addedOrUpdatedClimbs"`
}

// Merge appends other's results to r
func (r *BulkImportResult) Merge(other BulkImportResult) {
	r.AddedAreas = append(r.AddedAreas, other.AddedAreas...)
	r.UpdatedAreas = append(r.UpdatedAreas, other.UpdatedAreas...)
	r.AddedOrUpdatedClimbs = append(r.AddedOrUpdatedClimbs, other.AddedOrUpdatedClimbs...)
}
