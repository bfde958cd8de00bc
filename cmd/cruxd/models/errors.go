package models

import "errors"

// Validation and integrity errors surfaced to callers. Handlers map
// these onto HTTP statuses; everything else is a 500.
var (
	// ErrAreaNotFound: referenced area does not exist (or is being deleted)
	ErrAreaNotFound = errors.New("area not found")

	// ErrClimbNotFound: referenced climb does not exist
	ErrClimbNotFound = errors.New("climb not found")

	// ErrNotLeaf: climbs may only attach to a leaf area
	ErrNotLeaf = errors.New("area is not a leaf crag")

	// ErrLeafHasContent: a leaf/boulder area with children or climbs
	// cannot take subareas
	ErrLeafHasContent = errors.New("adding subareas to a non-empty leaf or boulder area is not allowed")

	// ErrMixedDiscipline: an area's climbs are exclusively bouldering or
	// exclusively routes once any climb exists
	ErrMixedDiscipline = errors.New("bouldering and route climbs cannot mix within one area")

	// ErrSubtreeNotEmpty: deleteArea rejects nodes with children or climbs
	ErrSubtreeNotEmpty = errors.New("area subtree is not empty")

	// ErrCountryImmutable: country name and short code cannot be updated
	ErrCountryImmutable = errors.New("updating country name or short code is not allowed")

	// ErrLeafFlagWithChildren: leaf/boulder flags cannot change while
	// subareas exist
	ErrLeafFlagWithChildren = errors.New("updating leaf or boulder status of an area with subareas is not allowed")

	// ErrInvalidCountryCode: not a known ISO alpha-2/alpha-3 code
	ErrInvalidCountryCode = errors.New("invalid ISO country code")

	// ErrImportVariant: an import node must set exactly one of update/create
	ErrImportVariant = errors.New("exactly one of update or create is required")

	// ErrHistoryNotFound: change entry references an unknown History.
	// Audit-trail only; logged and dropped, never blocks a write.
	ErrHistoryNotFound = errors.New("history record not found")

	// ErrCorruptPath: tree builder found a path whose prefix was never
	// inserted
	ErrCorruptPath = errors.New("corrupted path: missing ancestor prefix")
)
