// Package store persists technicians, parts inventory, and work orders.
// Technicians and parts are read-only collaborators from the planner's
// perspective; work orders are written exactly once.
package store

import (
	"context"
	"errors"

	"repairplanner/internal/types"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicateID is returned when creating a work order whose id already
// exists.
var ErrDuplicateID = errors.New("store: duplicate id")

// TechnicianStore reads technician records.
type TechnicianStore interface {
	// AvailableBySkills returns technicians currently marked available that
	// hold at least one of the given skills. Skill matching is
	// case-insensitive; full coverage is not required.
	AvailableBySkills(ctx context.Context, skills []string) ([]types.Technician, error)

	// ByID fetches one technician by id within a department partition.
	// Returns ErrNotFound if missing.
	ByID(ctx context.Context, id, department string) (*types.Technician, error)
}

// PartStore reads parts inventory.
type PartStore interface {
	// ByPartNumbers returns the in-stock parts among the requested part
	// numbers, keyed by their stored part number. Lookup is
	// case-insensitive. An empty request returns an empty map without
	// querying.
	ByPartNumbers(ctx context.Context, partNumbers []string) (map[string]types.Part, error)
}

// WorkOrderStore writes finalized work orders.
type WorkOrderStore interface {
	// Create persists a new work order keyed by id, partitioned by status.
	// It stamps createdAt/updatedAt authoritatively and returns the stored
	// representation. Fails with ErrDuplicateID on id collision.
	Create(ctx context.Context, wo *types.WorkOrder) (*types.WorkOrder, error)
}
