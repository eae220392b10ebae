// Package types holds the domain model shared across the repair planner:
// the diagnosed fault coming in, the technician and part records read from
// the stores, and the work order going out.
package types

import "time"

// DiagnosedFault is the upstream diagnosis the planner turns into a work
// order. It is immutable once received.
type DiagnosedFault struct {
	ID                 string    `json:"id"`
	MachineID          string    `json:"machineId"`
	MachineName        string    `json:"machineName"`
	FaultType          string    `json:"faultType"`
	Severity           string    `json:"severity"`
	Description        string    `json:"description"`
	RootCause          string    `json:"rootCause"`
	RecommendedActions []string  `json:"recommendedActions"`
	DiagnosedAt        time.Time `json:"diagnosedAt"`
}

// Technician is a repair worker record. The store partitions technicians by
// department. Read-only from the planner's perspective.
type Technician struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Department        string   `json:"department"`
	Skills            []string `json:"skills"`
	Certifications    []string `json:"certifications"`
	Available         bool     `json:"available"`
	CurrentAssignment string   `json:"currentAssignment,omitempty"`
	ShiftStart        string   `json:"shiftStart"`
	ShiftEnd          string   `json:"shiftEnd"`
}

// Part is a spare part inventory record, keyed naturally by part number
// (case-insensitive within a category).
type Part struct {
	ID                 string   `json:"id"`
	PartNumber         string   `json:"partNumber"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	QuantityInStock    int      `json:"quantityInStock"`
	ReorderLevel       int      `json:"reorderLevel"`
	UnitCost           float64  `json:"unitCost"`
	Location           string   `json:"location"`
	CompatibleMachines []string `json:"compatibleMachines"`
}

// WorkOrder is the planner's output, persisted keyed by id with status as
// the partition key. Duration fields are integer minutes, never formatted
// strings.
type WorkOrder struct {
	ID                string               `json:"id"`
	WorkOrderNumber   string               `json:"workOrderNumber"`
	MachineID         string               `json:"machineId"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Type              string               `json:"type"`     // corrective, preventive, emergency
	Priority          string               `json:"priority"` // critical, high, medium, low
	Status            string               `json:"status"`   // pending, pending_assignment, assigned, in_progress, completed, cancelled
	AssignedTo        string               `json:"assignedTo,omitempty"`
	Notes             string               `json:"notes"`
	EstimatedDuration int                  `json:"estimatedDuration"`
	PartsUsed         []WorkOrderPartUsage `json:"partsUsed"`
	Tasks             []RepairTask         `json:"tasks"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	FaultID           string               `json:"faultId"`
}

// WorkOrderPartUsage records one part drawn against a work order.
type WorkOrderPartUsage struct {
	PartID     string `json:"partId"`
	PartNumber string `json:"partNumber"`
	Quantity   int    `json:"quantity"`
}

// RepairTask is one step of a work order. Tasks execute in sequence order;
// equal sequence numbers keep their original relative order.
type RepairTask struct {
	Sequence                 int      `json:"sequence"`
	Title                    string   `json:"title"`
	Description              string   `json:"description"`
	EstimatedDurationMinutes int      `json:"estimatedDurationMinutes"`
	RequiredSkills           []string `json:"requiredSkills"`
	SafetyNotes              string   `json:"safetyNotes"`
}
