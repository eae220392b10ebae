package planner

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"repairplanner/internal/types"
)

const (
	noTechnicianNote = "ATTENTION: No technicians with required skills are currently available. " +
		"Manual assignment required once personnel become available."

	reassignmentNote = "Note: Originally assigned technician was not available; reassignment needed."
)

// parseWorkOrderResponse reconciles the raw model reply into a work order.
// Three tiers, each a fallback for the previous: strict parse of the
// response shape, lenient parse of the full work order shape, synthetic
// minimal order. It never fails; a parse error is policy, not an exception.
func (p *Planner) parseWorkOrderResponse(raw string, fault types.DiagnosedFault) *types.WorkOrder {
	text := stripCodeFence(raw)

	var resp *types.WorkOrderResponse
	if err := json.Unmarshal([]byte(text), &resp); err == nil && resp != nil {
		p.logger.Debug("model reply parsed as structured response")
		return resp.ToWorkOrder()
	}

	var lenient *types.LenientWorkOrder
	if err := json.Unmarshal([]byte(text), &lenient); err == nil && lenient != nil {
		p.logger.Debug("model reply parsed as full work order")
		return lenient.ToWorkOrder()
	}

	preview := raw
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}
	p.logger.Warn("model reply unparseable, falling back to synthetic work order",
		zap.String("response", preview))
	return syntheticWorkOrder(fault)
}

// stripCodeFence removes a wrapping markdown code fence. Always applied;
// schema-constrained output should never be fenced, but models wrap replies
// often enough that we do not condition this on a parse failure.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// syntheticWorkOrder builds the minimal fallback order used when the model
// reply cannot be salvaged.
func syntheticWorkOrder(fault types.DiagnosedFault) *types.WorkOrder {
	return &types.WorkOrder{
		ID:              uuid.NewString(),
		WorkOrderNumber: newWorkOrderNumber(),
		MachineID:       fault.MachineID,
		Title:           "Repair: " + fault.FaultType,
		Description:     fault.Description,
		Type:            "corrective",
		Priority:        CalculatePriority(fault.Severity),
		Status:          "pending",
		FaultID:         fault.ID,
		PartsUsed:       []types.WorkOrderPartUsage{},
		Tasks:           []types.RepairTask{},
	}
}

// newWorkOrderNumber generates a human-readable order number,
// WO-YYYYMMDD-XXXX, where XXXX is the uppercased first four hex characters
// of a fresh UUID.
func newWorkOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return "WO-" + time.Now().UTC().Format("20060102") + "-" + suffix
}

// finalize applies the deterministic business rules to a reconciled work
// order. It runs unconditionally on every path, synthetic fallback
// included, and overrides model output wherever they conflict.
func finalize(wo *types.WorkOrder, fault types.DiagnosedFault, technicians []types.Technician) {
	if wo.ID == "" {
		wo.ID = uuid.NewString()
	}
	if wo.Status == "" {
		wo.Status = "pending"
	}
	if wo.Type == "" {
		wo.Type = "corrective"
	}
	if wo.Tasks == nil {
		wo.Tasks = []types.RepairTask{}
	}
	if wo.PartsUsed == nil {
		wo.PartsUsed = []types.WorkOrderPartUsage{}
	}

	// Never trusted from the model.
	wo.FaultID = fault.ID
	wo.MachineID = fault.MachineID
	wo.Priority = CalculatePriority(fault.Severity)

	if strings.TrimSpace(wo.WorkOrderNumber) == "" {
		wo.WorkOrderNumber = newWorkOrderNumber()
	}

	sort.SliceStable(wo.Tasks, func(i, j int) bool {
		return wo.Tasks[i].Sequence < wo.Tasks[j].Sequence
	})
	for i := range wo.PartsUsed {
		if wo.PartsUsed[i].Quantity < 1 {
			wo.PartsUsed[i].Quantity = 1
		}
	}

	if len(technicians) == 0 {
		wo.AssignedTo = ""
		wo.Status = "pending_assignment"
		appendNote(wo, noTechnicianNote)
	} else if wo.AssignedTo != "" && !technicianKnown(wo.AssignedTo, technicians) {
		wo.AssignedTo = ""
		appendNote(wo, reassignmentNote)
	}

	now := time.Now().UTC()
	wo.CreatedAt = now
	wo.UpdatedAt = now
}

func technicianKnown(id string, technicians []types.Technician) bool {
	for _, tech := range technicians {
		if strings.EqualFold(tech.ID, id) {
			return true
		}
	}
	return false
}

// appendNote adds to the order's notes without overwriting what the model
// (or an earlier rule) already wrote.
func appendNote(wo *types.WorkOrder, note string) {
	if strings.TrimSpace(wo.Notes) == "" {
		wo.Notes = note
		return
	}
	wo.Notes = wo.Notes + "\n\n" + note
}

// CalculatePriority derives work order priority from fault severity. Total
// and deterministic: unknown, blank, or absent severities map to medium.
// This deliberately overrides any priority the model reasoned its way to.
func CalculatePriority(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical":
		return "critical"
	case "high":
		return "high"
	case "medium":
		return "medium"
	case "low":
		return "low"
	case "severe", "emergency":
		return "critical"
	case "warning", "moderate":
		return "medium"
	case "minor", "informational", "info":
		return "low"
	default:
		return "medium"
	}
}
