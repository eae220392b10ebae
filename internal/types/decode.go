package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// StringList decodes a JSON array of strings, a bare string (promoted to a
// one-element list), or null (empty list). Models routinely emit a bare
// string when there is only one item.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = StringList{}
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = StringList{}
		} else {
			*l = StringList{s}
		}
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}
	*l = out
	return nil
}

// MarshalJSON always writes an array, never a bare string.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// FlexInt decodes a JSON number or a numeric string ("90" as well as 90).
// Fractional numbers are truncated. A non-numeric string is a decode error.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = 0
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("cannot decode %q as integer", s)
		}
		*f = FlexInt(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		var fl float64
		if ferr := json.Unmarshal(data, &fl); ferr != nil {
			return err
		}
		n = int(fl)
	}
	*f = FlexInt(n)
	return nil
}

// Int returns the plain integer value.
func (f FlexInt) Int() int { return int(f) }

// WorkOrderResponse is the strict shape the model is asked to return. It
// carries no id, fault reference, or timestamps; those are owned by the
// planner, never the model.
type WorkOrderResponse struct {
	WorkOrderNumber   string               `json:"workOrderNumber"`
	MachineID         string               `json:"machineId"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Type              string               `json:"type"`
	Priority          string               `json:"priority"`
	Status            string               `json:"status"`
	AssignedTo        string               `json:"assignedTo"`
	Notes             string               `json:"notes"`
	EstimatedDuration FlexInt              `json:"estimatedDuration"`
	PartsUsed         []PartUsageResponse  `json:"partsUsed"`
	Tasks             []RepairTaskResponse `json:"tasks"`
}

// RepairTaskResponse is the task entry of the model reply.
type RepairTaskResponse struct {
	Sequence                 FlexInt    `json:"sequence"`
	Title                    string     `json:"title"`
	Description              string     `json:"description"`
	EstimatedDurationMinutes FlexInt    `json:"estimatedDurationMinutes"`
	RequiredSkills           StringList `json:"requiredSkills"`
	SafetyNotes              string     `json:"safetyNotes"`
}

// PartUsageResponse is the part-usage entry of the model reply.
type PartUsageResponse struct {
	PartID     string  `json:"partId"`
	PartNumber string  `json:"partNumber"`
	Quantity   FlexInt `json:"quantity"`
}

// ToWorkOrder converts the model reply into a WorkOrder with a freshly
// generated id. Part quantities below one are floored to one.
func (r *WorkOrderResponse) ToWorkOrder() *WorkOrder {
	wo := &WorkOrder{
		ID:                uuid.NewString(),
		WorkOrderNumber:   r.WorkOrderNumber,
		MachineID:         r.MachineID,
		Title:             r.Title,
		Description:       r.Description,
		Type:              r.Type,
		Priority:          r.Priority,
		Status:            r.Status,
		AssignedTo:        r.AssignedTo,
		Notes:             r.Notes,
		EstimatedDuration: r.EstimatedDuration.Int(),
		PartsUsed:         make([]WorkOrderPartUsage, 0, len(r.PartsUsed)),
		Tasks:             make([]RepairTask, 0, len(r.Tasks)),
	}
	for _, p := range r.PartsUsed {
		qty := p.Quantity.Int()
		if qty < 1 {
			qty = 1
		}
		wo.PartsUsed = append(wo.PartsUsed, WorkOrderPartUsage{
			PartID:     p.PartID,
			PartNumber: p.PartNumber,
			Quantity:   qty,
		})
	}
	for _, t := range r.Tasks {
		wo.Tasks = append(wo.Tasks, RepairTask{
			Sequence:                 t.Sequence.Int(),
			Title:                    t.Title,
			Description:              t.Description,
			EstimatedDurationMinutes: t.EstimatedDurationMinutes.Int(),
			RequiredSkills:           []string(t.RequiredSkills),
			SafetyNotes:              t.SafetyNotes,
		})
	}
	return wo
}

// LenientWorkOrder mirrors the full WorkOrder shape with the tolerant field
// types, for replies that skipped the response schema and emitted a whole
// work order document instead.
type LenientWorkOrder struct {
	ID                string               `json:"id"`
	WorkOrderNumber   string               `json:"workOrderNumber"`
	MachineID         string               `json:"machineId"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Type              string               `json:"type"`
	Priority          string               `json:"priority"`
	Status            string               `json:"status"`
	AssignedTo        string               `json:"assignedTo"`
	Notes             string               `json:"notes"`
	EstimatedDuration FlexInt              `json:"estimatedDuration"`
	PartsUsed         []PartUsageResponse  `json:"partsUsed"`
	Tasks             []RepairTaskResponse `json:"tasks"`
	FaultID           string               `json:"faultId"`
}

// ToWorkOrder converts the lenient shape as-is; the model-supplied id (if
// any) survives here and is validated later during finalization.
func (w *LenientWorkOrder) ToWorkOrder() *WorkOrder {
	resp := WorkOrderResponse{
		WorkOrderNumber:   w.WorkOrderNumber,
		MachineID:         w.MachineID,
		Title:             w.Title,
		Description:       w.Description,
		Type:              w.Type,
		Priority:          w.Priority,
		Status:            w.Status,
		AssignedTo:        w.AssignedTo,
		Notes:             w.Notes,
		EstimatedDuration: w.EstimatedDuration,
		PartsUsed:         w.PartsUsed,
		Tasks:             w.Tasks,
	}
	wo := resp.ToWorkOrder()
	wo.ID = w.ID
	wo.FaultID = w.FaultID
	return wo
}
