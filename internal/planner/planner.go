// Package planner turns a diagnosed equipment fault into a persisted repair
// work order. The pipeline looks up required skills and parts for the fault
// type, resolves candidate technicians and inventory concurrently, asks the
// model for a plan, reconciles the reply into a guaranteed-valid work order,
// and stores it.
//
// Model output is never trusted: parse failures fall back to a synthetic
// order, and business rules (priority, fault linkage, technician validation,
// timestamps) always override whatever the model proposed.
package planner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"repairplanner/internal/faultmap"
	"repairplanner/internal/llm"
	"repairplanner/internal/store"
	"repairplanner/internal/types"
)

// Planner orchestrates the fault-to-work-order pipeline.
type Planner struct {
	technicians store.TechnicianStore
	parts       store.PartStore
	workOrders  store.WorkOrderStore
	client      llm.Client
	logger      *zap.Logger
}

// New wires a Planner from its collaborators.
func New(
	technicians store.TechnicianStore,
	parts store.PartStore,
	workOrders store.WorkOrderStore,
	client llm.Client,
	logger *zap.Logger,
) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		technicians: technicians,
		parts:       parts,
		workOrders:  workOrders,
		client:      client,
		logger:      logger,
	}
}

// PlanWorkOrder runs the full pipeline for one fault and returns the stored
// work order. Store and model failures abort the request; malformed model
// output does not.
func (p *Planner) PlanWorkOrder(ctx context.Context, fault types.DiagnosedFault) (*types.WorkOrder, error) {
	p.logger.Info("planning repair",
		zap.String("fault_id", fault.ID),
		zap.String("fault_type", fault.FaultType),
		zap.String("machine_id", fault.MachineID))

	requiredSkills := faultmap.RequiredSkills(fault.FaultType)
	requiredParts := faultmap.RequiredParts(fault.FaultType)

	res, err := p.resolveRequirements(ctx, requiredSkills, requiredParts)
	if err != nil {
		p.logger.Error("requirement resolution failed", zap.Error(err))
		return nil, err
	}

	p.logger.Info("requirements resolved",
		zap.Int("technicians", len(res.technicians)),
		zap.Int("parts_in_stock", len(res.parts)))
	if len(res.technicians) == 0 {
		p.logger.Warn("no available technicians with required skills",
			zap.Strings("required_skills", requiredSkills))
	}
	if len(res.missingParts) > 0 {
		p.logger.Warn("required parts missing from inventory",
			zap.Strings("part_numbers", res.missingParts))
	}

	prompt := buildPrompt(fault, res, requiredSkills)
	p.logger.Debug("invoking model", zap.Int("prompt_len", len(prompt)))

	raw, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("model invocation failed: %w", err)
	}
	p.logger.Debug("model reply received", zap.Int("response_len", len(raw)))

	wo := p.parseWorkOrderResponse(raw, fault)
	finalize(wo, fault, res.technicians)

	stored, err := p.workOrders.Create(ctx, wo)
	if err != nil {
		return nil, fmt.Errorf("failed to persist work order: %w", err)
	}

	assignee := stored.AssignedTo
	if assignee == "" {
		assignee = "(unassigned)"
	}
	p.logger.Info("work order planned",
		zap.String("work_order_number", stored.WorkOrderNumber),
		zap.String("assigned_to", assignee),
		zap.String("status", stored.Status))
	return stored, nil
}
