package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"repairplanner/internal/types"
)

func newTestStore(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTestTechnicians(t *testing.T, s *Local) {
	t.Helper()
	err := s.SeedTechnicians(context.Background(), []types.Technician{
		{
			ID: "T-001", Name: "Maria Chen", Department: "curing",
			Skills:    []string{"tire_curing_press", "plc_troubleshooting"},
			Available: true, ShiftStart: "08:00", ShiftEnd: "16:00",
		},
		{
			ID: "T-002", Name: "Dev Patel", Department: "curing",
			Skills:    []string{"Temperature_Control"},
			Available: true, ShiftStart: "16:00", ShiftEnd: "00:00",
		},
		{
			ID: "T-003", Name: "Sam Okafor", Department: "extrusion",
			Skills:    []string{"tire_curing_press"},
			Available: false, ShiftStart: "08:00", ShiftEnd: "16:00",
		},
		{
			ID: "T-004", Name: "Lena Fischer", Department: "mixing",
			Skills:    []string{"banbury_mixer"},
			Available: true, ShiftStart: "08:00", ShiftEnd: "16:00",
		},
	})
	if err != nil {
		t.Fatalf("failed to seed technicians: %v", err)
	}
}

func seedTestParts(t *testing.T, s *Local) {
	t.Helper()
	err := s.SeedParts(context.Background(), []types.Part{
		{
			ID: "P-100", PartNumber: "TCP-HTR-4KW", Name: "4kW heater element",
			Category: "heating", QuantityInStock: 6, Location: "A-12",
			CompatibleMachines: []string{"M-CURE-01"},
		},
		{
			ID: "P-101", PartNumber: "GEN-TS-K400", Name: "K-type thermocouple",
			Category: "sensors", QuantityInStock: 0, Location: "B-03",
		},
		{
			ID: "P-102", PartNumber: "TBM-BRG-6220", Name: "Drum bearing 6220",
			Category: "bearings", QuantityInStock: 2, Location: "C-07",
		},
	})
	if err != nil {
		t.Fatalf("failed to seed parts: %v", err)
	}
}

func TestAvailableBySkills(t *testing.T) {
	s := newTestStore(t)
	seedTestTechnicians(t, s)

	techs, err := s.AvailableBySkills(context.Background(),
		[]string{"tire_curing_press", "temperature_control"})
	if err != nil {
		t.Fatalf("AvailableBySkills failed: %v", err)
	}

	got := map[string]bool{}
	for _, tech := range techs {
		got[tech.ID] = true
	}
	// T-001 matches by skill, T-002 matches case-insensitively, T-003 has the
	// skill but is unavailable, T-004 has no matching skill.
	if len(techs) != 2 || !got["T-001"] || !got["T-002"] {
		t.Errorf("AvailableBySkills returned %v, want T-001 and T-002", got)
	}
}

func TestAvailableBySkillsNoMatch(t *testing.T) {
	s := newTestStore(t)
	seedTestTechnicians(t, s)

	techs, err := s.AvailableBySkills(context.Background(), []string{"underwater_welding"})
	if err != nil {
		t.Fatalf("AvailableBySkills failed: %v", err)
	}
	if len(techs) != 0 {
		t.Errorf("expected no matches, got %d", len(techs))
	}
}

func TestTechnicianByID(t *testing.T) {
	s := newTestStore(t)
	seedTestTechnicians(t, s)

	tech, err := s.ByID(context.Background(), "T-001", "curing")
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if tech.Name != "Maria Chen" {
		t.Errorf("ByID returned %q, want Maria Chen", tech.Name)
	}

	// Wrong partition behaves like a missing record.
	if _, err := s.ByID(context.Background(), "T-001", "mixing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByID with wrong department = %v, want ErrNotFound", err)
	}
	if _, err := s.ByID(context.Background(), "T-999", "curing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByID for unknown id = %v, want ErrNotFound", err)
	}
}

func TestByPartNumbers(t *testing.T) {
	s := newTestStore(t)
	seedTestParts(t, s)

	parts, err := s.ByPartNumbers(context.Background(),
		[]string{"tcp-htr-4kw", "GEN-TS-K400", "MISSING-001"})
	if err != nil {
		t.Fatalf("ByPartNumbers failed: %v", err)
	}

	// TCP-HTR-4KW found case-insensitively and keyed by its stored number;
	// GEN-TS-K400 is out of stock; MISSING-001 does not exist.
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d: %v", len(parts), parts)
	}
	part, ok := parts["TCP-HTR-4KW"]
	if !ok {
		t.Fatalf("result not keyed by stored part number: %v", parts)
	}
	if part.QuantityInStock != 6 {
		t.Errorf("QuantityInStock = %d, want 6", part.QuantityInStock)
	}
}

func TestByPartNumbersEmptyInput(t *testing.T) {
	s := newTestStore(t)

	parts, err := s.ByPartNumbers(context.Background(), nil)
	if err != nil {
		t.Fatalf("ByPartNumbers failed: %v", err)
	}
	if len(parts) != 0 {
		t.Errorf("expected empty map, got %v", parts)
	}
}

func TestCreateWorkOrder(t *testing.T) {
	s := newTestStore(t)

	wo := &types.WorkOrder{
		ID:              uuid.NewString(),
		WorkOrderNumber: "WO-20260831-AB12",
		MachineID:       "M-CURE-01",
		Title:           "Repair: curing_temperature_excessive",
		Type:            "corrective",
		Priority:        "high",
		Status:          "pending",
		PartsUsed:       []types.WorkOrderPartUsage{},
		Tasks:           []types.RepairTask{},
		FaultID:         "F-1",
		// Deliberately stale timestamps; Create must overwrite them.
		CreatedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	stored, err := s.Create(context.Background(), wo)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if stored.ID != wo.ID {
		t.Errorf("stored id = %q, want %q", stored.ID, wo.ID)
	}
	if time.Since(stored.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt not restamped: %v", stored.CreatedAt)
	}
	if !stored.CreatedAt.Equal(stored.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v", stored.CreatedAt, stored.UpdatedAt)
	}

	_, err = s.Create(context.Background(), wo)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("second Create = %v, want ErrDuplicateID", err)
	}
}

func TestSeedUpserts(t *testing.T) {
	s := newTestStore(t)
	seedTestTechnicians(t, s)
	// Re-seeding the same ids must not fail.
	seedTestTechnicians(t, s)

	tech, err := s.ByID(context.Background(), "T-001", "curing")
	if err != nil {
		t.Fatalf("ByID after reseed failed: %v", err)
	}
	if !tech.Available {
		t.Error("reseed lost availability flag")
	}
}
