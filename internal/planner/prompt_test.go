package planner

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairplanner/internal/types"
)

func testResolution() *resolution {
	return &resolution{
		technicians: []types.Technician{
			{
				ID: "T-001", Name: "Maria Chen", Department: "curing",
				Skills: []string{"tire_curing_press", "PLC_Troubleshooting", "forklift"},
			},
		},
		parts: map[string]types.Part{
			"TCP-HTR-4KW": {
				ID: "P-100", PartNumber: "TCP-HTR-4KW",
				Name: "4kW heater element", QuantityInStock: 6, Location: "A-12",
			},
		},
	}
}

func TestBuildPromptEmbedsFaultDetails(t *testing.T) {
	fault := testFault()
	prompt := buildPrompt(fault, testResolution(), []string{"tire_curing_press"})

	assert.Contains(t, prompt, "- Fault ID: F-42")
	assert.Contains(t, prompt, "- Machine ID: M-CURE-01")
	assert.Contains(t, prompt, "- Severity: high")
	assert.Contains(t, prompt, "- Root Cause: Failing heater element")
	assert.Contains(t, prompt, "Replace heater element; Verify thermocouple calibration")
	assert.Contains(t, prompt, "- Diagnosed At: 2026-08-31 09:30:00 UTC")
	assert.Contains(t, prompt, "## Required Skills for this Fault Type\ntire_curing_press")
	assert.Contains(t, prompt, "Generate a complete work order JSON response.")
}

func TestBuildPromptTechnicianSummaryJSON(t *testing.T) {
	fault := testFault()
	requiredSkills := []string{"tire_curing_press", "plc_troubleshooting"}
	prompt := buildPrompt(fault, testResolution(), requiredSkills)

	// The technician block must be machine-readable JSON with the computed
	// skill-match count (case-insensitive: both skills match).
	start := strings.Index(prompt, "## Available Technicians\n")
	require.Greater(t, start, -1)
	block := prompt[start+len("## Available Technicians\n"):]
	block = block[:strings.Index(block, "\n\n")]

	var summaries []technicianSummary
	require.NoError(t, json.Unmarshal([]byte(block), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "T-001", summaries[0].ID)
	assert.Equal(t, 2, summaries[0].MatchingSkills)
}

func TestBuildPromptPartSummary(t *testing.T) {
	fault := testFault()
	prompt := buildPrompt(fault, testResolution(), []string{"tire_curing_press"})

	assert.Contains(t, prompt, `"partNumber":"TCP-HTR-4KW"`)
	assert.Contains(t, prompt, `"quantityInStock":6`)
	assert.Contains(t, prompt, `"location":"A-12"`)
}

func TestBuildPromptNoWarningsWhenResolved(t *testing.T) {
	fault := testFault()
	prompt := buildPrompt(fault, testResolution(), []string{"tire_curing_press"})

	assert.NotContains(t, prompt, "## Warnings")
	assert.NotContains(t, prompt, "WARNING:")
}

func TestBuildPromptWarnings(t *testing.T) {
	fault := testFault()
	res := &resolution{
		technicians:  nil,
		parts:        map[string]types.Part{},
		missingParts: []string{"TCP-HTR-4KW", "GEN-TS-K400"},
	}
	prompt := buildPrompt(fault, res, []string{"tire_curing_press"})

	assert.Contains(t, prompt, "(No technicians available)")
	assert.Contains(t, prompt, "(No parts in inventory)")
	assert.Contains(t, prompt, "## Warnings")
	assert.Contains(t, prompt, "Leave assignedTo as null")
	assert.Contains(t, prompt, "not in stock: TCP-HTR-4KW, GEN-TS-K400")
}

func TestBuildPromptDeterministic(t *testing.T) {
	fault := testFault()
	res := testResolution()
	// Multiple parts exercise the sorted map iteration.
	res.parts["BMX-TIP-500"] = types.Part{ID: "P-200", PartNumber: "BMX-TIP-500"}
	res.parts["EXT-SCR-250"] = types.Part{ID: "P-300", PartNumber: "EXT-SCR-250"}

	first := buildPrompt(fault, res, []string{"tire_curing_press"})
	for i := 0; i < 8; i++ {
		assert.Equal(t, first, buildPrompt(fault, res, []string{"tire_curing_press"}))
	}
}
