package planner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"repairplanner/internal/types"
)

const (
	noTechnicianWarning = "WARNING: No technicians are currently available with the required skills. " +
		"Leave assignedTo as null. Add a note about needing to find qualified personnel."

	missingPartsWarningFmt = "WARNING: The following required parts are not in stock: %s. " +
		"Include a note about ordering these parts."
)

// technicianSummary is the machine-readable candidate entry embedded in the
// prompt. MatchingSkills counts how many required skills the candidate holds.
type technicianSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Skills         []string `json:"skills"`
	Department     string   `json:"department"`
	MatchingSkills int      `json:"matchingSkills"`
}

type partSummary struct {
	ID              string `json:"id"`
	PartNumber      string `json:"partNumber"`
	Name            string `json:"name"`
	QuantityInStock int    `json:"quantityInStock"`
	Location        string `json:"location"`
}

// buildPrompt composes the plan request: fault details, candidate
// technicians and parts as embedded JSON, the required skills, and warnings
// for missing resources. Pure function of its inputs.
func buildPrompt(fault types.DiagnosedFault, res *resolution, requiredSkills []string) string {
	required := make(map[string]struct{}, len(requiredSkills))
	for _, skill := range requiredSkills {
		required[strings.ToLower(skill)] = struct{}{}
	}

	techSummaries := make([]technicianSummary, 0, len(res.technicians))
	for _, tech := range res.technicians {
		matching := 0
		for _, skill := range tech.Skills {
			if _, ok := required[strings.ToLower(skill)]; ok {
				matching++
			}
		}
		techSummaries = append(techSummaries, technicianSummary{
			ID:             tech.ID,
			Name:           tech.Name,
			Skills:         tech.Skills,
			Department:     tech.Department,
			MatchingSkills: matching,
		})
	}

	// Map iteration order is random; sort by part number so identical inputs
	// produce identical prompts.
	numbers := make([]string, 0, len(res.parts))
	for number := range res.parts {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)
	partSummaries := make([]partSummary, 0, len(numbers))
	for _, number := range numbers {
		part := res.parts[number]
		partSummaries = append(partSummaries, partSummary{
			ID:              part.ID,
			PartNumber:      part.PartNumber,
			Name:            part.Name,
			QuantityInStock: part.QuantityInStock,
			Location:        part.Location,
		})
	}

	techBlock := "(No technicians available)"
	if len(techSummaries) > 0 {
		if data, err := json.Marshal(techSummaries); err == nil {
			techBlock = string(data)
		}
	}
	partsBlock := "(No parts in inventory)"
	if len(partSummaries) > 0 {
		if data, err := json.Marshal(partSummaries); err == nil {
			partsBlock = string(data)
		}
	}

	var warnings []string
	if len(res.technicians) == 0 {
		warnings = append(warnings, noTechnicianWarning)
	}
	if len(res.missingParts) > 0 {
		warnings = append(warnings,
			fmt.Sprintf(missingPartsWarningFmt, strings.Join(res.missingParts, ", ")))
	}

	var b strings.Builder
	b.WriteString("Create a repair work order for the following diagnosed fault:\n\n")
	b.WriteString("## Fault Details\n")
	fmt.Fprintf(&b, "- Fault ID: %s\n", fault.ID)
	fmt.Fprintf(&b, "- Machine ID: %s\n", fault.MachineID)
	fmt.Fprintf(&b, "- Machine Name: %s\n", fault.MachineName)
	fmt.Fprintf(&b, "- Fault Type: %s\n", fault.FaultType)
	fmt.Fprintf(&b, "- Severity: %s\n", fault.Severity)
	fmt.Fprintf(&b, "- Description: %s\n", fault.Description)
	fmt.Fprintf(&b, "- Root Cause: %s\n", fault.RootCause)
	fmt.Fprintf(&b, "- Recommended Actions: %s\n", strings.Join(fault.RecommendedActions, "; "))
	fmt.Fprintf(&b, "- Diagnosed At: %s UTC\n", fault.DiagnosedAt.UTC().Format("2006-01-02 15:04:05"))
	b.WriteString("\n## Available Technicians\n")
	b.WriteString(techBlock)
	b.WriteString("\n\n## Parts Inventory\n")
	b.WriteString(partsBlock)
	b.WriteString("\n\n## Required Skills for this Fault Type\n")
	b.WriteString(strings.Join(requiredSkills, ", "))
	b.WriteString("\n")
	if len(warnings) > 0 {
		b.WriteString("\n## Warnings\n")
		for _, warning := range warnings {
			b.WriteString(warning)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nGenerate a complete work order JSON response.")
	return b.String()
}
