// Package faultmap maps tire-manufacturing fault types to the skills and
// spare parts a repair needs. The tables are fixed at build time; lookups
// are case-insensitive and never fail; an unknown fault type falls back to
// general maintenance with no specific parts.
package faultmap

import "strings"

var defaultSkills = []string{"general_maintenance"}

var faultToSkills = map[string][]string{
	"curing_temperature_excessive": {
		"tire_curing_press", "temperature_control", "instrumentation",
		"electrical_systems", "plc_troubleshooting", "mold_maintenance",
	},
	"curing_cycle_time_deviation": {
		"tire_curing_press", "plc_troubleshooting", "mold_maintenance",
		"bladder_replacement", "hydraulic_systems", "instrumentation",
	},
	"building_drum_vibration": {
		"tire_building_machine", "vibration_analysis", "bearing_replacement",
		"alignment", "precision_alignment", "drum_balancing", "mechanical_systems",
	},
	"ply_tension_excessive": {
		"tire_building_machine", "tension_control", "servo_systems",
		"precision_alignment", "sensor_alignment", "plc_programming",
	},
	"extruder_barrel_overheating": {
		"tire_extruder", "temperature_control", "rubber_processing",
		"screw_maintenance", "instrumentation", "electrical_systems", "motor_drives",
	},
	"low_material_throughput": {
		"tire_extruder", "rubber_processing", "screw_maintenance",
		"motor_drives", "temperature_control",
	},
	"high_radial_force_variation": {
		"tire_uniformity_machine", "data_analysis", "measurement_systems",
		"tire_building_machine", "tire_curing_press",
	},
	"load_cell_drift": {
		"tire_uniformity_machine", "load_cell_calibration", "measurement_systems",
		"sensor_alignment", "instrumentation",
	},
	"mixing_temperature_excessive": {
		"banbury_mixer", "temperature_control", "rubber_processing",
		"instrumentation", "electrical_systems", "mechanical_systems",
	},
	"excessive_mixer_vibration": {
		"banbury_mixer", "vibration_analysis", "bearing_replacement",
		"alignment", "mechanical_systems", "preventive_maintenance",
	},
}

var faultToParts = map[string][]string{
	"curing_temperature_excessive": {"TCP-HTR-4KW", "GEN-TS-K400"},
	"curing_cycle_time_deviation":  {"TCP-BLD-800", "TCP-SEAL-200"},
	"building_drum_vibration":      {"TBM-BRG-6220"},
	"ply_tension_excessive":        {"TBM-LS-500N", "TBM-SRV-5KW"},
	"extruder_barrel_overheating":  {"EXT-HTR-BAND", "GEN-TS-K400"},
	"low_material_throughput":      {"EXT-SCR-250", "EXT-DIE-TR"},
	"high_radial_force_variation":  {},
	"load_cell_drift":              {"TUM-LC-2KN", "TUM-ENC-5000"},
	"mixing_temperature_excessive": {"BMX-TIP-500", "GEN-TS-K400"},
	"excessive_mixer_vibration":    {"BMX-BRG-22320", "BMX-SEAL-DP"},
}

// RequiredSkills returns the skills needed to repair the given fault type.
// Unknown or blank fault types map to general_maintenance.
func RequiredSkills(faultType string) []string {
	key := normalize(faultType)
	if key == "" {
		return clone(defaultSkills)
	}
	if skills, ok := faultToSkills[key]; ok {
		return clone(skills)
	}
	return clone(defaultSkills)
}

// RequiredParts returns the part numbers typically consumed repairing the
// given fault type. Unknown or blank fault types map to no parts.
func RequiredParts(faultType string) []string {
	key := normalize(faultType)
	if key == "" {
		return []string{}
	}
	if parts, ok := faultToParts[key]; ok {
		return clone(parts)
	}
	return []string{}
}

func normalize(faultType string) string {
	return strings.ToLower(strings.TrimSpace(faultType))
}

// clone keeps callers from mutating the package tables through the
// returned slice.
func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
