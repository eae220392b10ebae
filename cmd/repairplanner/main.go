package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"repairplanner/internal/config"
	"repairplanner/internal/faultmap"
	"repairplanner/internal/llm"
	"repairplanner/internal/planner"
	"repairplanner/internal/store"
	"repairplanner/internal/types"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "repairplanner",
	Short: "Repair work order planner for tire manufacturing equipment",
	Long: `repairplanner turns diagnosed equipment faults into repair work orders.

For each fault it maps the fault type to required skills and parts, resolves
available technicians and inventory, asks a Gemini model for a repair plan,
reconciles the reply against deterministic business rules, and persists the
resulting work order.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zapCfg := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// planCmd plans a work order for a single diagnosed fault
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a repair work order for a diagnosed fault",
	Long: `Reads a diagnosed fault from a JSON file, runs the planning pipeline,
and prints the persisted work order as JSON.

Example:
  repairplanner plan --fault fault.json`,
	RunE: runPlan,
}

// seedCmd loads technician and parts fixtures into the local store
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the local store with technicians and parts",
	Long: `Loads technician and parts inventory records from YAML files into the
SQLite store. Existing records with the same id are replaced.

Example:
  repairplanner seed --technicians technicians.yaml --parts parts.yaml`,
	RunE: runSeed,
}

// schemaCmd prints the structured-output schema sent to the model
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the work order response schema enforced on model output",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(llm.WorkOrderResponseSchema(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var (
	faultPath       string
	techniciansPath string
	partsPath       string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "repairplanner.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	planCmd.Flags().StringVar(&faultPath, "fault", "", "path to the diagnosed fault JSON file (required)")
	_ = planCmd.MarkFlagRequired("fault")

	seedCmd.Flags().StringVar(&techniciansPath, "technicians", "", "path to a technicians YAML file")
	seedCmd.Flags().StringVar(&partsPath, "parts", "", "path to a parts inventory YAML file")

	rootCmd.AddCommand(planCmd, seedCmd, schemaCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fault, err := loadFault(faultPath)
	if err != nil {
		return err
	}

	local, err := store.NewLocal(cfg.Store.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer local.Close()

	client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
		APIKey:          cfg.LLM.APIKey,
		Model:           cfg.LLM.Model,
		Timeout:         cfg.LLM.TimeoutDuration(),
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	}, logger)
	if err != nil {
		return err
	}

	p := planner.New(local, local, local, client, logger)
	wo, err := p.PlanWorkOrder(ctx, fault)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(wo, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode work order: %w", err)
	}
	fmt.Println(string(out))

	fmt.Printf("\nWork order %s created (priority %s, status %s)\n",
		wo.WorkOrderNumber, wo.Priority, wo.Status)
	if wo.AssignedTo != "" {
		if name := assigneeName(ctx, local, fault, wo.AssignedTo); name != "" {
			fmt.Printf("Assigned to %s (%s)\n", name, wo.AssignedTo)
		} else {
			fmt.Printf("Assigned to %s\n", wo.AssignedTo)
		}
	} else {
		fmt.Println("No technician assigned; manual assignment required")
	}
	return nil
}

// assigneeName resolves the display name of the assigned technician from the
// same candidate pool the planner drew on. Best effort only.
func assigneeName(ctx context.Context, local *store.Local, fault types.DiagnosedFault, id string) string {
	candidates, err := local.AvailableBySkills(ctx, faultmap.RequiredSkills(fault.FaultType))
	if err != nil {
		return ""
	}
	for _, tech := range candidates {
		if strings.EqualFold(tech.ID, id) {
			return tech.Name
		}
	}
	return ""
}

func loadFault(path string) (types.DiagnosedFault, error) {
	var fault types.DiagnosedFault
	data, err := os.ReadFile(path)
	if err != nil {
		return fault, fmt.Errorf("failed to read fault file: %w", err)
	}
	if err := json.Unmarshal(data, &fault); err != nil {
		return fault, fmt.Errorf("failed to parse fault file %s: %w", path, err)
	}
	if fault.ID == "" || fault.MachineID == "" {
		return fault, fmt.Errorf("fault file %s: id and machineId are required", path)
	}
	return fault, nil
}

// technicianFixture mirrors types.Technician for YAML seed files.
type technicianFixture struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	Department        string   `yaml:"department"`
	Skills            []string `yaml:"skills"`
	Certifications    []string `yaml:"certifications"`
	Available         bool     `yaml:"available"`
	CurrentAssignment string   `yaml:"current_assignment"`
	ShiftStart        string   `yaml:"shift_start"`
	ShiftEnd          string   `yaml:"shift_end"`
}

// partFixture mirrors types.Part for YAML seed files.
type partFixture struct {
	ID                 string   `yaml:"id"`
	PartNumber         string   `yaml:"part_number"`
	Name               string   `yaml:"name"`
	Description        string   `yaml:"description"`
	Category           string   `yaml:"category"`
	QuantityInStock    int      `yaml:"quantity_in_stock"`
	ReorderLevel       int      `yaml:"reorder_level"`
	UnitCost           float64  `yaml:"unit_cost"`
	Location           string   `yaml:"location"`
	CompatibleMachines []string `yaml:"compatible_machines"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	if techniciansPath == "" && partsPath == "" {
		return fmt.Errorf("nothing to seed: pass --technicians and/or --parts")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, err := store.NewLocal(cfg.Store.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer local.Close()

	if techniciansPath != "" {
		var fixtures []technicianFixture
		if err := loadYAML(techniciansPath, &fixtures); err != nil {
			return err
		}
		technicians := make([]types.Technician, len(fixtures))
		for i, f := range fixtures {
			technicians[i] = types.Technician{
				ID:                f.ID,
				Name:              f.Name,
				Department:        f.Department,
				Skills:            f.Skills,
				Certifications:    f.Certifications,
				Available:         f.Available,
				CurrentAssignment: f.CurrentAssignment,
				ShiftStart:        f.ShiftStart,
				ShiftEnd:          f.ShiftEnd,
			}
		}
		if err := local.SeedTechnicians(ctx, technicians); err != nil {
			return err
		}
		fmt.Printf("Seeded %d technicians\n", len(technicians))
	}

	if partsPath != "" {
		var fixtures []partFixture
		if err := loadYAML(partsPath, &fixtures); err != nil {
			return err
		}
		parts := make([]types.Part, len(fixtures))
		for i, f := range fixtures {
			parts[i] = types.Part{
				ID:                 f.ID,
				PartNumber:         f.PartNumber,
				Name:               f.Name,
				Description:        f.Description,
				Category:           f.Category,
				QuantityInStock:    f.QuantityInStock,
				ReorderLevel:       f.ReorderLevel,
				UnitCost:           f.UnitCost,
				Location:           f.Location,
				CompatibleMachines: f.CompatibleMachines,
			}
		}
		if err := local.SeedParts(ctx, parts); err != nil {
			return err
		}
		fmt.Printf("Seeded %d parts\n", len(parts))
	}
	return nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
