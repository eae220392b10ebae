package planner

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"repairplanner/internal/types"
)

// resolution carries the outcome of the concurrent technician and inventory
// lookups. Missing parts and an empty technician list are not errors; they
// become prompt warnings and post-hoc corrections.
type resolution struct {
	technicians  []types.Technician
	parts        map[string]types.Part
	missingParts []string
}

// resolveRequirements fetches matching technicians and in-stock parts
// concurrently. Neither result is used until both fetches complete; a
// failure in either aborts the whole request.
func (p *Planner) resolveRequirements(ctx context.Context, requiredSkills, requiredParts []string) (*resolution, error) {
	var (
		technicians []types.Technician
		parts       map[string]types.Part
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		technicians, err = p.technicians.AvailableBySkills(ctx, requiredSkills)
		if err != nil {
			return fmt.Errorf("technician lookup failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		parts, err = p.parts.ByPartNumbers(ctx, requiredParts)
		if err != nil {
			return fmt.Errorf("parts lookup failed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stocked := make(map[string]struct{}, len(parts))
	for number := range parts {
		stocked[strings.ToLower(number)] = struct{}{}
	}
	var missing []string
	for _, number := range requiredParts {
		if _, ok := stocked[strings.ToLower(number)]; !ok {
			missing = append(missing, number)
		}
	}

	return &resolution{
		technicians:  technicians,
		parts:        parts,
		missingParts: missing,
	}, nil
}
