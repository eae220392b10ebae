package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"repairplanner/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS technicians (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	department         TEXT NOT NULL,
	skills             TEXT NOT NULL DEFAULT '[]',
	certifications     TEXT NOT NULL DEFAULT '[]',
	available          INTEGER NOT NULL DEFAULT 1,
	current_assignment TEXT NOT NULL DEFAULT '',
	shift_start        TEXT NOT NULL DEFAULT '08:00',
	shift_end          TEXT NOT NULL DEFAULT '16:00'
);
CREATE INDEX IF NOT EXISTS idx_technicians_department ON technicians(department);
CREATE INDEX IF NOT EXISTS idx_technicians_available ON technicians(available);

CREATE TABLE IF NOT EXISTS parts (
	id                  TEXT PRIMARY KEY,
	part_number         TEXT NOT NULL,
	name                TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	category            TEXT NOT NULL DEFAULT '',
	quantity_in_stock   INTEGER NOT NULL DEFAULT 0,
	reorder_level       INTEGER NOT NULL DEFAULT 0,
	unit_cost           REAL NOT NULL DEFAULT 0,
	location            TEXT NOT NULL DEFAULT '',
	compatible_machines TEXT NOT NULL DEFAULT '[]'
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_parts_number_category
	ON parts(part_number COLLATE NOCASE, category);

CREATE TABLE IF NOT EXISTS work_orders (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	document   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_work_orders_status ON work_orders(status);
`

// Local implements TechnicianStore, PartStore, and WorkOrderStore over a
// single SQLite database. Work orders are stored as JSON documents keyed by
// id with status as the partition column.
type Local struct {
	db     *sql.DB
	logger *zap.Logger
}

var (
	_ TechnicianStore = (*Local)(nil)
	_ PartStore       = (*Local)(nil)
	_ WorkOrderStore  = (*Local)(nil)
)

// NewLocal opens (creating if needed) the SQLite database at path and
// bootstraps the schema. Pass ":memory:" for an ephemeral store.
func NewLocal(path string, logger *zap.Logger) (*Local, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logger.Debug("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("local store initialized", zap.String("path", path))
	return &Local{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Local) Close() error {
	return s.db.Close()
}

// AvailableBySkills scans available technicians and keeps those holding at
// least one required skill. The intersection is computed in memory; the
// availability flag is the only indexed filter.
func (s *Local) AvailableBySkills(ctx context.Context, skills []string) ([]types.Technician, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, department, skills, certifications, available,
		       current_assignment, shift_start, shift_end
		FROM technicians WHERE available = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query technicians: %w", err)
	}
	defer rows.Close()

	wanted := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		wanted[strings.ToLower(skill)] = struct{}{}
	}

	var matched []types.Technician
	for rows.Next() {
		tech, err := scanTechnician(rows)
		if err != nil {
			return nil, err
		}
		for _, skill := range tech.Skills {
			if _, ok := wanted[strings.ToLower(skill)]; ok {
				matched = append(matched, *tech)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read technicians: %w", err)
	}

	s.logger.Debug("technician query complete",
		zap.Int("matched", len(matched)),
		zap.Strings("skills", skills))
	return matched, nil
}

// ByID fetches a single technician from its department partition.
func (s *Local) ByID(ctx context.Context, id, department string) (*types.Technician, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, department, skills, certifications, available,
		       current_assignment, shift_start, shift_end
		FROM technicians WHERE id = ? AND department = ?`, id, department)

	tech, err := scanTechnician(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("technician %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return tech, nil
}

// ByPartNumbers fetches in-stock parts for the requested part numbers. Parts
// with zero stock are excluded; missing part numbers are simply absent from
// the result.
func (s *Local) ByPartNumbers(ctx context.Context, partNumbers []string) (map[string]types.Part, error) {
	result := make(map[string]types.Part, len(partNumbers))
	if len(partNumbers) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(partNumbers))
	args := make([]any, len(partNumbers))
	for i, pn := range partNumbers {
		placeholders[i] = "?"
		args[i] = strings.ToLower(pn)
	}

	query := fmt.Sprintf(`
		SELECT id, part_number, name, description, category, quantity_in_stock,
		       reorder_level, unit_cost, location, compatible_machines
		FROM parts
		WHERE lower(part_number) IN (%s) AND quantity_in_stock > 0`,
		strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p types.Part
		var compatible string
		if err := rows.Scan(&p.ID, &p.PartNumber, &p.Name, &p.Description,
			&p.Category, &p.QuantityInStock, &p.ReorderLevel, &p.UnitCost,
			&p.Location, &compatible); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		if err := json.Unmarshal([]byte(compatible), &p.CompatibleMachines); err != nil {
			return nil, fmt.Errorf("corrupt compatible_machines for part %s: %w", p.ID, err)
		}
		result[p.PartNumber] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parts: %w", err)
	}

	s.logger.Debug("parts query complete",
		zap.Int("found", len(result)),
		zap.Int("requested", len(partNumbers)))
	return result, nil
}

// Create inserts a finalized work order. The timestamps set here are
// authoritative and overwrite whatever the caller stamped. The returned
// value is re-read from the database.
func (s *Local) Create(ctx context.Context, wo *types.WorkOrder) (*types.WorkOrder, error) {
	now := time.Now().UTC()
	wo.CreatedAt = now
	wo.UpdatedAt = now

	doc, err := json.Marshal(wo)
	if err != nil {
		return nil, fmt.Errorf("failed to encode work order: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO work_orders (id, status, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		wo.ID, wo.Status, string(doc),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("work order %s: %w", wo.ID, ErrDuplicateID)
		}
		return nil, fmt.Errorf("failed to create work order: %w", err)
	}

	var stored types.WorkOrder
	var raw string
	row := s.db.QueryRowContext(ctx,
		`SELECT document FROM work_orders WHERE id = ?`, wo.ID)
	if err := row.Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to read back work order: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("corrupt work order document %s: %w", wo.ID, err)
	}

	s.logger.Info("work order created",
		zap.String("id", stored.ID),
		zap.String("number", stored.WorkOrderNumber),
		zap.String("status", stored.Status))
	return &stored, nil
}

// SeedTechnicians upserts technician records, replacing existing ids.
func (s *Local) SeedTechnicians(ctx context.Context, technicians []types.Technician) error {
	for _, tech := range technicians {
		skills, err := json.Marshal(tech.Skills)
		if err != nil {
			return fmt.Errorf("failed to encode skills for %s: %w", tech.ID, err)
		}
		certs, err := json.Marshal(tech.Certifications)
		if err != nil {
			return fmt.Errorf("failed to encode certifications for %s: %w", tech.ID, err)
		}
		available := 0
		if tech.Available {
			available = 1
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO technicians
				(id, name, department, skills, certifications, available,
				 current_assignment, shift_start, shift_end)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tech.ID, tech.Name, tech.Department, string(skills), string(certs),
			available, tech.CurrentAssignment, tech.ShiftStart, tech.ShiftEnd)
		if err != nil {
			return fmt.Errorf("failed to seed technician %s: %w", tech.ID, err)
		}
	}
	s.logger.Info("technicians seeded", zap.Int("count", len(technicians)))
	return nil
}

// SeedParts upserts parts inventory records, replacing existing ids.
func (s *Local) SeedParts(ctx context.Context, parts []types.Part) error {
	for _, part := range parts {
		compatible, err := json.Marshal(part.CompatibleMachines)
		if err != nil {
			return fmt.Errorf("failed to encode compatible machines for %s: %w", part.ID, err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO parts
				(id, part_number, name, description, category, quantity_in_stock,
				 reorder_level, unit_cost, location, compatible_machines)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			part.ID, part.PartNumber, part.Name, part.Description, part.Category,
			part.QuantityInStock, part.ReorderLevel, part.UnitCost,
			part.Location, string(compatible))
		if err != nil {
			return fmt.Errorf("failed to seed part %s: %w", part.ID, err)
		}
	}
	s.logger.Info("parts seeded", zap.Int("count", len(parts)))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTechnician(row rowScanner) (*types.Technician, error) {
	var tech types.Technician
	var skills, certs string
	var available int
	if err := row.Scan(&tech.ID, &tech.Name, &tech.Department, &skills, &certs,
		&available, &tech.CurrentAssignment, &tech.ShiftStart, &tech.ShiftEnd); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan technician: %w", err)
	}
	tech.Available = available != 0
	if err := json.Unmarshal([]byte(skills), &tech.Skills); err != nil {
		return nil, fmt.Errorf("corrupt skills for technician %s: %w", tech.ID, err)
	}
	if err := json.Unmarshal([]byte(certs), &tech.Certifications); err != nil {
		return nil, fmt.Errorf("corrupt certifications for technician %s: %w", tech.ID, err)
	}
	return &tech, nil
}
