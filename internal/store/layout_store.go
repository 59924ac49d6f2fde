package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/floorplan/internal/domain"
)

// LayoutStore persists the tables and seated parties of each area. It
// implements floorplan.Gateway.
type LayoutStore struct {
	db *sql.DB
}

func NewLayoutStore(db *sql.DB) *LayoutStore {
	return &LayoutStore{db: db}
}

func (s *LayoutStore) LoadArea(ctx context.Context, areaID int64) (*domain.Layout, error) {
	if err := s.requireArea(ctx, s.db, areaID); err != nil {
		return nil, err
	}

	tables, err := s.loadTables(ctx, areaID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.loadAssignments(ctx, areaID)
	if err != nil {
		return nil, err
	}
	return &domain.Layout{Tables: tables, Assignments: assignments}, nil
}

func (s *LayoutStore) loadTables(ctx context.Context, areaID int64) ([]domain.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, shape, table_number, x, y, width, height, status FROM floor_tables
		WHERE area_id = ? ORDER BY paint_order ASC
	`, areaID)
	if err != nil {
		return nil, unavailable("failed to list tables", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	tables := []domain.Table{}
	for rows.Next() {
		var (
			t             domain.Table
			shape, status string
		)
		if err := rows.Scan(&t.ID, &shape, &t.Number, &t.Position.X, &t.Position.Y, &t.Width, &t.Height, &status); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		t.Shape = domain.ParseShape(shape)
		if t.Status, err = domain.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("failed to scan table %q: %w: %w", t.ID, domain.ErrCorruptLayout, err)
		}
		tables = append(tables, t)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("error iterating tables", err)
	}
	return tables, nil
}

func (s *LayoutStore) loadAssignments(ctx context.Context, areaID int64) ([]domain.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.table_id, a.party_size, a.guest_ref FROM table_assignments a
		JOIN floor_tables t ON t.area_id = a.area_id AND t.id = a.table_id
		WHERE a.area_id = ? ORDER BY t.paint_order ASC
	`, areaID)
	if err != nil {
		return nil, unavailable("failed to list assignments", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	assignments := []domain.Assignment{}
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.TableID, &a.PartySize, &a.GuestRef); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("error iterating assignments", err)
	}
	return assignments, nil
}

// SaveArea replaces the area's layout in a single transaction, so saving the
// same layout twice leaves the same rows behind.
func (s *LayoutStore) SaveArea(ctx context.Context, areaID int64, layout *domain.Layout) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				slog.Error("failed to roll back layout save", "area_id", areaID, "error", rerr)
			}
		}
	}()

	if err = s.requireArea(ctx, tx, areaID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM table_assignments WHERE area_id = ?`, areaID); err != nil {
		return unavailable("failed to clear assignments", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM floor_tables WHERE area_id = ?`, areaID); err != nil {
		return unavailable("failed to clear tables", err)
	}

	for i, t := range layout.Tables {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO floor_tables (area_id, id, paint_order, shape, table_number, x, y, width, height, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, areaID, t.ID, i, t.Shape.String(), t.Number, t.Position.X, t.Position.Y, t.Width, t.Height, t.Status.String()); err != nil {
			return fmt.Errorf("failed to insert table %q: %w", t.ID, err)
		}
	}

	for _, a := range layout.Assignments {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO table_assignments (area_id, table_id, party_size, guest_ref) VALUES (?, ?, ?, ?)
		`, areaID, a.TableID, a.PartySize, a.GuestRef); err != nil {
			return fmt.Errorf("failed to insert assignment for table %q: %w", a.TableID, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `UPDATE areas SET updated_at = datetime('now') WHERE id = ?`, areaID); err != nil {
		return unavailable("failed to touch area", err)
	}

	if err = tx.Commit(); err != nil {
		return unavailable("failed to commit layout", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *LayoutStore) requireArea(ctx context.Context, q queryer, areaID int64) error {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM areas WHERE id = ?`, areaID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", domain.ErrAreaNotFound, areaID)
	}
	if err != nil {
		return unavailable("failed to get area", err)
	}
	return nil
}

func unavailable(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrStoreUnavailable, err)
}
