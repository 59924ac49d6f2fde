// Package layoutfile stores area layouts as msgpack snapshot files on local disk.
package layoutfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vbonduro/floorplan/internal/domain"
)

const formatVersion = 1

type snapshotFile struct {
	Version     int                `msgpack:"version"`
	AreaID      int64              `msgpack:"area_id"`
	Tables      []tableRecord      `msgpack:"tables"`
	Assignments []assignmentRecord `msgpack:"assignments"`
}

type tableRecord struct {
	ID     string  `msgpack:"id"`
	Shape  string  `msgpack:"shape"`
	Number string  `msgpack:"number"`
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Width  float64 `msgpack:"width"`
	Height float64 `msgpack:"height"`
	Status string  `msgpack:"status"`
}

type assignmentRecord struct {
	TableID   string `msgpack:"table_id"`
	PartySize int    `msgpack:"party_size"`
	GuestRef  string `msgpack:"guest_ref,omitempty"`
}

// FileStore implements floorplan.Gateway with one file per area. An area
// without a file has an empty layout; area existence is owned by the area store.
type FileStore struct {
	basePath string
}

func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create layout directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) LoadArea(ctx context.Context, areaID int64) (*domain.Layout, error) {
	filePath, err := s.safeJoin(fileName(areaID))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return &domain.Layout{Tables: []domain.Table{}, Assignments: []domain.Assignment{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w: %w", domain.ErrStoreUnavailable, err)
	}

	var snap snapshotFile
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode layout %s: %w: %w", filePath, domain.ErrCorruptLayout, err)
	}
	if snap.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported layout version %d in %s", domain.ErrCorruptLayout, snap.Version, filePath)
	}
	return toLayout(&snap)
}

// SaveArea writes the snapshot to a temporary file and renames it into place,
// so readers never observe a partial layout.
func (s *FileStore) SaveArea(ctx context.Context, areaID int64, layout *domain.Layout) error {
	filePath, err := s.safeJoin(fileName(areaID))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(fromLayout(areaID, layout)); err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	f, err := os.CreateTemp(s.basePath, fileName(areaID)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w: %w", domain.ErrStoreUnavailable, err)
	}
	tmpPath := f.Name()
	if _, err := f.Write(buf.Bytes()); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(tmpPath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return fmt.Errorf("failed to write file: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(tmpPath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return fmt.Errorf("failed to close file: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		if rerr := os.Remove(tmpPath); rerr != nil {
			slog.Error("failed to remove file after rename error", "error", rerr)
		}
		return fmt.Errorf("failed to replace layout: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes an area's layout file. Deleting a missing layout is not an error.
func (s *FileStore) Delete(ctx context.Context, areaID int64) error {
	filePath, err := s.safeJoin(fileName(areaID))
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	return nil
}

// safeJoin resolves name relative to basePath and rejects directory traversal.
func (s *FileStore) safeJoin(name string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, name))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}

func fileName(areaID int64) string {
	return fmt.Sprintf("area_%d.msgpack", areaID)
}

func fromLayout(areaID int64, layout *domain.Layout) *snapshotFile {
	snap := &snapshotFile{
		Version:     formatVersion,
		AreaID:      areaID,
		Tables:      make([]tableRecord, 0, len(layout.Tables)),
		Assignments: make([]assignmentRecord, 0, len(layout.Assignments)),
	}
	for _, t := range layout.Tables {
		snap.Tables = append(snap.Tables, tableRecord{
			ID:     t.ID,
			Shape:  t.Shape.String(),
			Number: t.Number,
			X:      t.Position.X,
			Y:      t.Position.Y,
			Width:  t.Width,
			Height: t.Height,
			Status: t.Status.String(),
		})
	}
	for _, a := range layout.Assignments {
		snap.Assignments = append(snap.Assignments, assignmentRecord(a))
	}
	return snap
}

func toLayout(snap *snapshotFile) (*domain.Layout, error) {
	layout := &domain.Layout{
		Tables:      make([]domain.Table, 0, len(snap.Tables)),
		Assignments: make([]domain.Assignment, 0, len(snap.Assignments)),
	}
	for _, r := range snap.Tables {
		status, err := domain.ParseStatus(r.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to decode table %q: %w: %w", r.ID, domain.ErrCorruptLayout, err)
		}
		layout.Tables = append(layout.Tables, domain.Table{
			ID:       r.ID,
			Shape:    domain.ParseShape(r.Shape),
			Number:   r.Number,
			Position: domain.Point{X: r.X, Y: r.Y},
			Width:    r.Width,
			Height:   r.Height,
			Status:   status,
		})
	}
	for _, r := range snap.Assignments {
		layout.Assignments = append(layout.Assignments, domain.Assignment(r))
	}
	return layout, nil
}
