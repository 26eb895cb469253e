package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Snapshot errors.
var (
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrSnapshotCorrupted = errors.New("snapshot integrity check failed")
	ErrSnapshotExists    = errors.New("snapshot already exists")
	ErrInvalidSnapshotID = errors.New("invalid snapshot id")
)

// maxAutoSnapshots is how many automatic snapshots are kept.
const maxAutoSnapshots = 5

// SnapshotInfo describes a saved copy of the database.
type SnapshotInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
	IsAuto        bool           `json:"is_auto"`
}

// SnapshotManager saves and restores copies of the database file. Snapshots
// live next to the database in a snapshots directory, each as a .db file
// with a .meta.json sidecar.
type SnapshotManager struct {
	db  *sql.DB
	dir string
	now func() time.Time
	src string
}

// NewSnapshotManager creates a snapshot manager for this storage instance.
func (s *SQLiteStorage) NewSnapshotManager() (*SnapshotManager, error) {
	dir := filepath.Join(filepath.Dir(s.dbPath), "snapshots")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve snapshots directory: %w", err)
	}
	return &SnapshotManager{db: s.db, dir: abs, src: s.dbPath, now: time.Now}, nil
}

func validateSnapshotID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\'";`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidSnapshotID, id)
	}
	return nil
}

func (m *SnapshotManager) paths(id string) (dbPath, metaPath string) {
	return filepath.Join(m.dir, id+".db"), filepath.Join(m.dir, id+".meta.json")
}

// Create writes a consistent copy of the database. An empty id generates one
// from the current time.
func (m *SnapshotManager) Create(ctx context.Context, id, description string) (*SnapshotInfo, error) {
	return m.create(ctx, id, description, false)
}

// Auto takes an automatic snapshot before a bulk change and prunes older
// automatic snapshots beyond the retention limit.
func (m *SnapshotManager) Auto(ctx context.Context, operation string) (*SnapshotInfo, error) {
	id := fmt.Sprintf("auto-%s-%s", operation, m.now().Format("20060102-150405.000"))
	info, err := m.create(ctx, strings.ReplaceAll(id, ".", ""), "Automatic snapshot before "+operation, true)
	if err != nil {
		return nil, err
	}

	if err := m.prune(ctx); err != nil {
		slog.Warn("failed to prune automatic snapshots", "error", err)
	}
	return info, nil
}

func (m *SnapshotManager) create(ctx context.Context, id, description string, auto bool) (*SnapshotInfo, error) {
	if id == "" {
		id = "snapshot-" + m.now().Format("2006-01-02-150405")
	}
	if err := validateSnapshotID(id); err != nil {
		return nil, err
	}

	dbPath, metaPath := m.paths(id)
	if _, err := os.Stat(dbPath); err == nil {
		return nil, ErrSnapshotExists
	}

	var version int
	if err := m.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	counts := m.rowCounts(ctx)

	// #nosec G201 - dbPath is built from a validated id inside the snapshots directory
	if _, err := m.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dbPath)); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	info := &SnapshotInfo{
		ID:            id,
		CreatedAt:     m.now(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     counts,
		SchemaVersion: version,
		IsAuto:        auto,
	}
	if err := writeJSONAtomic(metaPath, info); err != nil {
		if rmErr := os.Remove(dbPath); rmErr != nil {
			slog.Error("failed to remove snapshot after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save snapshot metadata: %w", err)
	}

	slog.Info("Created snapshot", "id", id, "size", info.FileSize, "auto", auto)
	return info, nil
}

func (m *SnapshotManager) rowCounts(ctx context.Context) map[string]int {
	queries := map[string]string{
		"accounts":          "SELECT COUNT(*) FROM accounts",
		"categories":        "SELECT COUNT(*) FROM categories",
		"transactions":      "SELECT COUNT(*) FROM transactions",
		"budgets":           "SELECT COUNT(*) FROM budgets",
		"income_schedules":  "SELECT COUNT(*) FROM income_schedules",
		"category_keywords": "SELECT COUNT(*) FROM category_keywords",
	}

	counts := make(map[string]int, len(queries))
	for table, query := range queries {
		var n int
		if err := m.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			continue
		}
		counts[table] = n
	}
	return counts
}

// List returns snapshots, newest first. Unreadable metadata is skipped.
func (m *SnapshotManager) List(_ context.Context) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots directory: %w", err)
	}

	var out []SnapshotInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		info, err := readSnapshotInfo(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable snapshot metadata", "file", entry.Name(), "error", err)
			continue
		}
		out = append(out, *info)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Restore replaces the database file with a snapshot. The storage that owns
// the manager is closed first and must be reopened by the caller.
func (m *SnapshotManager) Restore(_ context.Context, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}

	dbPath, _ := m.paths(id)
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to access snapshot: %w", err)
	}

	if err := verifyIntegrity(dbPath); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
	}

	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// Stale WAL files would be replayed over the restored copy.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.src + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}

	return copyFileAtomic(dbPath, m.src)
}

// Delete removes a snapshot and its metadata.
func (m *SnapshotManager) Delete(_ context.Context, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}

	dbPath, metaPath := m.paths(id)
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	if err := os.Remove(metaPath); err != nil {
		slog.Debug("failed to remove snapshot metadata", "error", err, "path", metaPath)
	}
	return nil
}

func (m *SnapshotManager) prune(ctx context.Context) error {
	snapshots, err := m.List(ctx)
	if err != nil {
		return err
	}

	var kept int
	for _, snap := range snapshots {
		if !snap.IsAuto {
			continue
		}
		kept++
		if kept > maxAutoSnapshots {
			if err := m.Delete(ctx, snap.ID); err != nil {
				slog.Debug("failed to delete old automatic snapshot", "id", snap.ID, "error", err)
			}
		}
	}
	return nil
}

func readSnapshotInfo(path string) (*SnapshotInfo, error) {
	// #nosec G304 - path comes from a directory listing of the snapshots directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info SnapshotInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

func copyFileAtomic(src, dst string) error {
	// #nosec G304 - src is a validated snapshot path
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp := dst + ".tmp"
	// #nosec G304 - dst is the configured database path
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
