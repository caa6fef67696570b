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

// maxAutoSnapshots bounds how many automatic snapshots are kept.
const maxAutoSnapshots = 5

// SnapshotManager copies the database file aside and restores it.
type SnapshotManager struct {
	db           *sql.DB
	dbPath       string
	snapshotsDir string
}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
	IsAuto        bool           `json:"is_auto"`
}

// NewSnapshotManager creates a manager storing snapshots next to dbPath.
func NewSnapshotManager(db *sql.DB, dbPath string) (*SnapshotManager, error) {
	dir := filepath.Join(filepath.Dir(dbPath), "snapshots")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	return &SnapshotManager{
		db:           db,
		dbPath:       dbPath,
		snapshotsDir: dir,
	}, nil
}

func validateSnapshotID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\'";`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidSnapshotID, id)
	}
	return nil
}

func (m *SnapshotManager) paths(id string) (string, string) {
	return filepath.Join(m.snapshotsDir, id+".db"), filepath.Join(m.snapshotsDir, id+".meta.json")
}

// Create writes a consistent copy of the database. An empty tag generates
// one from the current time.
func (m *SnapshotManager) Create(ctx context.Context, tag, description string) (*SnapshotInfo, error) {
	return m.create(ctx, tag, description, false)
}

func (m *SnapshotManager) create(ctx context.Context, tag, description string, auto bool) (*SnapshotInfo, error) {
	if tag == "" {
		tag = fmt.Sprintf("snapshot-%s", time.Now().Format("2006-01-02-150405"))
	}
	if err := validateSnapshotID(tag); err != nil {
		return nil, err
	}

	dbFile, metaFile := m.paths(tag)
	if _, err := os.Stat(dbFile); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotExists, tag)
	}

	var schemaVersion int
	if err := m.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	counts := m.rowCounts(ctx)

	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", dbFile); err != nil {
		return nil, fmt.Errorf("failed to copy database: %w", err)
	}

	stat, err := os.Stat(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	info := SnapshotInfo{
		ID:            tag,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     counts,
		SchemaVersion: schemaVersion,
		IsAuto:        auto,
	}

	if err := writeJSON(metaFile, info); err != nil {
		if rmErr := os.Remove(dbFile); rmErr != nil {
			slog.Error("failed to remove snapshot after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	if err := m.recordMetadata(ctx, info); err != nil {
		slog.Warn("failed to store snapshot metadata in database", "error", err)
	}

	slog.Info("created snapshot", "id", tag, "size", info.FileSize, "auto", auto)
	return &info, nil
}

// Auto takes an automatic snapshot before an operation named by prefix and
// prunes older automatic snapshots.
func (m *SnapshotManager) Auto(ctx context.Context, prefix string) (*SnapshotInfo, error) {
	base := fmt.Sprintf("auto-%s-%s", prefix, time.Now().Format("2006-01-02-150405"))
	tag := base
	for i := 2; ; i++ {
		dbFile, _ := m.paths(tag)
		if _, err := os.Stat(dbFile); os.IsNotExist(err) {
			break
		}
		tag = fmt.Sprintf("%s-%d", base, i)
	}

	info, err := m.create(ctx, tag, "Automatic snapshot before "+prefix, true)
	if err != nil {
		return nil, err
	}

	if err := m.pruneAuto(ctx); err != nil {
		slog.Warn("failed to prune automatic snapshots", "error", err)
	}
	return info, nil
}

// List returns every snapshot, newest first. Unreadable metadata is skipped.
func (m *SnapshotManager) List(_ context.Context) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(m.snapshotsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots directory: %w", err)
	}

	snapshots := make([]SnapshotInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		info, err := readJSON(filepath.Join(m.snapshotsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable snapshot metadata", "file", entry.Name(), "error", err)
			continue
		}
		snapshots = append(snapshots, *info)
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Restore replaces the database file with a snapshot. The manager's
// connection is closed; callers must reopen storage afterwards.
func (m *SnapshotManager) Restore(_ context.Context, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}
	dbFile, metaFile := m.paths(id)

	if _, err := os.Stat(dbFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return fmt.Errorf("failed to access snapshot: %w", err)
	}
	if _, err := readJSON(metaFile); err != nil {
		return fmt.Errorf("failed to load snapshot metadata: %w", err)
	}
	if err := verifyIntegrity(dbFile); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
	}

	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	// Stale WAL pages would be replayed over the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}

	backup := m.dbPath + ".restore-backup"
	if err := copyFile(m.dbPath, backup); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}
	if err := copyFile(dbFile, m.dbPath); err != nil {
		if restoreErr := copyFile(backup, m.dbPath); restoreErr != nil {
			slog.Error("failed to roll back after restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	if err := os.Remove(backup); err != nil {
		slog.Error("failed to remove backup file", "error", err)
	}

	slog.Info("restored snapshot", "id", id)
	return nil
}

// Delete removes a snapshot and its metadata.
func (m *SnapshotManager) Delete(ctx context.Context, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}
	dbFile, metaFile := m.paths(id)

	if err := os.Remove(dbFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}
	if err := os.Remove(metaFile); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "path", metaFile)
	}
	if _, err := m.db.ExecContext(ctx, "DELETE FROM snapshot_metadata WHERE id = ?", id); err != nil {
		slog.Debug("failed to remove snapshot metadata from database", "error", err, "id", id)
	}
	return nil
}

func (m *SnapshotManager) pruneAuto(ctx context.Context) error {
	snapshots, err := m.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, s := range snapshots {
		if !s.IsAuto {
			continue
		}
		kept++
		if kept > maxAutoSnapshots {
			if err := m.Delete(ctx, s.ID); err != nil {
				slog.Debug("failed to delete old automatic snapshot", "error", err, "id", s.ID)
			}
		}
	}
	return nil
}

func (m *SnapshotManager) rowCounts(ctx context.Context) map[string]int {
	queries := map[string]string{
		"accounts":     "SELECT COUNT(*) FROM accounts",
		"categories":   "SELECT COUNT(*) FROM categories",
		"transactions": "SELECT COUNT(*) FROM transactions",
		"records":      "SELECT COUNT(*) FROM records",
	}

	counts := make(map[string]int, len(queries))
	for table, query := range queries {
		var n int
		if err := m.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			slog.Debug("failed to count rows", "table", table, "error", err)
		}
		counts[table] = n
	}
	return counts
}

func (m *SnapshotManager) recordMetadata(ctx context.Context, info SnapshotInfo) error {
	counts, err := json.Marshal(info.RowCounts)
	if err != nil {
		return err
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshot_metadata
		(id, created_at, description, file_size, row_counts, schema_version, is_auto)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.CreatedAt, info.Description, info.FileSize, string(counts), info.SchemaVersion, info.IsAuto)
	return err
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

func writeJSON(path string, info SnapshotInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string) (*SnapshotInfo, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var info SnapshotInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(filepath.Clean(tmp))
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
