// =============================================================================
// Invoice Report Automation - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the pipeline:
//   - Directory creation for output files
//   - File existence checks
//   - Archival of the input file and the report after a successful run
//
// ARCHIVAL STRATEGY:
//   - Files are copied, not moved. The input path is fixed in the
//     configuration, so the next run still finds its file.
//   - Archived names carry the run timestamp and a short unique suffix so
//     that two runs in the same second never collide:
//       invoice_data_20250201_093015_1a2b3c4d.xlsx
//   - With UseTimestampSubdirs, copies are grouped as archive/2025/02/01/.
//   - Retention is handled by CleanOldArchives.
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArchiveTimestampLayout is the timestamp embedded in archived file names.
const ArchiveTimestampLayout = "20060102_150405"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager archives pipeline files.
type FileManager struct {
	// ArchiveDir receives the copies.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	UseTimestampSubdirs bool

	// now is the clock used for names and subdirectories.
	now func() time.Time
}

// NewFileManager creates a FileManager that archives into archiveDir.
func NewFileManager(archiveDir string) *FileManager {
	return &FileManager{ArchiveDir: archiveDir, now: time.Now}
}

// WithClock sets the clock used for archive names.
func (fm *FileManager) WithClock(now func() time.Time) *FileManager {
	fm.now = now
	return fm
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveFile copies a file into the archive directory.
//
// PARAMETERS:
//   - filePath: The file to archive. It is left in place.
//
// RETURNS:
//   - The path of the archived copy.
//   - An error if the source cannot be read or the copy cannot be written.
func (fm *FileManager) ArchiveFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return "", fmt.Errorf("archive directory is not configured")
	}

	archivePath := fm.archivePath(filePath)

	if err := EnsureDir(filepath.Dir(archivePath)); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// archivePath constructs the archive path for a file.
func (fm *FileManager) archivePath(filePath string) string {
	now := fm.now()
	dir := fm.ArchiveDir

	if fm.UseTimestampSubdirs {
		dir = filepath.Join(
			dir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}

	return filepath.Join(dir, ArchiveFileName(filePath, now))
}

// ArchiveFileName returns "<stem>_<timestamp>_<id><ext>" for filePath.
func ArchiveFileName(filePath string, at time.Time) string {
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%s_%s%s", stem, at.Format(ArchiveTimestampLayout), suffix, ext)
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// EnsureDir creates dir and its parents. "" and "." are no-ops.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureParentDir creates the directory that will contain path.
func EnsureParentDir(path string) error {
	return EnsureDir(filepath.Dir(path))
}

// FileExists checks if a regular file exists at path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// CleanOldArchives removes archive files older than maxAge.
//
// PARAMETERS:
//   - archiveDir: The archive directory to clean. A missing directory is
//     not an error.
//   - maxAge: The maximum age of files to keep.
//   - now: The reference time.
//
// RETURNS:
//   - The number of files removed.
//   - An error if cleaning fails.
func CleanOldArchives(archiveDir string, maxAge time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-maxAge)
	removed := 0

	err := filepath.WalkDir(archiveDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == archiveDir {
				return filepath.SkipAll
			}
			return err
		}

		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}

		return nil
	})

	if err != nil {
		return removed, fmt.Errorf("failed to clean archives: %w", err)
	}

	return removed, nil
}
