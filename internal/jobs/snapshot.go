package jobs

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// SnapshotResult はアーカイブ作成の結果です。
type SnapshotResult struct {
	ArchivePath string
	ArchiveSize int64
	FileCount   int
}

// Archiver はワークスペース全体をZIPアーカイブに書き出します。
type Archiver struct {
	workspaceRoot string
	snapshotDir   string
}

// NewArchiver は Archiver を作成します。
func NewArchiver(workspaceRoot, snapshotDir string) *Archiver {
	return &Archiver{
		workspaceRoot: workspaceRoot,
		snapshotDir:   snapshotDir,
	}
}

// Snapshot はワークスペースを <snapshotDir>/<jobID>.zip に書き出します。
func (a *Archiver) Snapshot(jobID string) (*SnapshotResult, error) {
	if err := os.MkdirAll(a.snapshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare snapshot dir: %w", err)
	}

	archivePath := filepath.Join(a.snapshotDir, jobID+".zip")
	out, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	fileCount := 0

	walkErr := filepath.WalkDir(a.workspaceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(a.workspaceRoot, path)
		if err != nil {
			return err
		}

		entry, err := writer.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		if _, err := io.Copy(entry, src); err != nil {
			return err
		}
		fileCount++
		return nil
	})
	if walkErr != nil {
		writer.Close()
		_ = os.Remove(archivePath)
		return nil, walkErr
	}

	if err := writer.Close(); err != nil {
		_ = os.Remove(archivePath)
		return nil, err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, err
	}

	return &SnapshotResult{
		ArchivePath: archivePath,
		ArchiveSize: info.Size(),
		FileCount:   fileCount,
	}, nil
}
