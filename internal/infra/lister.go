package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/capmon/internal/domain"
)

// DirLister implements domain.DirectoryLister over a single directory,
// filtered by file extension.
type DirLister struct {
	dir    string
	ext    string
	logger *zap.Logger
}

// NewDirLister creates a lister for dir, matching files ending in ext.
// The extension may be given with or without the leading dot.
func NewDirLister(dir, ext string, logger *zap.Logger) domain.DirectoryLister {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &DirLister{
		dir:    dir,
		ext:    ext,
		logger: logger,
	}
}

// List enumerates matching files with their size and modification time.
// A failure to read the directory itself is returned as an error; a single
// entry whose stat fails (e.g. deleted between ReadDir and Info) is logged
// and skipped.
func (l *DirLister) List() ([]domain.FileSnapshot, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read scan directory %s: %w", l.dir, err)
	}

	snaps := make([]domain.FileSnapshot, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), l.ext) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Raced deletion between listing and stat.
			l.logger.Warn("failed to stat file, skipping",
				zap.String("name", entry.Name()),
				zap.Error(err))
			continue
		}

		snaps = append(snaps, domain.FileSnapshot{
			Path:    filepath.Join(l.dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return snaps, nil
}

// Ensure DirLister implements domain.DirectoryLister.
var _ domain.DirectoryLister = (*DirLister)(nil)
