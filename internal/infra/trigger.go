package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eliteGoblin/capmon/internal/domain"
)

// TriggerWriterImpl implements domain.TriggerWriter by creating zero-byte
// marker files in the restart directory. The external supervisor watches
// for these markers, performs the restart, and deletes them; the writer
// never assumes a trigger still exists after it was created.
type TriggerWriterImpl struct {
	dir string
}

// NewTriggerWriter creates a trigger writer for the given directory.
func NewTriggerWriter(dir string) domain.TriggerWriter {
	return &TriggerWriterImpl{dir: dir}
}

// TriggerPath returns the trigger file path for an app.
func (w *TriggerWriterImpl) TriggerPath(app string) string {
	return filepath.Join(w.dir, app+".restart")
}

// WriteTrigger creates {app}.restart, succeeding silently if it already
// exists. Opening with O_CREATE and no truncation leaves an existing
// trigger's content and mtime-relevant state alone, which makes repeated
// writes idempotent.
func (w *TriggerWriterImpl) WriteTrigger(app string) error {
	f, err := os.OpenFile(w.TriggerPath(app), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("create restart trigger for %s: %w", app, err)
	}
	return f.Close()
}

// Ensure TriggerWriterImpl implements domain.TriggerWriter.
var _ domain.TriggerWriter = (*TriggerWriterImpl)(nil)
