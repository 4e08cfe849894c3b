package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eliteGoblin/capmon/internal/domain"
)

const registryDir = "/var/tmp"

// FileRegistry implements domain.DaemonRegistry using a JSON file.
// Only the single scanner daemon writes it; the status command reads it.
type FileRegistry struct {
	path           string
	processManager domain.ProcessManager
}

// NewFileRegistry creates a file-based daemon registry at the default path.
func NewFileRegistry(pm domain.ProcessManager) domain.DaemonRegistry {
	return &FileRegistry{
		path:           filepath.Join(registryDir, ".capmon_registry"),
		processManager: pm,
	}
}

// NewFileRegistryWithPath creates a registry at a specific path (for testing).
func NewFileRegistryWithPath(path string, pm domain.ProcessManager) domain.DaemonRegistry {
	return &FileRegistry{
		path:           path,
		processManager: pm,
	}
}

// GetRegistryPath returns the registry file path.
func (r *FileRegistry) GetRegistryPath() string {
	return r.path
}

// Register saves the daemon's PID and start time.
func (r *FileRegistry) Register(info domain.DaemonInfo) error {
	entry := &domain.RegistryEntry{
		Version:       1,
		PID:           info.PID,
		StartedAt:     info.StartedAt.Unix(),
		LastHeartbeat: time.Now().Unix(),
		AppVersion:    info.AppVersion,
	}
	return r.atomicWrite(entry)
}

// UpdateHeartbeat updates the liveness timestamp.
func (r *FileRegistry) UpdateHeartbeat() error {
	entry, err := r.GetAll()
	if err != nil {
		return err
	}
	entry.LastHeartbeat = time.Now().Unix()
	return r.atomicWrite(entry)
}

// GetAll returns the full registry state.
func (r *FileRegistry) GetAll() (*domain.RegistryEntry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var entry domain.RegistryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &entry, nil
}

// IsAlive checks whether the registered daemon PID is running.
func (r *FileRegistry) IsAlive() (bool, error) {
	entry, err := r.GetAll()
	if err != nil {
		return false, err
	}
	return r.processManager.IsRunning(entry.PID), nil
}

// Clear removes the registry file.
func (r *FileRegistry) Clear() error {
	err := os.Remove(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// atomicWrite writes the entry via a temp file and rename, so a reader
// never observes a partially written registry.
func (r *FileRegistry) atomicWrite(entry *domain.RegistryEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write registry temp file: %w", err)
	}

	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename registry: %w", err)
	}
	return nil
}

// Ensure FileRegistry implements domain.DaemonRegistry.
var _ domain.DaemonRegistry = (*FileRegistry)(nil)
