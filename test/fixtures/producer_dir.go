// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"os"
	"path/filepath"
	"time"
)

// ProducerDir simulates external producer processes writing capture files
// into a scan directory.
type ProducerDir struct {
	Dir string
}

// NewProducerDir creates a producer simulator rooted at dir.
func NewProducerDir(dir string) *ProducerDir {
	return &ProducerDir{Dir: dir}
}

// WriteFile creates or overwrites a capture file with the given content.
func (p *ProducerDir) WriteFile(name, content string) (string, error) {
	path := filepath.Join(p.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Append grows a capture file, simulating an active producer.
func (p *ProducerDir) Append(name, content string) error {
	f, err := os.OpenFile(filepath.Join(p.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// AgeFile pushes a file's mtime into the past, simulating a producer that
// stopped writing some time ago.
func (p *ProducerDir) AgeFile(name string, age time.Duration) error {
	past := time.Now().Add(-age)
	return os.Chtimes(filepath.Join(p.Dir, name), past, past)
}

// Remove deletes a capture file, simulating downstream consumption.
func (p *ProducerDir) Remove(name string) error {
	return os.Remove(filepath.Join(p.Dir, name))
}
