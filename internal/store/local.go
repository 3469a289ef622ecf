package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"rhmaster/internal/domain/core"
	"rhmaster/internal/domain/payroll"
)

// Snapshot is what the local mirror persists: canonical records plus the
// ids still waiting for a remote write and the ids the remote rejected.
type Snapshot struct {
	Employees         []core.Employee  `json:"employees"`
	Records           []payroll.Record `json:"payroll"`
	PendingEmployees  []string         `json:"pendingEmployees,omitempty"`
	PendingRecords    []string         `json:"pendingRecords,omitempty"`
	RejectedEmployees []string         `json:"rejectedEmployees,omitempty"`
	RejectedRecords   []string         `json:"rejectedRecords,omitempty"`
}

// Mirror is the local fallback store.
type Mirror interface {
	// Load returns ok=false when nothing was ever saved.
	Load() (Snapshot, bool, error)
	Save(Snapshot) error
}

// Sealer encrypts the snapshot file at rest.
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// FileMirror keeps the snapshot in one JSON file, replaced atomically.
// With a Sealer the file is encrypted; a plaintext file left from before
// a key was configured still loads and is sealed on the next save.
type FileMirror struct {
	Path   string
	Sealer Sealer
}

func NewFileMirror(path string, sealer Sealer) *FileMirror {
	return &FileMirror{Path: path, Sealer: sealer}
}

func (m *FileMirror) Load() (Snapshot, bool, error) {
	data, err := os.ReadFile(m.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if m.Sealer != nil && !looksPlain(data) {
		if data, err = m.Sealer.Open(data); err != nil {
			return Snapshot{}, false, fmt.Errorf("open local snapshot %s: %w", m.Path, err)
		}
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode local snapshot %s: %w", m.Path, err)
	}
	return snap, true, nil
}

func looksPlain(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

func (m *FileMirror) Save(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if m.Sealer != nil {
		if data, err = m.Sealer.Seal(data); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(m.Path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(m.Path), filepath.Base(m.Path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), m.Path)
}

// MemoryMirror keeps the snapshot in process memory only.
type MemoryMirror struct {
	mu    sync.Mutex
	snap  Snapshot
	saved bool
	saves int
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{}
}

func (m *MemoryMirror) Load() (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSnapshot(m.snap), m.saved, nil
}

func (m *MemoryMirror) Save(snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = cloneSnapshot(snap)
	m.saved = true
	m.saves++
	return nil
}

// Saves counts Save calls.
func (m *MemoryMirror) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func cloneSnapshot(snap Snapshot) Snapshot {
	return Snapshot{
		Employees:        append([]core.Employee(nil), snap.Employees...),
		Records:          append([]payroll.Record(nil), snap.Records...),
		PendingEmployees: append([]string(nil), snap.PendingEmployees...),
		PendingRecords:   append([]string(nil), snap.PendingRecords...),

		RejectedEmployees: append([]string(nil), snap.RejectedEmployees...),
		RejectedRecords:   append([]string(nil), snap.RejectedRecords...),
	}
}
