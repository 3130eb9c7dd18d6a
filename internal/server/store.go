package server

import (
	"sync"

	"sensewire/internal/shared"
)

// Store is the append/read contract shared by both backends. A device
// exists once it has at least one reading; readings are never mutated
// or removed after append.
//
// DeviceReadings returns (nil, nil) for a device that was never
// ingested; callers map that to their own not-found handling.
type Store interface {
	AppendReading(rec shared.StoredReading) error
	ListDevices() ([]string, error)
	DeviceReadings(deviceID string) ([]shared.StoredReading, error)

	// Reset drops all state. Test isolation only.
	Reset() error
}

// MemoryStore is the default backend: a mutex-guarded map of per-device
// slices plus a first-seen order list so ListDevices stays deterministic
// (map iteration order is not).
type MemoryStore struct {
	mu sync.RWMutex

	readings map[string][]shared.StoredReading
	devices  []string // device ids in first-seen order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		readings: map[string][]shared.StoredReading{},
	}
}

func (s *MemoryStore) AppendReading(rec shared.StoredReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.readings[rec.DeviceID]; !ok {
		s.devices = append(s.devices, rec.DeviceID)
	}
	s.readings[rec.DeviceID] = append(s.readings[rec.DeviceID], rec)
	return nil
}

func (s *MemoryStore) ListDevices() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.devices))
	copy(out, s.devices)
	return out, nil
}

// DeviceReadings returns a snapshot copy so a concurrent append can
// never tear an in-flight query.
func (s *MemoryStore) DeviceReadings(deviceID string) ([]shared.StoredReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.readings[deviceID]
	if !ok {
		return nil, nil
	}
	out := make([]shared.StoredReading, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *MemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = map[string][]shared.StoredReading{}
	s.devices = nil
	return nil
}
