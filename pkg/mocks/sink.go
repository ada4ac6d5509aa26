package mocks

import (
	"image"
	"sync"

	"github.com/user/jxlstream/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	BasicInfoJSON []byte
	EventsJSON    []byte
	GroupMap      image.Image
	FlushedImages map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:       enabled,
		FlushedImages: make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveBasicInfoJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BasicInfoJSON = data
	return nil
}

func (m *DebugSink) SaveEventsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsJSON = data
	return nil
}

func (m *DebugSink) SaveGroupMap(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GroupMap = img
	return nil
}

func (m *DebugSink) SaveFlushedImage(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushedImages[index] = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                     { return false }
func (m *NullSink) SaveBasicInfoJSON(data []byte) error               { return nil }
func (m *NullSink) SaveEventsJSON(data []byte) error                  { return nil }
func (m *NullSink) SaveGroupMap(img image.Image) error                { return nil }
func (m *NullSink) SaveFlushedImage(index int, img image.Image) error { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
