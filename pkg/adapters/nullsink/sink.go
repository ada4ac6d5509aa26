// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/jxlstream/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveBasicInfoJSON does nothing.
func (s *Sink) SaveBasicInfoJSON(data []byte) error {
	return nil
}

// SaveEventsJSON does nothing.
func (s *Sink) SaveEventsJSON(data []byte) error {
	return nil
}

// SaveGroupMap does nothing.
func (s *Sink) SaveGroupMap(img image.Image) error {
	return nil
}

// SaveFlushedImage does nothing.
func (s *Sink) SaveFlushedImage(index int, img image.Image) error {
	return nil
}

var _ ports.DebugSink = (*Sink)(nil)
