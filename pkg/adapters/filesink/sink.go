// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/jxlstream/pkg/ports"
)

// Sink saves debug output to files under a base directory.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveBasicInfoJSON saves the parsed basic info as JSON.
func (s *Sink) SaveBasicInfoJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "basic_info.json")
	return s.fs.WriteFile(path, data)
}

// SaveEventsJSON saves the decoder event trace as JSON.
func (s *Sink) SaveEventsJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "events.json")
	return s.fs.WriteFile(path, data)
}

// SaveGroupMap saves the group grid overlay.
func (s *Sink) SaveGroupMap(img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode group map: %w", err)
	}
	path := filepath.Join(s.baseDir, "groups.png")
	return s.fs.WriteFile(path, data)
}

// SaveFlushedImage saves a partially decoded image.
func (s *Sink) SaveFlushedImage(index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "flush")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode flushed image: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("flush-%04d.png", index))
	return s.fs.WriteFile(path, data)
}

var _ ports.DebugSink = (*Sink)(nil)
