// Package summarizer provides summary generation for decode results.
package summarizer

import "time"

// Summary contains all data collected during a decode session.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	Input  InputInfo
	Image  ImageInfo
	Decode DecodeInfo
	Output OutputInfo
}

// InputInfo describes the decoded stream.
type InputInfo struct {
	Path      string
	Size      int64
	Container bool
	Chunks    int
	ChunkSize int
}

// ImageInfo contains the basic info and color encoding of the image.
type ImageInfo struct {
	Width         int
	Height        int
	BitsPerSample int
	Float         bool
	ColorChannels int
	ExtraChannels int
	Orientation   int
	ColorSpace    string
	Transfer      string
}

// DecodeInfo contains decoder settings and results.
type DecodeInfo struct {
	Groups      int
	GroupDim    int
	Workers     int
	PixelFormat string
	Events      []string
	DurationMs  int64
}

// OutputInfo contains information about the written image.
type OutputInfo struct {
	Path     string
	Format   string
	Width    int
	Height   int
	FileSize int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets input stream information.
func (b *Builder) WithInput(input InputInfo) *Builder {
	b.summary.Input = input
	return b
}

// WithImage sets image information.
func (b *Builder) WithImage(image ImageInfo) *Builder {
	b.summary.Image = image
	return b
}

// WithDecode sets decoding information.
func (b *Builder) WithDecode(decode DecodeInfo) *Builder {
	b.summary.Decode = decode
	return b
}

// WithOutput sets output image information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
