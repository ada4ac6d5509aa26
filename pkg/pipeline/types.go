package pipeline

import (
	"image"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/encoder"
	"github.com/user/jxlstream/pkg/ports"
)

// =============================================================================
// Decode Stage Types
// =============================================================================

// DecodeInput contains parameters for streaming a file through the decoder.
type DecodeInput struct {
	Path      string
	ChunkSize int // Bytes handed to the decoder per ProcessInput call

	// Format is the requested output format. A zero NumChannels selects
	// the decoder's lossless default.
	Format          codestream.PixelFormat
	KeepOrientation bool

	// Snapshots saves the partially decoded image to the debug sink each
	// time more groups become available.
	Snapshots bool
}

// DefaultDecodeInput returns DecodeInput with default values.
func DefaultDecodeInput() DecodeInput {
	return DecodeInput{
		ChunkSize: 64 * 1024,
	}
}

// DecodeResult contains the decoded image and a trace of the session.
type DecodeResult struct {
	Info   codestream.BasicInfo
	Color  codestream.ColorEncoding
	Grid   codestream.Grid
	Format codestream.PixelFormat
	Pixels []byte

	Events    []EventRecord
	BytesRead int64
	Chunks    int
}

// EventRecord is one decoder event and the input offset it occurred at.
type EventRecord struct {
	Event  string `json:"event"`
	Offset int64  `json:"offset"`
	Groups int    `json:"groups_decoded"`
}

// =============================================================================
// Export Stage Types
// =============================================================================

// ExportInput contains parameters for writing a decoded image.
type ExportInput struct {
	Image        image.Image
	Format       ports.ImageFormat
	Quality      int // JPEG quality (1-100)
	PreviewWidth int // Downscale to this width when narrower than the image; 0 keeps the size
}

// DefaultExportInput returns ExportInput with default values.
func DefaultExportInput() ExportInput {
	return ExportInput{
		Format:  ports.FormatPNG,
		Quality: 90,
	}
}

// ExportResult contains the encoded output image.
type ExportResult struct {
	Data   []byte
	Width  int
	Height int
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for encoding a PNG or JPEG image.
type EncodeInput struct {
	ImageData []byte
	Format    ports.ImageFormat
	Options   encoder.Options
}

// EncodeResult contains the encoded stream.
type EncodeResult struct {
	Data     []byte
	Width    int
	Height   int
	Groups   int
	FileSize int64
}
