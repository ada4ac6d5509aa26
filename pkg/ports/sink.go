package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate decoding results for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveBasicInfoJSON saves the parsed basic info as JSON.
	SaveBasicInfoJSON(data []byte) error

	// SaveEventsJSON saves the decoder event trace as JSON.
	SaveEventsJSON(data []byte) error

	// SaveGroupMap saves the decoded image with the group grid drawn over it.
	SaveGroupMap(img image.Image) error

	// SaveFlushedImage saves a partially decoded image.
	SaveFlushedImage(index int, img image.Image) error
}
