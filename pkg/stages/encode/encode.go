// Package encode implements the stage that turns a PNG or JPEG image into
// a JXS stream.
package encode

import (
	"context"
	"fmt"

	"github.com/user/jxlstream/pkg/encoder"
	"github.com/user/jxlstream/pkg/pipeline"
	"github.com/user/jxlstream/pkg/ports"
)

// Stage encodes images through a parallel runner.
type Stage struct {
	renderer ports.Renderer
	runner   ports.ParallelRunner
	logger   ports.Logger
}

// NewStage creates a new encode stage. A nil runner encodes sequentially.
func NewStage(renderer ports.Renderer, runner ports.ParallelRunner, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		runner:   runner,
		logger:   logger.WithComponent("encode"),
	}
}

// Execute decodes the input image and encodes it with input.Options.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if len(input.ImageData) == 0 {
		return result, fmt.Errorf("no image data to encode")
	}

	img, err := s.renderer.DecodeImage(input.ImageData, input.Format)
	if err != nil {
		return result, fmt.Errorf("decode %s: %w", input.Format, err)
	}

	select {
	case <-ctx.Done():
		return result, ctx.Err()
	default:
	}

	frame := encoder.FrameFromImage(img)
	opts := input.Options
	if opts.Runner == nil {
		opts.Runner = s.runner
	}

	header := frame.Header(opts)
	s.logger.Debug("Encoding %dx%d, %d bits, %d channels, %d groups",
		frame.Width, frame.Height, frame.BitsPerSample, frame.NumChannels(), header.Grid().NumGroups())

	data, err := encoder.EncodeBytes(frame, opts)
	if err != nil {
		return result, fmt.Errorf("encode frame: %w", err)
	}

	result.Data = data
	result.Width = frame.Width
	result.Height = frame.Height
	result.Groups = header.Grid().NumGroups()
	result.FileSize = int64(len(data))

	return result, nil
}
