// Package export implements the stage that writes a decoded image as PNG
// or JPEG.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/jxlstream/pkg/pipeline"
	"github.com/user/jxlstream/pkg/ports"
)

// Stage encodes decoded images for output.
type Stage struct {
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a new export stage.
func NewStage(renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		logger:   logger.WithComponent("export"),
	}
}

// Execute scales the image down to the preview width if requested and
// encodes it.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExportInput) (pipeline.ExportResult, error) {
	if input.Image == nil {
		return pipeline.ExportResult{}, errors.New("no image to export")
	}
	if err := ctx.Err(); err != nil {
		return pipeline.ExportResult{}, err
	}

	img := input.Image
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	if input.PreviewWidth > 0 && input.PreviewWidth < width {
		scaled := max(height*input.PreviewWidth/width, 1)
		s.logger.Debug("Scaling %dx%d to %dx%d", width, height, input.PreviewWidth, scaled)
		img = s.renderer.ResizeImage(img, input.PreviewWidth, scaled)
		width, height = input.PreviewWidth, scaled
	}

	quality := input.Quality
	if quality <= 0 {
		quality = pipeline.DefaultExportInput().Quality
	}

	data, err := s.renderer.EncodeImage(img, input.Format, quality)
	if err != nil {
		return pipeline.ExportResult{}, fmt.Errorf("encode %s: %w", input.Format, err)
	}
	s.logger.Debug("Exported %s: %d bytes", input.Format, len(data))

	return pipeline.ExportResult{
		Data:   data,
		Width:  width,
		Height: height,
	}, nil
}
