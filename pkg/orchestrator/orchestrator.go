// Package orchestrator coordinates the decode and encode pipelines.
package orchestrator

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/encoder"
	"github.com/user/jxlstream/pkg/imagecodec"
	"github.com/user/jxlstream/pkg/pipeline"
	"github.com/user/jxlstream/pkg/ports"
)

// Config contains all configuration for a decode run.
type Config struct {
	// Input
	InputPath  string
	OutputPath string

	// Decoding
	ChunkSize       int
	Format          codestream.PixelFormat // zero NumChannels selects the lossless default
	KeepOrientation bool
	Snapshots       bool

	// Export
	ExportFormat ports.ImageFormat
	Quality      int
	PreviewWidth int

	// Debug overlay
	GridColor [4]uint8 // RGBA
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    64 * 1024,
		ExportFormat: ports.FormatPNG,
		Quality:      90,
		GridColor:    [4]uint8{255, 59, 48, 255},
	}
}

// EncodeConfig contains all configuration for an encode run.
type EncodeConfig struct {
	InputPath  string
	OutputPath string
	Format     ports.ImageFormat
	Options    encoder.Options
}

// Orchestrator coordinates the execution of the pipeline stages.
type Orchestrator struct {
	decodeStage pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult]
	exportStage pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult]
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	renderer    ports.Renderer
	fs          ports.FileSystem
	sink        ports.DebugSink
	logger      ports.Logger
}

// New creates a new Orchestrator.
func New(
	decodeStage pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult],
	exportStage pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	renderer ports.Renderer,
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		decodeStage: decodeStage,
		exportStage: exportStage,
		encodeStage: encodeStage,
		renderer:    renderer,
		fs:          fs,
		sink:        sink,
		logger:      logger,
	}
}

// Run decodes config.InputPath and writes it as an image to config.OutputPath.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	start := time.Now()
	o.logger.Info(l10n.T("Starting pipeline"))

	// 1. Decode
	o.logger.Info(l10n.F("Decoding %s", config.InputPath))
	decoded, err := o.decodeStage.Execute(ctx, o.buildDecodeInput(config))
	if err != nil {
		o.logger.Error(l10n.F("Failed to decode: %s", err))
		return RunResult{}, fmt.Errorf("decode stage: %w", err)
	}
	o.logger.Info(l10n.F("Decoded %dx%d image in %d groups", decoded.Info.Xsize, decoded.Info.Ysize, decoded.Grid.NumGroups()))

	img, err := imagecodec.ToImage(decoded.Pixels, int(decoded.Info.Xsize), int(decoded.Info.Ysize), decoded.Format)
	if err != nil {
		return RunResult{}, fmt.Errorf("convert pixels: %w", err)
	}

	// Save group map debug output
	if o.sink.Enabled() {
		overlay := o.drawGroupMap(img, decoded, config)
		if err := o.sink.SaveGroupMap(overlay); err != nil {
			o.logger.Warn(l10n.F("Failed to save debug output: %s", err))
		}
	}

	// 2. Export
	exported, err := o.exportStage.Execute(ctx, o.buildExportInput(config, img))
	if err != nil {
		o.logger.Error(l10n.F("Failed to export image: %s", err))
		return RunResult{}, fmt.Errorf("export stage: %w", err)
	}

	// 3. Write output file
	if err := o.fs.WriteFile(config.OutputPath, exported.Data); err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return RunResult{}, fmt.Errorf("write output: %w", err)
	}

	o.logger.Info(l10n.T("Pipeline completed successfully"))

	return RunResult{
		Info:         decoded.Info,
		Color:        decoded.Color,
		Grid:         decoded.Grid,
		Format:       decoded.Format,
		InputBytes:   decoded.BytesRead,
		Chunks:       decoded.Chunks,
		Events:       decoded.Events,
		OutputFormat: config.ExportFormat,
		OutputWidth:  exported.Width,
		OutputHeight: exported.Height,
		OutputSize:   int64(len(exported.Data)),
		Duration:     time.Since(start),
	}, nil
}

// Encode reads a PNG or JPEG image and writes it as a JXS stream.
func (o *Orchestrator) Encode(ctx context.Context, config EncodeConfig) (pipeline.EncodeResult, error) {
	o.logger.Info(l10n.F("Encoding %s", config.InputPath))

	data, err := o.fs.ReadFile(config.InputPath)
	if err != nil {
		return pipeline.EncodeResult{}, fmt.Errorf("read input: %w", err)
	}

	result, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		ImageData: data,
		Format:    config.Format,
		Options:   config.Options,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to encode: %s", err))
		return pipeline.EncodeResult{}, fmt.Errorf("encode stage: %w", err)
	}

	if err := o.fs.WriteFile(config.OutputPath, result.Data); err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return pipeline.EncodeResult{}, fmt.Errorf("write output: %w", err)
	}

	o.logger.Info(l10n.F("Encoded %dx%d image: %d bytes", result.Width, result.Height, result.FileSize))
	return result, nil
}

func (o *Orchestrator) buildDecodeInput(config Config) pipeline.DecodeInput {
	return pipeline.DecodeInput{
		Path:            config.InputPath,
		ChunkSize:       config.ChunkSize,
		Format:          config.Format,
		KeepOrientation: config.KeepOrientation,
		Snapshots:       config.Snapshots && o.sink.Enabled(),
	}
}

func (o *Orchestrator) buildExportInput(config Config, img image.Image) pipeline.ExportInput {
	return pipeline.ExportInput{
		Image:        img,
		Format:       config.ExportFormat,
		Quality:      config.Quality,
		PreviewWidth: config.PreviewWidth,
	}
}

// drawGroupMap outlines every group of the decoded image and labels it
// with its index.
func (o *Orchestrator) drawGroupMap(img image.Image, decoded pipeline.DecodeResult, config Config) image.Image {
	w, h := int(decoded.Info.Xsize), int(decoded.Info.Ysize)
	canvas := o.renderer.CreateCanvas(w, h, color.Black)
	canvas.DrawImage(img, 0, 0)

	orient := decoded.Info.Orientation
	if config.KeepOrientation {
		orient = codestream.OrientIdentity
	}

	gridColor := rgbaFromArray(config.GridColor)
	style := ports.TextStyle{FontSize: 12, Color: gridColor}
	for i, r := range decoded.Grid.Groups() {
		d := displayRect(r, orient, decoded.Grid.Width, decoded.Grid.Height)
		canvas.DrawRectStroke(d.X, d.Y, d.Width, d.Height, gridColor, 1)
		canvas.DrawText(fmt.Sprintf("%d", i), d.X+2, d.Y+2, style)
	}
	return canvas.ToImage()
}

// displayRect maps a group rectangle in stored coordinates of a w×h image
// to displayed coordinates.
func displayRect(r codestream.Rect, o codestream.Orientation, w, h int) codestream.Rect {
	x0, y0 := o.Apply(r.X, r.Y, w, h)
	x1, y1 := o.Apply(r.X+r.Width-1, r.Y+r.Height-1, w, h)
	return codestream.Rect{
		X:      min(x0, x1),
		Y:      min(y0, y1),
		Width:  max(x0, x1) - min(x0, x1) + 1,
		Height: max(y0, y1) - min(y0, y1) + 1,
	}
}

func rgbaFromArray(c [4]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// RunResult contains the results of a decode run for summary generation.
type RunResult struct {
	// Image information
	Info   codestream.BasicInfo
	Color  codestream.ColorEncoding
	Grid   codestream.Grid
	Format codestream.PixelFormat

	// Streaming information
	InputBytes int64
	Chunks     int
	Events     []pipeline.EventRecord

	// Output information
	OutputFormat ports.ImageFormat
	OutputWidth  int
	OutputHeight int
	OutputSize   int64

	Duration time.Duration
}
