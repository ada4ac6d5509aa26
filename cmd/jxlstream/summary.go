package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ideamans/go-l10n"

	"github.com/user/jxlstream/pkg/config"
	"github.com/user/jxlstream/pkg/orchestrator"
	"github.com/user/jxlstream/pkg/summarizer"
)

// buildSummary collects the results of a decode run.
func buildSummary(cfg config.Config, res orchestrator.RunResult, workers int) *summarizer.Summary {
	events := make([]string, 0, len(res.Events))
	for _, e := range res.Events {
		events = append(events, e.Event)
	}

	return summarizer.NewBuilder().
		WithInput(summarizer.InputInfo{
			Path:      cfg.InputPath,
			Size:      res.InputBytes,
			Container: res.Info.HaveContainer,
			Chunks:    res.Chunks,
			ChunkSize: cfg.ChunkSize,
		}).
		WithImage(summarizer.ImageInfo{
			Width:         int(res.Info.Xsize),
			Height:        int(res.Info.Ysize),
			BitsPerSample: int(res.Info.BitsPerSample),
			Float:         res.Info.ExponentBitsPerSample > 0,
			ColorChannels: int(res.Info.NumColorChannels),
			ExtraChannels: int(res.Info.NumExtraChannels),
			Orientation:   int(res.Info.Orientation),
			ColorSpace:    res.Color.ColorSpace.String(),
			Transfer:      res.Color.TransferFunction.String(),
		}).
		WithDecode(summarizer.DecodeInfo{
			Groups:      res.Grid.NumGroups(),
			GroupDim:    res.Grid.GroupDim,
			Workers:     workers,
			PixelFormat: fmt.Sprintf("%d x %s", res.Format.NumChannels, res.Format.DataType),
			Events:      events,
			DurationMs:  res.Duration.Milliseconds(),
		}).
		WithOutput(summarizer.OutputInfo{
			Path:     cfg.OutputPath,
			Format:   res.OutputFormat.String(),
			Width:    res.OutputWidth,
			Height:   res.OutputHeight,
			FileSize: res.OutputSize,
		}).
		Build()
}

// summaryFormatter picks the summary format from the file extension:
// Markdown for .md and .markdown, plain key=value lines otherwise.
func summaryFormatter(path string) summarizer.Formatter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		)
	}
	return summarizer.FormatFunc(textSummary)
}

func textSummary(s *summarizer.Summary) string {
	var sb strings.Builder
	kv := func(k string, v any) {
		fmt.Fprintf(&sb, "%s=%v\n", k, v)
	}

	kv("version", version)
	kv("generated_at", s.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))
	kv("input.path", s.Input.Path)
	kv("input.size", s.Input.Size)
	kv("input.container", s.Input.Container)
	kv("input.chunks", s.Input.Chunks)
	kv("image.size", fmt.Sprintf("%dx%d", s.Image.Width, s.Image.Height))
	kv("image.bits_per_sample", s.Image.BitsPerSample)
	kv("image.float", s.Image.Float)
	kv("image.channels", s.Image.ColorChannels+s.Image.ExtraChannels)
	kv("image.color_space", s.Image.ColorSpace)
	kv("image.transfer", s.Image.Transfer)
	kv("decode.groups", s.Decode.Groups)
	kv("decode.workers", s.Decode.Workers)
	kv("decode.pixel_format", s.Decode.PixelFormat)
	kv("decode.events", strings.Join(s.Decode.Events, ","))
	kv("decode.duration_ms", s.Decode.DurationMs)
	kv("output.path", s.Output.Path)
	kv("output.format", s.Output.Format)
	kv("output.size", fmt.Sprintf("%dx%d", s.Output.Width, s.Output.Height))
	kv("output.file_size", s.Output.FileSize)
	return sb.String()
}
