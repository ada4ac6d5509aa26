package main

import (
	"strings"
	"testing"
	"time"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/config"
	"github.com/user/jxlstream/pkg/orchestrator"
	"github.com/user/jxlstream/pkg/pipeline"
	"github.com/user/jxlstream/pkg/ports"
	"github.com/user/jxlstream/pkg/summarizer"
)

func TestDecodeCmd_ApplyOverrides(t *testing.T) {
	chunk, channels := 512, 4
	dtype := "uint16"
	cmd := &DecodeCmd{
		Input:     "in.jxs",
		Output:    "out.JPG",
		ChunkSize: &chunk,
		Channels:  &channels,
		DataType:  &dtype,
		Memory:    "pool",
		Debug:     true,
	}

	cfg := config.Defaults()
	cmd.applyOverrides(&cfg)

	if cfg.InputPath != "in.jxs" || cfg.OutputPath != "out.JPG" {
		t.Errorf("paths = %q, %q", cfg.InputPath, cfg.OutputPath)
	}
	if cfg.ChunkSize != 512 || cfg.Memory != "pool" || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ExportFormat != "jpg" {
		t.Errorf("ExportFormat = %q, want jpg from extension", cfg.ExportFormat)
	}

	oc := cfg.ToOrchestratorConfig()
	if oc.ExportFormat != ports.FormatJPEG {
		t.Errorf("orchestrator ExportFormat = %v", oc.ExportFormat)
	}
	if oc.Format.NumChannels != 4 || oc.Format.DataType != codestream.DataTypeUint16 {
		t.Errorf("orchestrator Format = %+v", oc.Format)
	}

	// An explicit format wins over the extension.
	cmd.Format = "png"
	cmd.applyOverrides(&cfg)
	if cfg.ExportFormat != "png" {
		t.Errorf("ExportFormat = %q, want png", cfg.ExportFormat)
	}
}

func TestEncodeCmd_ApplyOverrides(t *testing.T) {
	dim := 128
	comp := "none"
	cmd := &EncodeCmd{GroupDim: &dim, Compression: &comp, Container: true}

	cfg := config.Defaults()
	cmd.applyOverrides(&cfg)

	opts := cfg.EncoderOptions()
	if opts.GroupDim != 128 || opts.Compression != codestream.CompressionNone || !opts.Container {
		t.Errorf("options = %+v", opts)
	}
	if opts.Predictor != codestream.PredictorLeft {
		t.Errorf("Predictor = %v, want default left", opts.Predictor)
	}
}

func TestBuildSummary(t *testing.T) {
	cfg := config.Defaults()
	cfg.InputPath = "in.jxs"
	cfg.OutputPath = "out.png"

	res := orchestrator.RunResult{
		Info: codestream.BasicInfo{
			HaveContainer: true, Xsize: 300, Ysize: 200, BitsPerSample: 32,
			ExponentBitsPerSample: 8, NumColorChannels: 3, Orientation: codestream.OrientIdentity,
		},
		Color:      codestream.ColorEncoding{ColorSpace: codestream.ColorSpaceRGB, TransferFunction: codestream.TransferLinear},
		Grid:       codestream.NewGrid(300, 200, 256),
		Format:     codestream.PixelFormat{NumChannels: 3, DataType: codestream.DataTypeFloat},
		InputBytes: 1000,
		Chunks:     1,
		Events: []pipeline.EventRecord{
			{Event: "basic-info"},
			{Event: "full-image"},
		},
		OutputFormat: ports.FormatPNG,
		OutputWidth:  300,
		OutputHeight: 200,
		OutputSize:   4096,
		Duration:     1500 * time.Millisecond,
	}

	s := buildSummary(cfg, res, 8)
	if !s.Input.Container || s.Input.Size != 1000 || s.Input.ChunkSize != 64*1024 {
		t.Errorf("Input = %+v", s.Input)
	}
	if !s.Image.Float || s.Image.ColorSpace != "rgb" || s.Image.Transfer != "linear" {
		t.Errorf("Image = %+v", s.Image)
	}
	if s.Decode.Groups != 2 || s.Decode.GroupDim != 256 || s.Decode.Workers != 8 {
		t.Errorf("Decode = %+v", s.Decode)
	}
	if s.Decode.PixelFormat != "3 x float" || s.Decode.DurationMs != 1500 {
		t.Errorf("Decode = %+v", s.Decode)
	}
	if len(s.Decode.Events) != 2 || s.Decode.Events[1] != "full-image" {
		t.Errorf("Events = %v", s.Decode.Events)
	}
	if s.Output.Format != "png" || s.Output.FileSize != 4096 {
		t.Errorf("Output = %+v", s.Output)
	}
}

func TestSummaryFormatter(t *testing.T) {
	s := summarizer.NewSummary()
	s.Input.Path = "in.jxs"
	s.Image.Width, s.Image.Height = 300, 200
	s.Decode.Events = []string{"basic-info", "full-image"}
	s.Output.Format = "png"

	tests := []struct {
		path     string
		contains string
	}{
		{"summary.md", "# "},
		{"SUMMARY.MARKDOWN", "# "},
		{"summary.txt", "input.path=in.jxs\n"},
		{"summary", "decode.events=basic-info,full-image\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := summaryFormatter(tt.path).Format(s)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Format() for %s missing %q:\n%s", tt.path, tt.contains, got)
			}
		})
	}
}

func TestTextSummary(t *testing.T) {
	s := summarizer.NewSummary()
	s.Image.Width, s.Image.Height = 300, 200
	s.Image.ColorChannels, s.Image.ExtraChannels = 3, 1
	s.Output.FileSize = 4096

	got := textSummary(s)
	for _, want := range []string{
		"version=" + version + "\n",
		"image.size=300x200\n",
		"image.channels=4\n",
		"output.file_size=4096\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("textSummary missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "#") {
		t.Error("text summary should not contain Markdown headings")
	}
}

func TestDecoderVersion(t *testing.T) {
	if got := decoderVersion(); got != "0.3.0" {
		t.Errorf("decoderVersion() = %q, want 0.3.0", got)
	}
}
