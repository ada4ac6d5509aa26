package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/ports"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jxlstream.yaml")
	yml := `
workers: 8
chunk_size: 4096
pixel_format:
  channels: 4
  data_type: uint16
  endianness: big
  align: 16
memory: pool
export_format: jpeg
quality: 75
encoder:
  group_dim: 128
  compression: none
  container: true
  level: 19
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Workers != 8 || cfg.ChunkSize != 4096 || cfg.Memory != "pool" {
		t.Errorf("decode settings = %d/%d/%s", cfg.Workers, cfg.ChunkSize, cfg.Memory)
	}
	// Unset keys keep their defaults.
	if cfg.Encoder.Predictor != "left" {
		t.Errorf("Encoder.Predictor = %q, want left", cfg.Encoder.Predictor)
	}
	if cfg.DebugDir != "./debug" {
		t.Errorf("DebugDir = %q, want ./debug", cfg.DebugDir)
	}

	want := codestream.PixelFormat{
		NumChannels: 4,
		DataType:    codestream.DataTypeUint16,
		Endianness:  codestream.EndianBig,
		Align:       16,
	}
	if got := cfg.PixelFormat(); got != want {
		t.Errorf("PixelFormat() = %+v, want %+v", got, want)
	}

	opts := cfg.EncoderOptions()
	if opts.GroupDim != 128 || opts.Compression != codestream.CompressionNone ||
		opts.Predictor != codestream.PredictorLeft || !opts.Container {
		t.Errorf("EncoderOptions() = %+v", opts)
	}
	if opts.Level != zstd.SpeedBestCompression {
		t.Errorf("Level = %v, want %v", opts.Level, zstd.SpeedBestCompression)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workers: [1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	cfg.InputPath = "in.jxs"
	cfg.OutputPath = "out.jpg"
	cfg.ExportFormat = "jpg"
	cfg.PreviewWidth = 320
	cfg.GridColor = "#00ff0080"

	oc := cfg.ToOrchestratorConfig()
	if oc.InputPath != "in.jxs" || oc.OutputPath != "out.jpg" {
		t.Errorf("paths = %q, %q", oc.InputPath, oc.OutputPath)
	}
	if oc.ChunkSize != 64*1024 {
		t.Errorf("ChunkSize = %d", oc.ChunkSize)
	}
	if oc.Format.NumChannels != 0 {
		t.Errorf("Format = %+v, want image default", oc.Format)
	}
	if oc.ExportFormat != ports.FormatJPEG || oc.Quality != 90 || oc.PreviewWidth != 320 {
		t.Errorf("export = %v/%d/%d", oc.ExportFormat, oc.Quality, oc.PreviewWidth)
	}
	if oc.GridColor != [4]uint8{0, 255, 0, 128} {
		t.Errorf("GridColor = %v", oc.GridColor)
	}

	cfg.Output.Channels = 2
	if got := cfg.ToOrchestratorConfig().Format.NumChannels; got != 2 {
		t.Errorf("Format.NumChannels = %d, want 2", got)
	}

	cfg.ExportFormat = "jxs"
	if got := cfg.ToOrchestratorConfig().ExportFormat; got != ports.FormatPNG {
		t.Errorf("ExportFormat = %v, want png for jxs", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff3b30", color.RGBA{255, 59, 48, 255}},
		{"1A2B3C", color.RGBA{0x1a, 0x2b, 0x3c, 255}},
		{"#10203040", color.RGBA{0x10, 0x20, 0x30, 0x40}},
		{"", color.RGBA{A: 255}},
		{"#fff", color.RGBA{A: 255}},
		{"#gggggg", color.RGBA{A: 255}},
	}
	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
