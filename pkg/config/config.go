// Package config provides configuration loading and management.
package config

import (
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/encoder"
	"github.com/user/jxlstream/pkg/orchestrator"
	"github.com/user/jxlstream/pkg/ports"
)

// Config represents the full configuration for jxlstream.
type Config struct {
	// Input/Output
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`

	// Decoding
	Workers         int          `yaml:"workers"`
	ChunkSize       int          `yaml:"chunk_size"`
	Output          OutputConfig `yaml:"pixel_format"`
	KeepOrientation bool         `yaml:"keep_orientation"`
	Memory          string       `yaml:"memory"`

	// Export
	ExportFormat string `yaml:"export_format"`
	Quality      int    `yaml:"quality"`
	PreviewWidth int    `yaml:"preview_width"`

	// Encoding
	Encoder EncoderConfig `yaml:"encoder"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug     bool   `yaml:"debug"`
	DebugDir  string `yaml:"debug_dir"`
	Snapshots bool   `yaml:"snapshots"`
	GridColor string `yaml:"grid_color"`
}

// OutputConfig selects the pixel format of the decoded buffer.
// Zero channels keeps the lossless default of the image.
type OutputConfig struct {
	Channels   int    `yaml:"channels"`
	DataType   string `yaml:"data_type"`
	Endianness string `yaml:"endianness"`
	Align      int    `yaml:"align"`
}

// EncoderConfig represents encoder settings.
type EncoderConfig struct {
	GroupDim    int    `yaml:"group_dim"`
	Compression string `yaml:"compression"`
	Predictor   string `yaml:"predictor"`
	Container   bool   `yaml:"container"`
	Level       int    `yaml:"level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Decoding
		Workers:   4,
		ChunkSize: 64 * 1024,
		Output: OutputConfig{
			DataType:   "uint8",
			Endianness: "native",
		},
		Memory: "heap",

		// Export
		ExportFormat: "png",
		Quality:      90,

		// Encoding
		Encoder: EncoderConfig{
			GroupDim:    256,
			Compression: "zstd",
			Predictor:   "left",
		},

		LogLevel: "info",

		// Debug
		DebugDir:  "./debug",
		GridColor: "#ff3b30",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ParseColor parses a #rrggbb or #rrggbbaa hex string. Invalid input yields
// opaque black.
func ParseColor(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{A: 255}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// PixelFormat returns the requested output format.
func (c Config) PixelFormat() codestream.PixelFormat {
	return codestream.PixelFormat{
		NumChannels: c.Output.Channels,
		DataType:    codestream.ParseDataType(c.Output.DataType),
		Endianness:  codestream.ParseEndianness(c.Output.Endianness),
		Align:       c.Output.Align,
	}
}

// EncoderOptions converts the encoder settings to encoder.Options.
func (c Config) EncoderOptions() encoder.Options {
	opts := encoder.DefaultOptions()
	opts.GroupDim = c.Encoder.GroupDim
	opts.Compression = codestream.ParseCompression(c.Encoder.Compression)
	opts.Predictor = codestream.ParsePredictor(c.Encoder.Predictor)
	opts.Container = c.Encoder.Container
	if c.Encoder.Level > 0 {
		opts.Level = zstd.EncoderLevelFromZstd(c.Encoder.Level)
	}
	return opts
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	cfg.InputPath = c.InputPath
	cfg.OutputPath = c.OutputPath

	if c.ChunkSize > 0 {
		cfg.ChunkSize = c.ChunkSize
	}
	if c.Output.Channels > 0 {
		cfg.Format = c.PixelFormat()
	}
	cfg.KeepOrientation = c.KeepOrientation
	cfg.Snapshots = c.Snapshots

	// Snapshots are written with the renderer, which cannot encode JXS.
	if f := ports.ParseImageFormat(c.ExportFormat); f != ports.FormatJXS {
		cfg.ExportFormat = f
	}
	if c.Quality > 0 {
		cfg.Quality = c.Quality
	}
	cfg.PreviewWidth = c.PreviewWidth

	if c.GridColor != "" {
		gc := ParseColor(c.GridColor)
		cfg.GridColor = [4]uint8{gc.R, gc.G, gc.B, gc.A}
	}
	return cfg
}
