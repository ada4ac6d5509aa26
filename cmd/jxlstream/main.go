// Package main provides the CLI entry point for jxlstream.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/jxlstream/pkg/adapters/filesink"
	"github.com/user/jxlstream/pkg/adapters/ggrenderer"
	"github.com/user/jxlstream/pkg/adapters/logger"
	"github.com/user/jxlstream/pkg/adapters/memory"
	"github.com/user/jxlstream/pkg/adapters/nullsink"
	"github.com/user/jxlstream/pkg/adapters/osfilesystem"
	"github.com/user/jxlstream/pkg/adapters/threadrunner"
	"github.com/user/jxlstream/pkg/config"
	"github.com/user/jxlstream/pkg/orchestrator"
	"github.com/user/jxlstream/pkg/ports"
	"github.com/user/jxlstream/pkg/stages/decode"
	"github.com/user/jxlstream/pkg/stages/encode"
	"github.com/user/jxlstream/pkg/stages/export"
	"github.com/user/jxlstream/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Decode  DecodeCmd  `cmd:"" help:"Decode a JXS stream to PNG or JPEG."`
	Encode  EncodeCmd  `cmd:"" help:"Encode a PNG or JPEG image as a JXS stream."`
	Info    InfoCmd    `cmd:"" help:"Show the signature, boxes and basic info of a JXS stream."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// CommonFlags are shared by the decode and encode subcommands.
type CommonFlags struct {
	Config  string `short:"c" type:"existingfile" help:"YAML configuration file."`
	Workers *int   `short:"j" help:"Number of decoder worker goroutines (default: number of CPUs)."`

	// Logging options
	LogLevel string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// DecodeCmd defines the decode subcommand.
type DecodeCmd struct {
	CommonFlags `embed:""`

	// Required arguments
	Input  string `arg:"" type:"existingfile" help:"JXS file to decode."`
	Output string `short:"o" required:"" help:"Output image path (.png, .jpg)."`

	// Streaming options
	ChunkSize       *int   `help:"Bytes fed to the decoder per read."`
	KeepOrientation bool   `help:"Keep stored orientation instead of rotating to display orientation."`
	Memory          string `help:"Memory manager for decoder buffers (heap, pool)."`

	// Pixel format options
	Channels   *int    `help:"Output channels (1-4, default: lossless for the image)."`
	DataType   *string `help:"Output sample type (uint8, uint16, float)."`
	Endianness *string `help:"Byte order of multi-byte samples (native, little, big)."`
	Align      *int    `help:"Row stride alignment in bytes."`

	// Export options
	Format       string `short:"f" help:"Output format, png or jpeg (default: from output extension)."`
	Quality      *int   `short:"q" help:"JPEG quality (1-100)."`
	PreviewWidth *int   `short:"w" help:"Scale the output down to this width."`

	// Debug options
	Debug     bool    `short:"d" help:"Enable debug output."`
	DebugDir  *string `help:"Directory for debug output."`
	Snapshots bool    `help:"Save a partial image after every decoded batch (requires --debug)."`

	// Summary
	Summary string `help:"Output execution summary to file (Markdown for .md, plain text otherwise)."`
}

// EncodeCmd defines the encode subcommand.
type EncodeCmd struct {
	CommonFlags `embed:""`

	Input  string `arg:"" type:"existingfile" help:"PNG or JPEG image to encode."`
	Output string `short:"o" required:"" help:"Output JXS file path."`

	GroupDim    *int    `short:"g" help:"Group dimension (64, 128, 256, 512, 1024)."`
	Compression *string `help:"Group compression (none, zstd)."`
	Predictor   *string `help:"Sample predictor (none, left)."`
	Level       *int    `help:"Zstd compression level."`
	Container   bool    `help:"Wrap the codestream in an ISOBMFF container."`
}

// InfoCmd defines the info subcommand.
type InfoCmd struct {
	Input string `arg:"" type:"existingfile" help:"JXS file to inspect."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("jxlstream"),
		kong.Description(l10n.T("Decode and encode JXS images incrementally.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// loadConfig returns the file configuration or the defaults.
func (f *CommonFlags) loadConfig() (config.Config, error) {
	cfg := config.Defaults()
	if f.Config != "" {
		var err error
		if cfg, err = config.LoadFromFile(f.Config); err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	return cfg, nil
}

func (f *CommonFlags) newLogger(cfg config.Config) ports.Logger {
	if f.Quiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// Run executes the decode command.
func (cmd *DecodeCmd) Run() error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}
	cmd.applyOverrides(&cfg)

	log := cmd.newLogger(cfg)
	ctx, cancel := signalContext(log)
	defer cancel()

	// Create adapters
	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	runner := threadrunner.New(cfg.Workers)
	defer runner.Close()

	mm, err := memory.New(cfg.Memory)
	if err != nil {
		return err
	}

	// Create debug sink
	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	// Create stages
	decodeStage := decode.NewStage(fs, runner, mm, sink, log)
	exportStage := export.NewStage(renderer, log)
	encodeStage := encode.NewStage(renderer, runner, log)

	orch := orchestrator.New(decodeStage, exportStage, encodeStage, renderer, fs, sink, log)

	result, err := orch.Run(ctx, cfg.ToOrchestratorConfig())
	if err != nil {
		return err
	}
	log.Info(l10n.F("Output saved to %s", cmd.Output))

	if cmd.Summary != "" {
		s := buildSummary(cfg, result, runner.NumWorkers())
		w := summarizer.NewWriter(summaryFormatter(cmd.Summary), fs)
		if err := w.Write(cmd.Summary, s); err != nil {
			log.Warn(l10n.F("Failed to write summary: %s", err))
		} else {
			log.Info(l10n.F("Summary saved to %s", cmd.Summary))
		}
	}
	return nil
}

// applyOverrides copies explicitly set flags over the configuration.
func (cmd *DecodeCmd) applyOverrides(cfg *config.Config) {
	cfg.InputPath = cmd.Input
	cfg.OutputPath = cmd.Output

	if cmd.ChunkSize != nil {
		cfg.ChunkSize = *cmd.ChunkSize
	}
	if cmd.KeepOrientation {
		cfg.KeepOrientation = true
	}
	if cmd.Memory != "" {
		cfg.Memory = cmd.Memory
	}

	if cmd.Channels != nil {
		cfg.Output.Channels = *cmd.Channels
	}
	if cmd.DataType != nil {
		cfg.Output.DataType = *cmd.DataType
	}
	if cmd.Endianness != nil {
		cfg.Output.Endianness = *cmd.Endianness
	}
	if cmd.Align != nil {
		cfg.Output.Align = *cmd.Align
	}

	switch {
	case cmd.Format != "":
		cfg.ExportFormat = cmd.Format
	case cmd.Output != "":
		cfg.ExportFormat = strings.TrimPrefix(strings.ToLower(filepath.Ext(cmd.Output)), ".")
	}
	if cmd.Quality != nil {
		cfg.Quality = *cmd.Quality
	}
	if cmd.PreviewWidth != nil {
		cfg.PreviewWidth = *cmd.PreviewWidth
	}

	if cmd.Debug {
		cfg.Debug = true
	}
	if cmd.DebugDir != nil {
		cfg.DebugDir = *cmd.DebugDir
	}
	if cmd.Snapshots {
		cfg.Snapshots = true
	}
}

// Run executes the encode command.
func (cmd *EncodeCmd) Run() error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}
	cmd.applyOverrides(&cfg)

	log := cmd.newLogger(cfg)
	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	runner := threadrunner.New(cfg.Workers)
	defer runner.Close()

	encodeStage := encode.NewStage(renderer, runner, log)
	orch := orchestrator.New(nil, nil, encodeStage, renderer, fs, nullsink.New(), log)

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(cmd.Input)), ".")
	if _, err := orch.Encode(ctx, orchestrator.EncodeConfig{
		InputPath:  cmd.Input,
		OutputPath: cmd.Output,
		Format:     ports.ParseImageFormat(ext),
		Options:    cfg.EncoderOptions(),
	}); err != nil {
		return err
	}

	log.Info(l10n.F("Output saved to %s", cmd.Output))
	return nil
}

// applyOverrides copies explicitly set flags over the configuration.
func (cmd *EncodeCmd) applyOverrides(cfg *config.Config) {
	if cmd.GroupDim != nil {
		cfg.Encoder.GroupDim = *cmd.GroupDim
	}
	if cmd.Compression != nil {
		cfg.Encoder.Compression = *cmd.Compression
	}
	if cmd.Predictor != nil {
		cfg.Encoder.Predictor = *cmd.Predictor
	}
	if cmd.Level != nil {
		cfg.Encoder.Level = *cmd.Level
	}
	if cmd.Container {
		cfg.Encoder.Container = true
	}
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("jxlstream version %s", version))
	fmt.Println(l10n.F("Decoder library version %s", decoderVersion()))
	return nil
}
