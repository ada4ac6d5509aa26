package orchestrator

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/user/jxlstream/pkg/adapters/logger"
	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/encoder"
	"github.com/user/jxlstream/pkg/mocks"
	"github.com/user/jxlstream/pkg/pipeline"
	"github.com/user/jxlstream/pkg/ports"
)

// mockDecodeStage is a mock for the decode stage.
type mockDecodeStage struct {
	result pipeline.DecodeResult
	err    error
	input  pipeline.DecodeInput
}

func (m *mockDecodeStage) Execute(ctx context.Context, input pipeline.DecodeInput) (pipeline.DecodeResult, error) {
	m.input = input
	if m.err != nil {
		return pipeline.DecodeResult{}, m.err
	}
	return m.result, nil
}

// mockExportStage is a mock for the export stage.
type mockExportStage struct {
	result pipeline.ExportResult
	err    error
	input  pipeline.ExportInput
}

func (m *mockExportStage) Execute(ctx context.Context, input pipeline.ExportInput) (pipeline.ExportResult, error) {
	m.input = input
	if m.err != nil {
		return pipeline.ExportResult{}, m.err
	}
	return m.result, nil
}

// mockEncodeStage is a mock for the encode stage.
type mockEncodeStage struct {
	result pipeline.EncodeResult
	err    error
	input  pipeline.EncodeInput
}

func (m *mockEncodeStage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	m.input = input
	if m.err != nil {
		return pipeline.EncodeResult{}, m.err
	}
	return m.result, nil
}

func decodedImage(w, h, groupDim int, orient codestream.Orientation) pipeline.DecodeResult {
	header := codestream.Header{Xsize: uint32(w), Ysize: uint32(h), BitsPerSample: 8, NumColorChannels: 3, Orientation: orient, GroupDim: uint16(groupDim)}
	info := header.BasicInfo(false, false)
	return pipeline.DecodeResult{
		Info:      info,
		Grid:      header.Grid(),
		Format:    codestream.PixelFormat{NumChannels: 3},
		Pixels:    make([]byte, w*h*3),
		BytesRead: 1234,
		Chunks:    3,
		Events:    []pipeline.EventRecord{{Event: "basic-info"}, {Event: "full-image"}},
	}
}

func newOrchestrator(dec *mockDecodeStage, exp *mockExportStage, enc *mockEncodeStage, renderer ports.Renderer, fs *mocks.FileSystem, sink ports.DebugSink) *Orchestrator {
	return New(dec, exp, enc, renderer, fs, sink, logger.NewNoop())
}

func TestOrchestrator_Run(t *testing.T) {
	decodeStage := &mockDecodeStage{result: decodedImage(100, 80, 64, codestream.OrientIdentity)}
	exportStage := &mockExportStage{result: pipeline.ExportResult{Data: []byte("png"), Width: 100, Height: 80}}
	mockFS := mocks.NewFileSystem()

	orch := newOrchestrator(decodeStage, exportStage, &mockEncodeStage{}, &mocks.Renderer{}, mockFS, mocks.NewDebugSink(false))

	config := DefaultConfig()
	config.InputPath = "in.jxs"
	config.OutputPath = "out.png"
	config.ChunkSize = 4096
	config.Snapshots = true

	result, err := orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data, ok := mockFS.GetFile("out.png"); !ok || string(data) != "png" {
		t.Errorf("expected output file to be written, got %q", data)
	}
	if decodeStage.input.Path != "in.jxs" || decodeStage.input.ChunkSize != 4096 {
		t.Errorf("unexpected decode input %+v", decodeStage.input)
	}
	if decodeStage.input.Snapshots {
		t.Error("snapshots should be off without a debug sink")
	}
	if exportStage.input.Image == nil || exportStage.input.Image.Bounds().Dx() != 100 {
		t.Error("expected the decoded image to be exported")
	}
	if result.Grid.NumGroups() != 4 || result.InputBytes != 1234 || result.OutputSize != 3 || result.Chunks != 3 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestOrchestrator_Run_GroupMap(t *testing.T) {
	decodeStage := &mockDecodeStage{result: decodedImage(130, 70, 64, codestream.OrientIdentity)}
	exportStage := &mockExportStage{result: pipeline.ExportResult{Data: []byte("png")}}
	canvas := &mocks.Canvas{}
	renderer := &mocks.Renderer{
		CreateCanvasFunc: func(width, height int, bg color.Color) ports.Canvas { return canvas },
	}
	sink := mocks.NewDebugSink(true)

	orch := newOrchestrator(decodeStage, exportStage, &mockEncodeStage{}, renderer, mocks.NewFileSystem(), sink)
	config := DefaultConfig()
	config.Snapshots = true
	if _, err := orch.Run(context.Background(), config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sink.GroupMap == nil {
		t.Error("expected group map to be saved")
	}
	if canvas.Strokes != 6 || len(canvas.Texts) != 6 || canvas.Texts[5] != "5" {
		t.Errorf("expected 6 labelled groups, got %d strokes, texts %v", canvas.Strokes, canvas.Texts)
	}
	if !decodeStage.input.Snapshots {
		t.Error("expected snapshots with a debug sink")
	}
}

func TestOrchestrator_Run_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("decode", func(t *testing.T) {
		orch := newOrchestrator(&mockDecodeStage{err: boom}, &mockExportStage{}, &mockEncodeStage{}, &mocks.Renderer{}, mocks.NewFileSystem(), mocks.NewDebugSink(false))
		if _, err := orch.Run(context.Background(), DefaultConfig()); !errors.Is(err, boom) {
			t.Errorf("expected decode error, got %v", err)
		}
	})

	t.Run("export", func(t *testing.T) {
		orch := newOrchestrator(&mockDecodeStage{result: decodedImage(8, 8, 64, codestream.OrientIdentity)}, &mockExportStage{err: boom}, &mockEncodeStage{}, &mocks.Renderer{}, mocks.NewFileSystem(), mocks.NewDebugSink(false))
		if _, err := orch.Run(context.Background(), DefaultConfig()); !errors.Is(err, boom) {
			t.Errorf("expected export error, got %v", err)
		}
	})

	t.Run("write", func(t *testing.T) {
		fs := mocks.NewFileSystem()
		fs.WriteFileFunc = func(path string, data []byte) error { return boom }
		orch := newOrchestrator(&mockDecodeStage{result: decodedImage(8, 8, 64, codestream.OrientIdentity)}, &mockExportStage{}, &mockEncodeStage{}, &mocks.Renderer{}, fs, mocks.NewDebugSink(false))
		if _, err := orch.Run(context.Background(), DefaultConfig()); !errors.Is(err, boom) {
			t.Errorf("expected write error, got %v", err)
		}
	})
}

func TestOrchestrator_Encode(t *testing.T) {
	encodeStage := &mockEncodeStage{result: pipeline.EncodeResult{Data: []byte{0xFF, 0x0A}, Width: 10, Height: 10, FileSize: 2}}
	fs := mocks.NewFileSystem()
	fs.SetFile("in.png", []byte("png data"))

	orch := newOrchestrator(&mockDecodeStage{}, &mockExportStage{}, encodeStage, &mocks.Renderer{}, fs, mocks.NewDebugSink(false))
	result, err := orch.Encode(context.Background(), EncodeConfig{
		InputPath:  "in.png",
		OutputPath: "out.jxs",
		Format:     ports.FormatPNG,
		Options:    encoder.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(encodeStage.input.ImageData) != "png data" {
		t.Errorf("unexpected encode input %q", encodeStage.input.ImageData)
	}
	if data, ok := fs.GetFile("out.jxs"); !ok || len(data) != 2 {
		t.Error("expected encoded output to be written")
	}
	if result.FileSize != 2 {
		t.Errorf("unexpected result %+v", result)
	}

	if _, err := orch.Encode(context.Background(), EncodeConfig{InputPath: "missing.png"}); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestDisplayRect(t *testing.T) {
	r := codestream.Rect{X: 64, Y: 0, Width: 36, Height: 64}
	tests := []struct {
		orient codestream.Orientation
		want   codestream.Rect
	}{
		{codestream.OrientIdentity, r},
		{codestream.OrientFlipHorizontal, codestream.Rect{X: 0, Y: 0, Width: 36, Height: 64}},
		{codestream.OrientRotate90CW, codestream.Rect{X: 16, Y: 64, Width: 64, Height: 36}},
	}
	for _, tt := range tests {
		if got := displayRect(r, tt.orient, 100, 80); got != tt.want {
			t.Errorf("orientation %d: got %+v, want %+v", tt.orient, got, tt.want)
		}
	}
}
