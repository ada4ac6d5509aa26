package summarizer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/jxlstream/pkg/mocks"
)

func TestBuilder(t *testing.T) {
	before := time.Now()
	s := NewBuilder().
		WithInput(InputInfo{Path: "in.jxs", Size: 2048, Container: true, Chunks: 2, ChunkSize: 1024}).
		WithImage(ImageInfo{Width: 64, Height: 32, BitsPerSample: 8, ColorChannels: 3}).
		WithDecode(DecodeInfo{Groups: 1, GroupDim: 256, Workers: 4}).
		WithOutput(OutputInfo{Path: "out.png", Format: "png"}).
		Build()

	if s.GeneratedAt.Before(before) {
		t.Errorf("GeneratedAt = %v, want >= %v", s.GeneratedAt, before)
	}
	if s.Input.Path != "in.jxs" || !s.Input.Container {
		t.Errorf("Input = %+v", s.Input)
	}
	if s.Image.Width != 64 || s.Image.Height != 32 {
		t.Errorf("Image = %+v", s.Image)
	}
	if s.Decode.Workers != 4 {
		t.Errorf("Decode.Workers = %d, want 4", s.Decode.Workers)
	}
	if s.Output.Format != "png" {
		t.Errorf("Output.Format = %q, want png", s.Output.Format)
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(s *Summary) string { return "summary of " + s.Input.Path }), fs)

	s := NewBuilder().WithInput(InputInfo{Path: "a.jxs"}).Build()
	if err := w.Write("reports/a.md", s); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if ok, _ := fs.Exists("reports"); !ok {
		t.Error("reports directory not created")
	}
	data, ok := fs.GetFile("reports/a.md")
	if !ok {
		t.Fatal("summary file not written")
	}
	if !strings.Contains(string(data), "summary of a.jxs") {
		t.Errorf("content = %q", data)
	}
}

func TestWriter_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	var mkdirs []string
	fs.MkdirAllFunc = func(path string) error {
		mkdirs = append(mkdirs, path)
		return nil
	}
	fs.WriteFileFunc = func(path string, data []byte) error {
		return errors.New("disk full")
	}
	w := NewWriter(FormatFunc(func(*Summary) string { return "" }), fs)

	err := w.Write("a.md", NewSummary())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Write() error = %v, want disk full", err)
	}
	if len(mkdirs) != 0 {
		t.Errorf("MkdirAll called for current directory: %v", mkdirs)
	}
}
