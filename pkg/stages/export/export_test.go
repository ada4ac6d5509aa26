package export

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/user/jxlstream/pkg/adapters/logger"
	"github.com/user/jxlstream/pkg/mocks"
	"github.com/user/jxlstream/pkg/pipeline"
	"github.com/user/jxlstream/pkg/ports"
)

func TestStage_Execute(t *testing.T) {
	tests := []struct {
		name         string
		previewWidth int
		wantW, wantH int
		wantResize   bool
	}{
		{"full size", 0, 400, 300, false},
		{"preview", 200, 200, 150, true},
		{"preview wider than image", 800, 400, 300, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := &mocks.Renderer{
				EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
					return []byte("encoded"), nil
				},
			}
			stage := NewStage(renderer, logger.NewNoop())

			result, err := stage.Execute(context.Background(), pipeline.ExportInput{
				Image:        image.NewRGBA(image.Rect(0, 0, 400, 300)),
				Format:       ports.FormatJPEG,
				PreviewWidth: tt.previewWidth,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, result.Width, result.Height)
			}
			if (len(renderer.ResizeCalls) > 0) != tt.wantResize {
				t.Errorf("resize calls = %v", renderer.ResizeCalls)
			}
			if string(result.Data) != "encoded" {
				t.Errorf("unexpected data %q", result.Data)
			}
			if len(renderer.EncodeCalls) != 1 || renderer.EncodeCalls[0] != ports.FormatJPEG {
				t.Errorf("unexpected encode calls %v", renderer.EncodeCalls)
			}
		})
	}
}

func TestStage_Execute_DefaultQuality(t *testing.T) {
	var gotQuality int
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			gotQuality = quality
			return nil, nil
		},
	}
	stage := NewStage(renderer, logger.NewNoop())
	if _, err := stage.Execute(context.Background(), pipeline.ExportInput{Image: image.NewGray(image.Rect(0, 0, 1, 1))}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuality != 90 {
		t.Errorf("expected default quality 90, got %d", gotQuality)
	}
}

func TestStage_Execute_Errors(t *testing.T) {
	boom := errors.New("boom")
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, boom
		},
	}
	stage := NewStage(renderer, logger.NewNoop())

	if _, err := stage.Execute(context.Background(), pipeline.ExportInput{}); err == nil {
		t.Error("expected error for missing image")
	}

	_, err := stage.Execute(context.Background(), pipeline.ExportInput{Image: image.NewGray(image.Rect(0, 0, 1, 1))})
	if !errors.Is(err, boom) {
		t.Errorf("expected encoder error, got %v", err)
	}
}
