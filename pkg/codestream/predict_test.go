package codestream

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestPredict_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, bps := range []int{1, 2, 4} {
		for _, channels := range []int{1, 3, 4} {
			w, h := 7, 5
			orig := make([]byte, w*h*channels*bps)
			rng.Read(orig)

			buf := bytes.Clone(orig)
			Predict(buf, w, h, channels, bps)
			if w > 1 && bytes.Equal(buf, orig) {
				t.Errorf("bps=%d channels=%d: predict left data unchanged", bps, channels)
			}
			Unpredict(buf, w, h, channels, bps)
			if !bytes.Equal(buf, orig) {
				t.Errorf("bps=%d channels=%d: round trip mismatch", bps, channels)
			}
		}
	}
}

func TestPredict_Residuals(t *testing.T) {
	// One row, one channel, 8-bit: 10 12 9 -> 10 2 253
	buf := []byte{10, 12, 9}
	Predict(buf, 3, 1, 1, 1)
	want := []byte{10, 2, 253}
	if !bytes.Equal(buf, want) {
		t.Errorf("Predict = %v, want %v", buf, want)
	}
}

func TestOrientation_Apply(t *testing.T) {
	// Stored 3x2 image, pixel (2, 0) is the top-right corner.
	tests := []struct {
		o      Orientation
		wx, wy int
	}{
		{OrientIdentity, 2, 0},
		{OrientFlipHorizontal, 0, 0},
		{OrientRotate180, 0, 1},
		{OrientFlipVertical, 2, 1},
		{OrientTranspose, 0, 2},
		{OrientRotate90CW, 1, 2},
		{OrientAntiTranspose, 1, 0},
		{OrientRotate90CCW, 0, 0},
	}
	for _, tt := range tests {
		x, y := tt.o.Apply(2, 0, 3, 2)
		if x != tt.wx || y != tt.wy {
			t.Errorf("orientation %d: got (%d,%d), want (%d,%d)", tt.o, x, y, tt.wx, tt.wy)
		}
	}
}
