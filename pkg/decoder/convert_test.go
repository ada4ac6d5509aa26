package decoder

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/encoder"
)

func decodeAs(t *testing.T, data []byte, f codestream.PixelFormat, opts ...Option) decodeResult {
	t.Helper()
	return decodeChunked(t, data, len(data), &f, opts...)
}

func TestConvert_Uint8ToUint16(t *testing.T) {
	f := patternFrame(9, 7, 8, 3, false)
	data := encode(t, f, nil)

	res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 3, DataType: codestream.DataTypeUint16, Endianness: codestream.EndianBig})
	for i, v := range f.Samples {
		got := binary.BigEndian.Uint16(res.pixels[2*i:])
		if got != uint16(v)*257 {
			t.Fatalf("sample %d = %d, want %d", i, got, uint16(v)*257)
		}
	}
}

func TestConvert_Uint16ToUint8(t *testing.T) {
	f := patternFrame(9, 7, 16, 1, false)
	data := encode(t, f, nil)

	res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 1, DataType: codestream.DataTypeUint8})
	for i := range len(res.pixels) {
		v := uint32(binary.BigEndian.Uint16(f.Samples[2*i:]))
		want := uint8((v*255 + 32767) / 65535)
		if res.pixels[i] != want {
			t.Fatalf("sample %d = %d, want %d", i, res.pixels[i], want)
		}
	}
}

func TestConvert_Uint16Endianness(t *testing.T) {
	f := patternFrame(9, 7, 16, 3, false)
	data := encode(t, f, nil)

	little := decodeAs(t, data, codestream.PixelFormat{NumChannels: 3, DataType: codestream.DataTypeUint16, Endianness: codestream.EndianLittle})
	big := decodeAs(t, data, codestream.PixelFormat{NumChannels: 3, DataType: codestream.DataTypeUint16, Endianness: codestream.EndianBig})

	for i := 0; i < len(f.Samples); i += 2 {
		want := binary.BigEndian.Uint16(f.Samples[i:])
		if got := binary.LittleEndian.Uint16(little.pixels[i:]); got != want {
			t.Fatalf("little endian sample %d = %d, want %d", i/2, got, want)
		}
		if got := binary.BigEndian.Uint16(big.pixels[i:]); got != want {
			t.Fatalf("big endian sample %d = %d, want %d", i/2, got, want)
		}
	}
}

func TestConvert_Uint8ToFloat(t *testing.T) {
	f := patternFrame(6, 5, 8, 3, false)
	data := encode(t, f, nil)

	res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 3, DataType: codestream.DataTypeFloat, Endianness: codestream.EndianLittle})
	for i, v := range f.Samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(res.pixels[4*i:]))
		if got != float32(v)/255 {
			t.Fatalf("sample %d = %v, want %v", i, got, float32(v)/255)
		}
	}
}

func TestConvert_FloatToUint8(t *testing.T) {
	f := patternFrame(6, 5, 32, 3, false)
	data := encode(t, f, nil)

	res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 3, DataType: codestream.DataTypeUint8})
	for i := range len(res.pixels) {
		v := math.Float32frombits(binary.BigEndian.Uint32(f.Samples[4*i:]))
		want := uint8(quantize(v, 255))
		if res.pixels[i] != want {
			t.Fatalf("sample %d = %d, want %d", i, res.pixels[i], want)
		}
	}
}

func TestConvert_OpaqueAlpha(t *testing.T) {
	f := patternFrame(5, 4, 8, 3, false)
	data := encode(t, f, nil)

	res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 4, DataType: codestream.DataTypeUint8})
	for p := range 5 * 4 {
		for c := range 3 {
			if res.pixels[4*p+c] != f.Samples[3*p+c] {
				t.Fatalf("pixel %d channel %d differs", p, c)
			}
		}
		if res.pixels[4*p+3] != 255 {
			t.Fatalf("pixel %d alpha = %d, want 255", p, res.pixels[4*p+3])
		}
	}
}

func TestConvert_GrayToRGB(t *testing.T) {
	f := patternFrame(5, 4, 8, 1, true)
	data := encode(t, f, nil)

	res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 4, DataType: codestream.DataTypeUint8})
	for p := range 5 * 4 {
		gray, alpha := f.Samples[2*p], f.Samples[2*p+1]
		got := res.pixels[4*p : 4*p+4]
		if got[0] != gray || got[1] != gray || got[2] != gray || got[3] != alpha {
			t.Fatalf("pixel %d = %v, want gray %d alpha %d", p, got, gray, alpha)
		}
	}
}

func TestConvert_DropAlpha(t *testing.T) {
	f := patternFrame(5, 4, 8, 3, true)
	data := encode(t, f, nil)

	res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 3, DataType: codestream.DataTypeUint8})
	for p := range 5 * 4 {
		for c := range 3 {
			if res.pixels[3*p+c] != f.Samples[4*p+c] {
				t.Fatalf("pixel %d channel %d differs", p, c)
			}
		}
	}
}

func TestConvert_AlignedRows(t *testing.T) {
	f := patternFrame(5, 3, 8, 3, false)
	data := encode(t, f, nil)

	res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 3, DataType: codestream.DataTypeUint8, Align: 16})
	if len(res.pixels) != 47 {
		t.Fatalf("buffer size = %d, want 47", len(res.pixels))
	}
	for y := range 3 {
		for i := range 15 {
			if res.pixels[16*y+i] != f.Samples[15*y+i] {
				t.Fatalf("row %d byte %d differs", y, i)
			}
		}
	}
}

func TestOrientation_Applied(t *testing.T) {
	const w, h = 70, 40
	f := patternFrame(w, h, 8, 1, false)

	for o := codestream.OrientIdentity; o <= codestream.OrientRotate90CCW; o++ {
		data := encode(t, f, func(opts *encoder.Options) { opts.Orientation = o })
		res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 1})

		dw, dh := w, h
		if o.SwapsAxes() {
			dw, dh = h, w
		}
		if res.info.Xsize != uint32(dw) || res.info.Ysize != uint32(dh) || res.info.Orientation != o {
			t.Fatalf("orientation %d: info %+v", o, res.info)
		}

		for y := range h {
			for x := range w {
				dx, dy := o.Apply(x, y, w, h)
				if res.pixels[dy*dw+dx] != f.Samples[y*w+x] {
					t.Fatalf("orientation %d: stored (%d,%d) not at (%d,%d)", o, x, y, dx, dy)
				}
			}
		}
	}
}

func TestOrientation_Kept(t *testing.T) {
	f := patternFrame(30, 20, 8, 3, false)
	data := encode(t, f, func(opts *encoder.Options) { opts.Orientation = codestream.OrientRotate90CW })

	res := decodeAs(t, data, codestream.PixelFormat{NumChannels: 3}, WithKeepOrientation(true))
	if res.info.Xsize != 30 || res.info.Ysize != 20 {
		t.Fatalf("expected stored dimensions, got %dx%d", res.info.Xsize, res.info.Ysize)
	}
	for i := range f.Samples {
		if res.pixels[i] != f.Samples[i] {
			t.Fatalf("byte %d differs", i)
		}
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   float32
		want uint32
	}{
		{-1, 0},
		{0, 0},
		{float32(math.NaN()), 0},
		{0.5, 128},
		{1, 255},
		{2, 255},
	}
	for _, tt := range tests {
		if got := quantize(tt.in, 255); got != tt.want {
			t.Errorf("quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
