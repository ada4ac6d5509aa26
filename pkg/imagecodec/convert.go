package imagecodec

import (
	"fmt"
	"image"
	"math"

	"github.com/user/jxlstream/pkg/codestream"
)

// ToImage wraps a decoded w×h pixel buffer in format f as an image.Image.
// 8-bit buffers become *image.Gray or *image.NRGBA; 16-bit and float
// buffers become *image.Gray16 or *image.NRGBA64. Pixels are copied.
func ToImage(buf []byte, w, h int, f codestream.PixelFormat) (image.Image, error) {
	size, err := codestream.BufferSize(w, h, f)
	if err != nil {
		return nil, err
	}
	if len(buf) < size {
		return nil, fmt.Errorf("pixel buffer of %d bytes, need %d", len(buf), size)
	}

	stride := f.Stride(w)
	rect := image.Rect(0, 0, w, h)

	if f.DataType == codestream.DataTypeUint8 {
		if f.NumChannels == 1 {
			img := image.NewGray(rect)
			for y := range h {
				copy(img.Pix[y*img.Stride:], buf[y*stride:y*stride+w])
			}
			return img, nil
		}
		img := image.NewNRGBA(rect)
		for y := range h {
			for x := range w {
				px := buf[y*stride+x*f.PixelBytes():]
				r, g, b, a := channels(f, px, func(p []byte) uint16 { return uint16(p[0]) })
				img.Pix[y*img.Stride+4*x+0] = uint8(r)
				img.Pix[y*img.Stride+4*x+1] = uint8(g)
				img.Pix[y*img.Stride+4*x+2] = uint8(b)
				img.Pix[y*img.Stride+4*x+3] = uint8(a)
			}
		}
		return img, nil
	}

	order := f.Endianness.ByteOrder()
	read := func(p []byte) uint16 { return order.Uint16(p) }
	if f.DataType == codestream.DataTypeFloat {
		read = func(p []byte) uint16 { return unitToUint16(math.Float32frombits(order.Uint32(p))) }
	}

	if f.NumChannels == 1 {
		img := image.NewGray16(rect)
		bps := f.DataType.BytesPerSample()
		for y := range h {
			for x := range w {
				v := read(buf[y*stride+x*bps:])
				img.Pix[y*img.Stride+2*x] = uint8(v >> 8)
				img.Pix[y*img.Stride+2*x+1] = uint8(v)
			}
		}
		return img, nil
	}

	img := image.NewNRGBA64(rect)
	for y := range h {
		for x := range w {
			r, g, b, a := channels(f, buf[y*stride+x*f.PixelBytes():], read)
			off := y*img.Stride + 8*x
			for i, v := range [4]uint16{r, g, b, a} {
				img.Pix[off+2*i] = uint8(v >> 8)
				img.Pix[off+2*i+1] = uint8(v)
			}
		}
	}
	return img, nil
}

// channels expands one pixel to straight RGBA using read for each sample.
// Missing alpha is reported as the maximum of the 8- or 16-bit range.
func channels(f codestream.PixelFormat, px []byte, read func([]byte) uint16) (r, g, b, a uint16) {
	bps := f.DataType.BytesPerSample()
	opaque := uint16(math.MaxUint16)
	if bps == 1 {
		opaque = math.MaxUint8
	}

	switch f.NumChannels {
	case 2:
		v := read(px)
		return v, v, v, read(px[bps:])
	case 3:
		return read(px), read(px[bps:]), read(px[2*bps:]), opaque
	default:
		return read(px), read(px[bps:]), read(px[2*bps:]), read(px[3*bps:])
	}
}

func unitToUint16(v float32) uint16 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return math.MaxUint16
	}
	return uint16(v*math.MaxUint16 + 0.5)
}
