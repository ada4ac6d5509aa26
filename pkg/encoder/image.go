package encoder

import (
	"encoding/binary"
	"image"
	"image/color"
	"io"
)

// FrameFromImage converts img to a frame. Gray images keep one color
// channel, 16-bit images keep 16 bits and alpha is stored only when some
// pixel is not opaque.
func FrameFromImage(img image.Image) Frame {
	b := img.Bounds()
	f := Frame{
		Width:         b.Dx(),
		Height:        b.Dy(),
		BitsPerSample: 8,
		ColorChannels: 3,
		Alpha:         !opaque(img),
	}

	switch img.(type) {
	case *image.Gray:
		f.ColorChannels = 1
	case *image.Gray16:
		f.ColorChannels = 1
		f.BitsPerSample = 16
	case *image.RGBA64, *image.NRGBA64:
		f.BitsPerSample = 16
	}

	f.Samples = make([]byte, f.Width*f.Height*f.PixelBytes())
	off := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			vals := [4]uint16{c.R, c.G, c.B, c.A}
			if f.ColorChannels == 1 {
				vals[0] = color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y
				vals[1] = c.A
			}
			for ch := range f.NumChannels() {
				if f.BitsPerSample == 16 {
					binary.BigEndian.PutUint16(f.Samples[off:], vals[ch])
					off += 2
				} else {
					f.Samples[off] = uint8(vals[ch] >> 8)
					off++
				}
			}
		}
	}
	return f
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xFFFF {
				return false
			}
		}
	}
	return true
}

// EncodeImage encodes img to w.
func EncodeImage(w io.Writer, img image.Image, opts Options) error {
	return Encode(w, FrameFromImage(img), opts)
}
