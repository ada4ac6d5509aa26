package decoder

import (
	"encoding/binary"
	"math"

	"github.com/user/jxlstream/pkg/codestream"
)

// converter turns stored samples into output pixels.
type converter struct {
	srcBPS int
	dstBPS int
	dst    codestream.DataType
	order  binary.ByteOrder

	numOut int
	// source channel for each output channel; -1 fills opaque alpha
	channels [4]int

	// direct is set when output pixels are byte-identical to stored ones.
	direct bool
}

func newConverter(h codestream.Header, f codestream.PixelFormat) converter {
	c := converter{
		srcBPS: h.BytesPerSample(),
		dstBPS: f.DataType.BytesPerSample(),
		dst:    f.DataType,
		order:  f.Endianness.ByteOrder(),
		numOut: f.NumChannels,
	}

	srcColor := int(h.NumColorChannels)
	for ch := range f.ColorChannels() {
		if srcColor == 1 {
			c.channels[ch] = 0
		} else {
			c.channels[ch] = ch
		}
	}
	if f.HasAlpha() {
		a := f.ColorChannels()
		if h.NumExtraChannels > 0 {
			c.channels[a] = srcColor
		} else {
			c.channels[a] = -1
		}
	}

	sameType := (h.IsFloat() && f.DataType == codestream.DataTypeFloat) ||
		(!h.IsFloat() && c.srcBPS == c.dstBPS)
	c.direct = sameType &&
		f.NumChannels == h.NumChannels() &&
		f.ColorChannels() == srcColor &&
		(c.srcBPS == 1 || bigEndian(c.order))
	return c
}

func bigEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{0, 1}) == 1
}

// pixel writes one output pixel from one stored pixel.
func (c *converter) pixel(dst, src []byte) {
	for ch := range c.numOut {
		out := dst[ch*c.dstBPS:]
		sc := c.channels[ch]
		if sc < 0 {
			c.opaque(out)
			continue
		}
		c.sample(out, src[sc*c.srcBPS:])
	}
}

func (c *converter) opaque(dst []byte) {
	switch c.dst {
	case codestream.DataTypeFloat:
		c.order.PutUint32(dst, math.Float32bits(1))
	case codestream.DataTypeUint16:
		c.order.PutUint16(dst, math.MaxUint16)
	default:
		dst[0] = math.MaxUint8
	}
}

func (c *converter) sample(dst, src []byte) {
	switch c.dst {
	case codestream.DataTypeFloat:
		c.order.PutUint32(dst, math.Float32bits(c.toFloat(src)))
	case codestream.DataTypeUint16:
		c.order.PutUint16(dst, c.toUint16(src))
	default:
		dst[0] = c.toUint8(src)
	}
}

func (c *converter) toFloat(src []byte) float32 {
	switch c.srcBPS {
	case 1:
		return float32(src[0]) / math.MaxUint8
	case 2:
		return float32(binary.BigEndian.Uint16(src)) / math.MaxUint16
	default:
		return math.Float32frombits(binary.BigEndian.Uint32(src))
	}
}

func (c *converter) toUint16(src []byte) uint16 {
	switch c.srcBPS {
	case 1:
		return uint16(src[0]) * 257
	case 2:
		return binary.BigEndian.Uint16(src)
	default:
		return uint16(quantize(math.Float32frombits(binary.BigEndian.Uint32(src)), math.MaxUint16))
	}
}

func (c *converter) toUint8(src []byte) uint8 {
	switch c.srcBPS {
	case 1:
		return src[0]
	case 2:
		return uint8((uint32(binary.BigEndian.Uint16(src))*math.MaxUint8 + math.MaxUint16/2) / math.MaxUint16)
	default:
		return uint8(quantize(math.Float32frombits(binary.BigEndian.Uint32(src)), math.MaxUint8))
	}
}

// quantize maps [0, 1] to [0, maxVal], clamping out-of-range and NaN input.
func quantize(f float32, maxVal uint32) uint32 {
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return maxVal
	}
	return uint32(f*float32(maxVal) + 0.5)
}

// writeGroup stores the samples of group r into the output buffer,
// applying orientation and format conversion. Groups touch disjoint
// output bytes, so concurrent calls are safe.
func (d *Decoder) writeGroup(r codestream.Rect, samples []byte) {
	srcPB := d.header.NumChannels() * d.header.BytesPerSample()
	dstPB := d.format.PixelBytes()

	orient := d.header.Orientation
	if d.keepOrientation {
		orient = codestream.OrientIdentity
	}

	if orient == codestream.OrientIdentity && d.conv.direct {
		rowLen := r.Width * srcPB
		for y := range r.Height {
			off := (r.Y+y)*d.stride + r.X*dstPB
			copy(d.out[off:off+rowLen], samples[y*rowLen:(y+1)*rowLen])
		}
		return
	}

	w, h := int(d.header.Xsize), int(d.header.Ysize)
	for y := range r.Height {
		for x := range r.Width {
			dx, dy := r.X+x, r.Y+y
			if orient != codestream.OrientIdentity {
				dx, dy = orient.Apply(dx, dy, w, h)
			}
			off := dy*d.stride + dx*dstPB
			d.conv.pixel(d.out[off:off+dstPB], samples[(y*r.Width+x)*srcPB:])
		}
	}
}
