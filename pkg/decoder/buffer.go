package decoder

import (
	"fmt"

	"github.com/user/jxlstream/pkg/codestream"
)

// OutputBufferSize returns the number of bytes an output buffer in format f
// needs: stride*(ysize-1) + xsize*pixelBytes. The format becomes the
// session's sizing format, which SetOutputBuffer must match.
func (d *Decoder) OutputBufferSize(f codestream.PixelFormat) (int, error) {
	if d.closed || !d.haveInfo || d.state.terminal() {
		return 0, fmt.Errorf("%w: buffer size needs basic info", ErrInvalidState)
	}
	size, err := d.bufferSize(f)
	if err != nil {
		return 0, err
	}
	d.sized = true
	d.sizingFormat = f
	return size, nil
}

// SetOutputBuffer binds a caller-owned buffer that receives the decoded
// pixels. The decoder writes into buf but never frees or retains it past
// the session. A failed call leaves the decoder state unchanged.
func (d *Decoder) SetOutputBuffer(f codestream.PixelFormat, buf []byte) error {
	if d.closed || !d.haveInfo || d.state.terminal() || d.state == StateImageReady {
		return fmt.Errorf("%w: cannot bind output buffer in state %s", ErrInvalidState, d.state)
	}
	if d.decoded > 0 {
		return fmt.Errorf("%w: output buffer already receiving pixels", ErrInvalidState)
	}
	if d.sized && f != d.sizingFormat {
		return fmt.Errorf("%w: %+v, sized for %+v", ErrFormatMismatch, f, d.sizingFormat)
	}

	size, err := d.bufferSize(f)
	if err != nil {
		return err
	}
	if len(buf) < size {
		return fmt.Errorf("%w: %d bytes, need %d", ErrBufferTooSmall, len(buf), size)
	}

	d.sized = true
	d.sizingFormat = f
	d.format = f
	d.out = buf
	d.stride = f.Stride(int(d.info.Xsize))
	d.conv = newConverter(d.header, f)
	d.setState(StateImageDecoding)

	d.logger.Debug("Output buffer bound: %d bytes, stride %d", len(buf), d.stride)
	return nil
}

// DefaultPixelFormat returns the format that holds the image without loss:
// every channel, the data type matching the bit depth, native byte order
// and packed rows.
func (d *Decoder) DefaultPixelFormat() (codestream.PixelFormat, error) {
	if d.closed || !d.haveInfo {
		return codestream.PixelFormat{}, fmt.Errorf("%w: pixel format needs basic info", ErrInvalidState)
	}
	return codestream.PixelFormat{
		NumChannels: d.header.NumChannels(),
		DataType:    codestream.DataTypeForBits(uint32(d.header.BitsPerSample)),
		Endianness:  codestream.EndianNative,
	}, nil
}

func (d *Decoder) bufferSize(f codestream.PixelFormat) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if f.ColorChannels() == 1 && d.header.NumColorChannels == 3 {
		return 0, fmt.Errorf("%w: grayscale output from a color image", ErrUnsupportedFormat)
	}
	size, err := codestream.BufferSize(int(d.info.Xsize), int(d.info.Ysize), f)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	return size, nil
}
