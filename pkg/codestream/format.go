package codestream

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataType is the numeric type of one output sample.
type DataType int

const (
	DataTypeUint8 DataType = iota
	DataTypeUint16
	DataTypeFloat
)

// BytesPerSample returns the size of one sample, or 0 for unknown types.
func (t DataType) BytesPerSample() int {
	switch t {
	case DataTypeUint8:
		return 1
	case DataTypeUint16:
		return 2
	case DataTypeFloat:
		return 4
	default:
		return 0
	}
}

// String returns the string representation of the data type.
func (t DataType) String() string {
	switch t {
	case DataTypeUint8:
		return "uint8"
	case DataTypeUint16:
		return "uint16"
	case DataTypeFloat:
		return "float"
	default:
		return "unknown"
	}
}

// ParseDataType parses a data type name, defaulting to DataTypeUint8.
func ParseDataType(s string) DataType {
	switch s {
	case "uint16":
		return DataTypeUint16
	case "float":
		return DataTypeFloat
	default:
		return DataTypeUint8
	}
}

// DataTypeForBits returns the data type that holds samples of the given bit
// depth without loss.
func DataTypeForBits(bits uint32) DataType {
	switch bits {
	case 16:
		return DataTypeUint16
	case 32:
		return DataTypeFloat
	default:
		return DataTypeUint8
	}
}

// Endianness selects the byte order of multi-byte samples.
type Endianness int

const (
	EndianNative Endianness = iota
	EndianLittle
	EndianBig
)

// ByteOrder resolves the endianness to a byte order.
func (e Endianness) ByteOrder() binary.ByteOrder {
	switch e {
	case EndianLittle:
		return binary.LittleEndian
	case EndianBig:
		return binary.BigEndian
	default:
		return binary.NativeEndian
	}
}

// ParseEndianness parses an endianness name, defaulting to EndianNative.
func ParseEndianness(s string) Endianness {
	switch s {
	case "little":
		return EndianLittle
	case "big":
		return EndianBig
	default:
		return EndianNative
	}
}

// PixelFormat describes a caller-owned pixel buffer.
type PixelFormat struct {
	// NumChannels is 1 (gray), 2 (gray+alpha), 3 (RGB) or 4 (RGBA).
	NumChannels int
	DataType    DataType
	Endianness  Endianness
	// Align rounds each row stride up to a multiple of Align bytes.
	// 0 and 1 mean rows are packed.
	Align int
}

// Validate checks that the format can describe a buffer.
func (f PixelFormat) Validate() error {
	if f.NumChannels < 1 || f.NumChannels > 4 {
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, f.NumChannels)
	}
	if f.DataType.BytesPerSample() == 0 {
		return fmt.Errorf("%w: data type %d", ErrInvalidFormat, f.DataType)
	}
	if f.Endianness < EndianNative || f.Endianness > EndianBig {
		return fmt.Errorf("%w: endianness %d", ErrInvalidFormat, f.Endianness)
	}
	if f.Align < 0 {
		return fmt.Errorf("%w: align %d", ErrInvalidFormat, f.Align)
	}
	return nil
}

// HasAlpha reports whether the format carries an alpha channel.
func (f PixelFormat) HasAlpha() bool {
	return f.NumChannels == 2 || f.NumChannels == 4
}

// ColorChannels returns the number of non-alpha channels.
func (f PixelFormat) ColorChannels() int {
	if f.NumChannels >= 3 {
		return 3
	}
	return 1
}

// PixelBytes returns the size of one pixel.
func (f PixelFormat) PixelBytes() int {
	return f.NumChannels * f.DataType.BytesPerSample()
}

// RowBytes returns the unpadded size of one row of xsize pixels.
func (f PixelFormat) RowBytes(xsize int) int {
	return xsize * f.PixelBytes()
}

// Stride returns the distance in bytes between the starts of two rows.
func (f PixelFormat) Stride(xsize int) int {
	row := f.RowBytes(xsize)
	if f.Align > 1 {
		row = (row + f.Align - 1) / f.Align * f.Align
	}
	return row
}

// BufferSize returns the number of bytes needed to hold an xsize×ysize image
// in format f. Every row but the last is padded to the stride.
func BufferSize(xsize, ysize int, f PixelFormat) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	if xsize <= 0 || ysize <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidHeader, xsize, ysize)
	}

	stride := uint64(f.Stride(xsize))
	size := stride*uint64(ysize-1) + uint64(f.RowBytes(xsize))
	if size > math.MaxInt32*4 {
		return 0, fmt.Errorf("%w: buffer of %d bytes", ErrImageTooLarge, size)
	}
	return int(size), nil
}
