package codestream

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the encoded size of Header in bytes.
const HeaderSize = 17

const (
	// MaxDimension bounds xsize and ysize.
	MaxDimension = 1 << 20
	// MaxPixels bounds xsize*ysize.
	MaxPixels = 1 << 28
)

// TransferFunction identifies the transfer curve of the color samples.
type TransferFunction uint8

const (
	TransferSRGB TransferFunction = iota
	TransferLinear
)

// String returns the string representation of the transfer function.
func (t TransferFunction) String() string {
	switch t {
	case TransferSRGB:
		return "srgb"
	case TransferLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// Compression identifies how group payloads are stored.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
)

// String returns the string representation of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression parses a compression name, defaulting to CompressionNone.
func ParseCompression(s string) Compression {
	if s == "zstd" {
		return CompressionZstd
	}
	return CompressionNone
}

// Header is the fixed-size image header that follows the signature.
type Header struct {
	Xsize            uint32
	Ysize            uint32
	BitsPerSample    uint8
	NumColorChannels uint8
	NumExtraChannels uint8
	Orientation      Orientation
	Transfer         TransferFunction
	GroupDim         uint16
	Compression      Compression
}

// ParseHeader decodes and validates a header from the first HeaderSize bytes of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidHeader, HeaderSize, len(b))
	}

	h := Header{
		Xsize:            binary.BigEndian.Uint32(b[0:4]),
		Ysize:            binary.BigEndian.Uint32(b[4:8]),
		BitsPerSample:    b[8],
		NumColorChannels: b[9],
		NumExtraChannels: b[10],
		Orientation:      Orientation(b[11]),
		Transfer:         TransferFunction(b[12]),
		GroupDim:         binary.BigEndian.Uint16(b[13:15]),
		Compression:      Compression(b[15]),
	}
	if b[16] != 0 {
		return Header{}, fmt.Errorf("%w: reserved byte %#x", ErrInvalidHeader, b[16])
	}

	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// AppendBinary appends the encoded header to dst.
func (h Header) AppendBinary(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, h.Xsize)
	dst = binary.BigEndian.AppendUint32(dst, h.Ysize)
	dst = append(dst, h.BitsPerSample, h.NumColorChannels, h.NumExtraChannels,
		byte(h.Orientation), byte(h.Transfer))
	dst = binary.BigEndian.AppendUint16(dst, h.GroupDim)
	dst = append(dst, byte(h.Compression), 0)
	return dst
}

// Validate checks every header field against the format limits.
func (h Header) Validate() error {
	if h.Xsize == 0 || h.Ysize == 0 {
		return fmt.Errorf("%w: zero dimension %dx%d", ErrInvalidHeader, h.Xsize, h.Ysize)
	}
	if h.Xsize > MaxDimension || h.Ysize > MaxDimension ||
		uint64(h.Xsize)*uint64(h.Ysize) > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, h.Xsize, h.Ysize)
	}

	switch h.BitsPerSample {
	case 8, 16, 32:
	default:
		return fmt.Errorf("%w: bits per sample %d", ErrInvalidHeader, h.BitsPerSample)
	}

	if h.NumColorChannels != 1 && h.NumColorChannels != 3 {
		return fmt.Errorf("%w: %d color channels", ErrInvalidHeader, h.NumColorChannels)
	}
	if h.NumExtraChannels > 1 {
		return fmt.Errorf("%w: %d extra channels", ErrInvalidHeader, h.NumExtraChannels)
	}
	if !h.Orientation.Valid() {
		return fmt.Errorf("%w: orientation %d", ErrInvalidHeader, h.Orientation)
	}
	if h.Transfer > TransferLinear {
		return fmt.Errorf("%w: transfer function %d", ErrInvalidHeader, h.Transfer)
	}

	switch h.GroupDim {
	case 64, 128, 256, 512, 1024:
	default:
		return fmt.Errorf("%w: group dimension %d", ErrInvalidHeader, h.GroupDim)
	}

	if h.Compression > CompressionZstd {
		return fmt.Errorf("%w: compression %d", ErrInvalidHeader, h.Compression)
	}
	return nil
}

// NumChannels returns the number of interleaved channels per pixel.
func (h Header) NumChannels() int {
	return int(h.NumColorChannels) + int(h.NumExtraChannels)
}

// BytesPerSample returns the stored size of one sample.
func (h Header) BytesPerSample() int {
	return int(h.BitsPerSample) / 8
}

// IsFloat reports whether samples are IEEE 754 single precision.
func (h Header) IsFloat() bool {
	return h.BitsPerSample == 32
}

// Grid returns the group layout of the image.
func (h Header) Grid() Grid {
	return NewGrid(int(h.Xsize), int(h.Ysize), int(h.GroupDim))
}

// TOCSize returns the size of the table of contents in bytes.
func (h Header) TOCSize() int {
	return 4 * h.Grid().NumGroups()
}

// MaxGroupPayload bounds a single TOC entry for the given group.
func (h Header) MaxGroupPayload(r Rect) int {
	raw := RawGroupSize(r, h.NumChannels(), h.BytesPerSample())
	if h.Compression == CompressionNone {
		return raw
	}
	// Incompressible data grows by the zstd frame and block headers.
	return raw + raw/64 + 1024
}

// BasicInfo returns the header-derived image metadata. Unless
// keepOrientation is set, dimensions are reported as displayed.
func (h Header) BasicInfo(keepOrientation bool, haveContainer bool) BasicInfo {
	info := BasicInfo{
		HaveContainer:    haveContainer,
		Xsize:            h.Xsize,
		Ysize:            h.Ysize,
		BitsPerSample:    uint32(h.BitsPerSample),
		NumColorChannels: uint32(h.NumColorChannels),
		NumExtraChannels: uint32(h.NumExtraChannels),
		Orientation:      h.Orientation,
	}
	if h.IsFloat() {
		info.ExponentBitsPerSample = 8
	}
	if h.NumExtraChannels > 0 {
		info.AlphaBits = info.BitsPerSample
		info.AlphaExponentBits = info.ExponentBitsPerSample
	}
	if !keepOrientation && h.Orientation.SwapsAxes() {
		info.Xsize, info.Ysize = info.Ysize, info.Xsize
	}
	return info
}

// ColorEncoding returns the color encoding described by the header.
func (h Header) ColorEncoding() ColorEncoding {
	cs := ColorSpaceRGB
	if h.NumColorChannels == 1 {
		cs = ColorSpaceGray
	}
	return ColorEncoding{
		ColorSpace:       cs,
		WhitePoint:       WhitePointD65,
		Primaries:        PrimariesSRGB,
		TransferFunction: h.Transfer,
	}
}

// BasicInfo is the image metadata available once the header is parsed.
type BasicInfo struct {
	HaveContainer         bool        `json:"have_container"`
	Xsize                 uint32      `json:"xsize"`
	Ysize                 uint32      `json:"ysize"`
	BitsPerSample         uint32      `json:"bits_per_sample"`
	ExponentBitsPerSample uint32      `json:"exponent_bits_per_sample"`
	NumColorChannels      uint32      `json:"num_color_channels"`
	NumExtraChannels      uint32      `json:"num_extra_channels"`
	AlphaBits             uint32      `json:"alpha_bits"`
	AlphaExponentBits     uint32      `json:"alpha_exponent_bits"`
	Orientation           Orientation `json:"orientation"`
}

// ColorSpace identifies the color model of the image.
type ColorSpace int

const (
	ColorSpaceRGB ColorSpace = iota
	ColorSpaceGray
)

// String returns the string representation of the color space.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceRGB:
		return "rgb"
	case ColorSpaceGray:
		return "gray"
	default:
		return "unknown"
	}
}

// WhitePoint identifies the white point of the color encoding.
type WhitePoint int

const WhitePointD65 WhitePoint = 1

// Primaries identifies the color primaries of the color encoding.
type Primaries int

const PrimariesSRGB Primaries = 1

// ColorEncoding describes how color samples are to be interpreted.
type ColorEncoding struct {
	ColorSpace       ColorSpace       `json:"color_space"`
	WhitePoint       WhitePoint       `json:"white_point"`
	Primaries        Primaries        `json:"primaries"`
	TransferFunction TransferFunction `json:"transfer_function"`
}
