// Package imagecodec registers JXS streams with the standard image package
// and converts decoded pixel buffers into image.Image values.
//
// Importing the package for its side effect is enough for image.Decode:
//
//	import _ "github.com/user/jxlstream/pkg/imagecodec"
package imagecodec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/decoder"
)

// FormatName is the name reported by image.Decode.
const FormatName = "jxs"

const readChunkSize = 64 << 10

func init() {
	image.RegisterFormat(FormatName, string(codestream.CodestreamSignature), Decode, DecodeConfig)
	image.RegisterFormat(FormatName, string(codestream.ContainerSignature), Decode, DecodeConfig)
}

// Decode reads a complete stream from r and returns the image in its
// lossless default pixel format.
func Decode(r io.Reader) (image.Image, error) {
	dec := decoder.New()
	defer dec.Close()
	if err := dec.SubscribeEvents(decoder.EventBasicInfo | decoder.EventFullImage); err != nil {
		return nil, err
	}

	var (
		info   codestream.BasicInfo
		format codestream.PixelFormat
		pixels []byte
	)
	err := run(dec, r, func(ev decoder.Event) (bool, error) {
		switch ev {
		case decoder.EventBasicInfo:
			var err error
			if info, err = dec.GetBasicInfo(); err != nil {
				return false, err
			}
		case decoder.EventNeedOutputBuffer:
			var err error
			if format, err = dec.DefaultPixelFormat(); err != nil {
				return false, err
			}
			size, err := dec.OutputBufferSize(format)
			if err != nil {
				return false, err
			}
			pixels = make([]byte, size)
			if err := dec.SetOutputBuffer(format, pixels); err != nil {
				return false, err
			}
		case decoder.EventFullImage:
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return ToImage(pixels, int(info.Xsize), int(info.Ysize), format)
}

// DecodeConfig reads only as much of r as needed for the image dimensions.
func DecodeConfig(r io.Reader) (image.Config, error) {
	dec := decoder.New()
	defer dec.Close()
	if err := dec.SubscribeEvents(decoder.EventBasicInfo); err != nil {
		return image.Config{}, err
	}

	var info codestream.BasicInfo
	err := run(dec, r, func(ev decoder.Event) (bool, error) {
		if ev != decoder.EventBasicInfo {
			return false, nil
		}
		var err error
		info, err = dec.GetBasicInfo()
		return true, err
	})
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: ColorModel(info),
		Width:      int(info.Xsize),
		Height:     int(info.Ysize),
	}, nil
}

// run feeds r into dec and calls handle for every event other than
// NeedMoreInput until handle reports done.
func run(dec *decoder.Decoder, r io.Reader, handle func(decoder.Event) (bool, error)) error {
	buf := make([]byte, readChunkSize)
	cursor := decoder.NewCursor(nil)
	eof := false

	for {
		ev, err := dec.ProcessInput(cursor)
		if err != nil {
			return err
		}
		if ev == decoder.EventNeedMoreInput {
			if eof {
				return io.ErrUnexpectedEOF
			}
			n, err := io.ReadFull(r, buf)
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				eof = true
			} else if err != nil {
				return fmt.Errorf("read stream: %w", err)
			}
			cursor.Refill(buf[:n])
			continue
		}
		if ev == decoder.EventSuccess || ev == decoder.EventFinished {
			return io.ErrUnexpectedEOF
		}

		done, err := handle(ev)
		if err != nil || done {
			return err
		}
	}
}

// ColorModel returns the color model of the default pixel format for info.
func ColorModel(info codestream.BasicInfo) color.Model {
	alpha := info.NumExtraChannels > 0
	switch {
	case info.BitsPerSample == 8 && info.NumColorChannels == 1 && !alpha:
		return color.GrayModel
	case info.BitsPerSample == 8:
		return color.NRGBAModel
	case info.NumColorChannels == 1 && !alpha:
		return color.Gray16Model
	default:
		return color.NRGBA64Model
	}
}
