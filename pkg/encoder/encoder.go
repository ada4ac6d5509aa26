// Package encoder produces JXS codestreams, optionally wrapped in a
// container. Groups are encoded independently through a parallel runner.
package encoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/user/jxlstream/pkg/adapters/inlinerunner"
	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/container"
	"github.com/user/jxlstream/pkg/ports"
)

// ErrInvalidFrame is returned for frames whose samples do not match their
// declared layout.
var ErrInvalidFrame = errors.New("jxlstream: invalid frame")

// Options controls how a frame is encoded.
type Options struct {
	GroupDim    int
	Compression codestream.Compression
	Predictor   codestream.Predictor
	Container   bool
	Orientation codestream.Orientation
	Transfer    codestream.TransferFunction
	// Level is the zstd encoder level; zero selects SpeedDefault.
	Level zstd.EncoderLevel
	// Runner encodes groups; nil encodes sequentially.
	Runner ports.ParallelRunner
}

// DefaultOptions returns options for a raw codestream with 256-pixel groups,
// zstd compression and the left predictor.
func DefaultOptions() Options {
	return Options{
		GroupDim:    256,
		Compression: codestream.CompressionZstd,
		Predictor:   codestream.PredictorLeft,
		Orientation: codestream.OrientIdentity,
		Transfer:    codestream.TransferSRGB,
	}
}

// Frame is an image in stored order: interleaved big-endian samples,
// color channels first, then alpha.
type Frame struct {
	Width         int
	Height        int
	BitsPerSample int
	ColorChannels int
	Alpha         bool
	Samples       []byte
}

// NumChannels returns the number of interleaved channels.
func (f Frame) NumChannels() int {
	if f.Alpha {
		return f.ColorChannels + 1
	}
	return f.ColorChannels
}

// PixelBytes returns the size of one stored pixel.
func (f Frame) PixelBytes() int {
	return f.NumChannels() * f.BitsPerSample / 8
}

// Header builds the codestream header for f.
func (f Frame) Header(opts Options) codestream.Header {
	h := codestream.Header{
		Xsize:            uint32(f.Width),
		Ysize:            uint32(f.Height),
		BitsPerSample:    uint8(f.BitsPerSample),
		NumColorChannels: uint8(f.ColorChannels),
		Orientation:      opts.Orientation,
		Transfer:         opts.Transfer,
		GroupDim:         uint16(opts.GroupDim),
		Compression:      opts.Compression,
	}
	if f.Alpha {
		h.NumExtraChannels = 1
	}
	if h.Orientation == 0 {
		h.Orientation = codestream.OrientIdentity
	}
	return h
}

// Encode writes f to w.
func Encode(w io.Writer, f Frame, opts Options) error {
	cs, err := EncodeBytes(f, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(cs); err != nil {
		return fmt.Errorf("write codestream: %w", err)
	}
	return nil
}

// EncodeBytes returns the encoded stream for f.
func EncodeBytes(f Frame, opts Options) ([]byte, error) {
	h := f.Header(opts)
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if len(f.Samples) != f.Width*f.Height*f.PixelBytes() {
		return nil, fmt.Errorf("%w: %d sample bytes for %dx%d×%d", ErrInvalidFrame, len(f.Samples), f.Width, f.Height, f.PixelBytes())
	}
	if opts.Predictor > codestream.PredictorLeft {
		return nil, fmt.Errorf("%w: predictor %d", ErrInvalidFrame, opts.Predictor)
	}

	payloads, err := encodeGroups(f, h, opts)
	if err != nil {
		return nil, err
	}

	var cs bytes.Buffer
	cs.Write(codestream.CodestreamSignature)
	cs.Write(h.AppendBinary(nil))
	toc := make([]byte, 0, 4*len(payloads))
	for _, p := range payloads {
		toc = binary.BigEndian.AppendUint32(toc, uint32(len(p)))
	}
	cs.Write(toc)
	for _, p := range payloads {
		cs.Write(p)
	}

	if !opts.Container {
		return cs.Bytes(), nil
	}

	var out bytes.Buffer
	if err := container.Write(&out, cs.Bytes()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// encodeGroups builds every group payload through the runner.
func encodeGroups(f Frame, h codestream.Header, opts Options) ([][]byte, error) {
	grid := h.Grid()
	payloads := make([][]byte, grid.NumGroups())

	var enc *zstd.Encoder
	runner := opts.Runner
	if runner == nil {
		runner = inlinerunner.New()
	}

	init := func(numThreads int) error {
		if h.Compression != codestream.CompressionZstd {
			return nil
		}
		level := opts.Level
		if level == 0 {
			level = zstd.SpeedDefault
		}
		var err error
		enc, err = zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(numThreads),
			zstd.WithEncoderLevel(level),
			zstd.WithLowerEncoderMem(true),
		)
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		return nil
	}

	task := func(i, _ int) error {
		r := grid.Group(i)
		raw := groupSamples(f, r, opts.Predictor)
		if h.Compression == codestream.CompressionZstd {
			if enc == nil {
				return errors.New("runner did not call init")
			}
			payloads[i] = enc.EncodeAll(raw, make([]byte, 0, len(raw)/2))
			return nil
		}
		payloads[i] = raw
		return nil
	}

	err := runner.Run(len(payloads), init, task)
	if enc != nil {
		if cerr := enc.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("encode groups: %w", err)
	}
	return payloads, nil
}

// groupSamples extracts the raw payload of group r: predictor byte, then
// the group's samples row by row.
func groupSamples(f Frame, r codestream.Rect, p codestream.Predictor) []byte {
	pb := f.PixelBytes()
	rowLen := r.Width * pb
	raw := make([]byte, 1+r.Height*rowLen)
	raw[0] = byte(p)

	samples := raw[1:]
	for y := range r.Height {
		src := ((r.Y+y)*f.Width + r.X) * pb
		copy(samples[y*rowLen:(y+1)*rowLen], f.Samples[src:src+rowLen])
	}
	if p == codestream.PredictorLeft {
		codestream.Predict(samples, r.Width, r.Height, f.NumChannels(), f.BitsPerSample/8)
	}
	return raw
}
