package decoder

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/user/jxlstream/pkg/codestream"
)

// defaultBatchSize is the number of groups decoded per runner call when the
// runner does not report its width.
const defaultBatchSize = 8

// workerCounter is implemented by runners that know their pool size.
type workerCounter interface {
	NumWorkers() int
}

// ProcessInput consumes input from in until the next subscribed event or
// until in is exhausted. Malformed input moves the decoder to StateError
// and returns EventError with an error wrapping one of the codestream
// sentinels; every later call fails with ErrInvalidState.
func (d *Decoder) ProcessInput(in *Cursor) (Event, error) {
	if d.closed {
		return EventError, fmt.Errorf("%w: decoder closed", ErrInvalidState)
	}
	if in == nil {
		return EventError, fmt.Errorf("%w: nil cursor", ErrInvalidArgument)
	}

	switch d.state {
	case StateError:
		return EventError, fmt.Errorf("%w: decoder failed earlier: %v", ErrInvalidState, d.err)
	case StateFinished:
		return EventFinished, nil
	case StateImageReady:
		d.finish()
		return EventSuccess, nil
	case StateCreated:
		d.started = true
		d.setState(StateHeaderParsing)
	}

	ev, err := d.advance(in)
	if err != nil {
		d.fail(err)
		return EventError, err
	}
	return ev, nil
}

// FlushImage decodes every completely received group into the bound
// output buffer.
func (d *Decoder) FlushImage() error {
	if d.closed || d.out == nil || d.state.terminal() {
		return fmt.Errorf("%w: no output buffer to flush into", ErrInvalidState)
	}
	if err := d.flush(); err != nil {
		d.fail(err)
		return err
	}
	return nil
}

// advance runs the parser until it reaches an event or runs out of input.
func (d *Decoder) advance(in *Cursor) (Event, error) {
	for {
		switch d.phase {
		case phaseSignature:
			done, err := d.readSignature(in)
			if err != nil {
				return EventError, err
			}
			if !done {
				return EventNeedMoreInput, nil
			}
			d.phase = phaseHeader
			if d.haveContainer {
				d.phase = phaseCodestreamSignature
			}

		case phaseCodestreamSignature:
			done, err := d.accumulate(in, len(codestream.CodestreamSignature))
			if err != nil {
				return EventError, err
			}
			if !done {
				return EventNeedMoreInput, nil
			}
			sig := codestream.CheckSignature(d.acc)
			d.free(&d.acc)
			d.accLen = 0
			if sig != codestream.SignatureCodestream {
				return EventError, fmt.Errorf("check codestream box signature: %w", codestream.ErrInvalidSignature)
			}
			d.phase = phaseHeader

		case phaseHeader:
			done, err := d.accumulate(in, codestream.HeaderSize)
			if err != nil {
				return EventError, err
			}
			if !done {
				return EventNeedMoreInput, nil
			}
			if err := d.parseHeader(); err != nil {
				return EventError, err
			}
			d.phase = phaseBasicInfoEvent

		case phaseBasicInfoEvent:
			d.phase = phaseColorEvent
			if d.subscribed&EventBasicInfo != 0 {
				return EventBasicInfo, nil
			}

		case phaseColorEvent:
			d.phase = phaseTOC
			if d.subscribed&EventColorEncoding != 0 {
				return EventColorEncoding, nil
			}

		case phaseTOC:
			if d.subscribed&EventFullImage == 0 {
				d.finish()
				return EventSuccess, nil
			}
			done, err := d.accumulate(in, d.header.TOCSize())
			if err != nil {
				return EventError, err
			}
			if !done {
				return EventNeedMoreInput, nil
			}
			if err := d.parseTOC(); err != nil {
				return EventError, err
			}
			d.phase = phaseGroups

		case phaseGroups:
			if d.out == nil {
				d.setState(StateAwaitingOutputBuffer)
				return EventNeedOutputBuffer, nil
			}
			done, err := d.receiveGroups(in)
			if err != nil {
				return EventError, err
			}
			if !done {
				return EventNeedMoreInput, nil
			}
			d.phase = phaseDone
			d.setState(StateImageReady)
			return EventFullImage, nil

		default:
			return EventError, fmt.Errorf("%w: no input expected in state %s", ErrInvalidState, d.state)
		}
	}
}

// readSignature consumes the stream signature one byte at a time.
func (d *Decoder) readSignature(in *Cursor) (bool, error) {
	for {
		switch codestream.CheckSignature(d.sig[:d.sigLen]) {
		case codestream.SignatureCodestream:
			return true, nil
		case codestream.SignatureContainer:
			d.haveContainer = true
			d.box.phase = boxHeader
			return true, nil
		case codestream.SignatureInvalid:
			return false, fmt.Errorf("check signature: %w", codestream.ErrInvalidSignature)
		}
		if in.Remaining() == 0 {
			return false, nil
		}
		d.sig[d.sigLen] = in.data[0]
		d.sigLen++
		in.advance(1)
	}
}

// accumulate gathers n codestream bytes into d.acc across calls.
func (d *Decoder) accumulate(in *Cursor, n int) (bool, error) {
	if d.acc == nil {
		buf, err := d.alloc(n)
		if err != nil {
			return false, err
		}
		d.acc = buf
		d.accLen = 0
	}
	for d.accLen < n {
		src, err := d.available(in)
		if err != nil {
			return false, err
		}
		if len(src) == 0 {
			return false, nil
		}
		k := copy(d.acc[d.accLen:n], src)
		d.accLen += k
		d.consume(in, k)
	}
	return true, nil
}

func (d *Decoder) parseHeader() error {
	h, err := codestream.ParseHeader(d.acc)
	d.free(&d.acc)
	d.accLen = 0
	if err != nil {
		return fmt.Errorf("parse header: %w", err)
	}

	d.header = h
	d.info = h.BasicInfo(d.keepOrientation, d.haveContainer)
	d.haveInfo = true
	d.grid = h.Grid()
	d.maxRaw = codestream.RawGroupSize(d.grid.Group(0), h.NumChannels(), h.BytesPerSample())
	d.setState(StateBasicInfoReady)

	d.logger.Debug("Header parsed: %dx%d, %d bits, %d channels, %d groups",
		h.Xsize, h.Ysize, h.BitsPerSample, h.NumChannels(), d.grid.NumGroups())
	return nil
}

func (d *Decoder) parseTOC() error {
	n := d.grid.NumGroups()
	d.toc = make([]int, n)

	var total int
	for i := range n {
		size := int(binary.BigEndian.Uint32(d.acc[4*i:]))
		r := d.grid.Group(i)
		raw := codestream.RawGroupSize(r, d.header.NumChannels(), d.header.BytesPerSample())

		switch d.header.Compression {
		case codestream.CompressionNone:
			if size != raw {
				return fmt.Errorf("parse toc: %w: group %d is %d bytes, want %d", codestream.ErrCorruptGroup, i, size, raw)
			}
		default:
			if size == 0 || size > d.header.MaxGroupPayload(r) {
				return fmt.Errorf("parse toc: %w: group %d size %d out of range", codestream.ErrCorruptGroup, i, size)
			}
		}
		d.toc[i] = size
		total += size
	}
	d.free(&d.acc)
	d.accLen = 0

	d.logger.Debug("Table of contents: %d groups, %d bytes", n, total)
	return nil
}

// receiveGroups copies group payloads out of the input and decodes them in
// batches. It reports true once every group has been written.
func (d *Decoder) receiveGroups(in *Cursor) (bool, error) {
	for d.nextGroup < len(d.toc) {
		if d.cur == nil {
			buf, err := d.alloc(d.toc[d.nextGroup])
			if err != nil {
				return false, err
			}
			d.cur = buf
			d.curLen = 0
		}

		src, err := d.available(in)
		if err != nil {
			return false, err
		}
		if len(src) == 0 {
			if err := d.flush(); err != nil {
				return false, err
			}
			return false, nil
		}

		k := copy(d.cur[d.curLen:], src)
		d.curLen += k
		d.consume(in, k)
		if d.curLen < len(d.cur) {
			continue
		}

		d.pending = append(d.pending, pendingGroup{index: d.nextGroup, payload: d.cur})
		d.cur = nil
		d.curLen = 0
		d.nextGroup++

		if len(d.pending) >= d.batchSize() {
			if err := d.flush(); err != nil {
				return false, err
			}
		}
	}

	if err := d.flush(); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Decoder) batchSize() int {
	if wc, ok := d.runner.(workerCounter); ok {
		return max(2*wc.NumWorkers(), 1)
	}
	return defaultBatchSize
}

// flush decodes the pending groups through the runner.
func (d *Decoder) flush() error {
	if len(d.pending) == 0 {
		return nil
	}

	batch := d.pending
	d.logger.Debug("Decoding batch of %d groups", len(batch))

	err := d.runner.Run(len(batch), d.initThreads, func(i, thread int) error {
		return d.decodeGroup(batch[i], thread)
	})

	for i := range batch {
		d.free(&batch[i].payload)
	}
	d.pending = d.pending[:0]

	if err != nil {
		return fmt.Errorf("%w: %w", ErrParallelTask, err)
	}
	d.decoded += len(batch)
	return nil
}

// initThreads prepares per-thread decompression scratch.
func (d *Decoder) initThreads(numThreads int) error {
	if numThreads <= 0 {
		return fmt.Errorf("%w: %d threads", ErrInvalidArgument, numThreads)
	}
	if d.header.Compression != codestream.CompressionZstd {
		return nil
	}

	if d.zstd == nil {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(numThreads),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(uint64(max(2*d.maxRaw, 1<<20))),
		)
		if err != nil {
			return fmt.Errorf("create zstd decoder: %w", err)
		}
		d.zstd = dec
	}

	for len(d.scratch) < numThreads {
		buf, err := d.alloc(d.maxRaw)
		if err != nil {
			return err
		}
		d.scratch = append(d.scratch, buf)
	}
	return nil
}

// decodeGroup expands one group payload into the output buffer.
func (d *Decoder) decodeGroup(g pendingGroup, thread int) error {
	r := d.grid.Group(g.index)
	channels := d.header.NumChannels()
	bps := d.header.BytesPerSample()
	want := codestream.RawGroupSize(r, channels, bps)

	raw := g.payload
	if d.header.Compression == codestream.CompressionZstd {
		if thread < 0 || thread >= len(d.scratch) {
			return fmt.Errorf("%w: thread %d has no scratch", ErrInvalidArgument, thread)
		}
		out, err := d.zstd.DecodeAll(g.payload, d.scratch[thread][:0])
		if err != nil {
			return fmt.Errorf("group %d: %w: %v", g.index, codestream.ErrCorruptGroup, err)
		}
		raw = out
	}
	if len(raw) != want {
		return fmt.Errorf("group %d: %w: %d bytes, want %d", g.index, codestream.ErrCorruptGroup, len(raw), want)
	}

	samples := raw[1:]
	switch codestream.Predictor(raw[0]) {
	case codestream.PredictorNone:
	case codestream.PredictorLeft:
		codestream.Unpredict(samples, r.Width, r.Height, channels, bps)
	default:
		return fmt.Errorf("group %d: %w: predictor %d", g.index, codestream.ErrCorruptGroup, raw[0])
	}

	d.writeGroup(r, samples)
	return nil
}
