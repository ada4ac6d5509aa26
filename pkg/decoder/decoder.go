// Package decoder implements the incremental JXS decoder.
//
// A Decoder consumes a byte stream delivered in arbitrary chunks through a
// Cursor and reports events as it reaches them:
//
//	dec := decoder.New()
//	defer dec.Close()
//	dec.SubscribeEvents(decoder.EventBasicInfo | decoder.EventFullImage)
//	for {
//		ev, err := dec.ProcessInput(cursor)
//		switch ev {
//		case decoder.EventNeedMoreInput:
//			cursor.Refill(nextChunk())
//		case decoder.EventNeedOutputBuffer:
//			size, _ := dec.OutputBufferSize(format)
//			dec.SetOutputBuffer(format, make([]byte, size))
//		...
//		}
//	}
//
// Partial state is copied into decoder-owned memory, so delivering the
// stream one byte at a time produces the same events and pixels as
// delivering it whole. A Decoder is not safe for concurrent use; group
// decoding fans out through the bound ports.ParallelRunner.
package decoder

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/user/jxlstream/pkg/adapters/inlinerunner"
	"github.com/user/jxlstream/pkg/adapters/logger"
	"github.com/user/jxlstream/pkg/adapters/memory"
	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/ports"
)

// Library version reported by Version.
const (
	VersionMajor = 0
	VersionMinor = 3
	VersionPatch = 0
)

// Version returns the library version as major*1000000 + minor*1000 + patch.
func Version() uint32 {
	return VersionMajor*1000000 + VersionMinor*1000 + VersionPatch
}

// phase is the position of the parser within the stream.
type phase int

const (
	phaseSignature phase = iota
	// phaseCodestreamSignature reads the signature at the start of the
	// jxlc payload.
	phaseCodestreamSignature
	phaseHeader
	phaseBasicInfoEvent
	phaseColorEvent
	phaseTOC
	phaseGroups
	phaseDone
)

// pendingGroup is a fully received group waiting to be decoded.
type pendingGroup struct {
	index   int
	payload []byte
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMemoryManager routes every decoder-internal allocation through m.
func WithMemoryManager(m ports.MemoryManager) Option {
	return func(d *Decoder) {
		if m != nil {
			d.mm = m
		}
	}
}

// WithLogger sets the logger. The decoder logs at debug level only.
func WithLogger(l ports.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithKeepOrientation leaves pixels in stored order instead of applying the
// header orientation. Basic info then reports the stored dimensions.
func WithKeepOrientation(keep bool) Option {
	return func(d *Decoder) {
		d.keepOrientation = keep
	}
}

// Decoder is a single decode session over one stream.
type Decoder struct {
	mm              ports.MemoryManager
	logger          ports.Logger
	keepOrientation bool

	runner     ports.ParallelRunner
	subscribed Event
	started    bool
	closed     bool

	state State
	phase phase
	err   error

	sig           [12]byte
	sigLen        int
	haveContainer bool
	box           boxState

	acc    []byte
	accLen int

	header   codestream.Header
	info     codestream.BasicInfo
	haveInfo bool
	grid     codestream.Grid
	toc      []int
	maxRaw   int

	sized        bool
	sizingFormat codestream.PixelFormat
	format       codestream.PixelFormat
	out          []byte
	stride       int
	conv         converter

	nextGroup int
	cur       []byte
	curLen    int
	pending   []pendingGroup
	decoded   int
	scratch   [][]byte
	zstd      *zstd.Decoder
}

// New creates a Decoder in StateCreated.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		mm:     memory.NewHeap(0),
		logger: logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithComponent("decoder")
	d.runner = inlinerunner.New()
	return d
}

// State returns the current lifecycle state.
func (d *Decoder) State() State {
	return d.state
}

// SubscribeEvents adds mask to the events ProcessInput stops at. Repeated
// calls before the first ProcessInput merge their masks.
func (d *Decoder) SubscribeEvents(mask Event) error {
	if d.closed || d.started {
		return fmt.Errorf("%w: subscribe after processing started", ErrInvalidState)
	}
	if mask&^subscribable != 0 {
		return fmt.Errorf("%w: event mask %#x", ErrInvalidArgument, int(mask))
	}
	d.subscribed |= mask
	return nil
}

// SetParallelRunner binds the runner used for group decoding. It must be
// called before the first ProcessInput. A nil runner decodes sequentially.
func (d *Decoder) SetParallelRunner(r ports.ParallelRunner) error {
	if d.closed || d.started {
		return fmt.Errorf("%w: runner bound after processing started", ErrInvalidState)
	}
	if r == nil {
		r = inlinerunner.New()
	}
	d.runner = r
	return nil
}

// GetBasicInfo returns the image metadata once the header has been parsed.
func (d *Decoder) GetBasicInfo() (codestream.BasicInfo, error) {
	if d.closed || !d.haveInfo {
		return codestream.BasicInfo{}, fmt.Errorf("%w: basic info not available", ErrInvalidState)
	}
	return d.info, nil
}

// GetColorEncoding returns the color encoding once the header has been parsed.
func (d *Decoder) GetColorEncoding() (codestream.ColorEncoding, error) {
	if d.closed || !d.haveInfo {
		return codestream.ColorEncoding{}, fmt.Errorf("%w: color encoding not available", ErrInvalidState)
	}
	return d.header.ColorEncoding(), nil
}

// Grid returns the group layout once the header has been parsed.
func (d *Decoder) Grid() (codestream.Grid, error) {
	if d.closed || !d.haveInfo {
		return codestream.Grid{}, fmt.Errorf("%w: grid not available", ErrInvalidState)
	}
	return d.grid, nil
}

// Progress returns how many groups have been written and the group count.
func (d *Decoder) Progress() (decoded, total int) {
	return d.decoded, len(d.toc)
}

// SizeHintBasicInfo returns an estimate of the input bytes still needed
// before basic info can be produced, or 0 once it is known.
func (d *Decoder) SizeHintBasicInfo() int {
	const containerOverhead = 20 + 8

	if d.haveInfo {
		return 0
	}
	switch d.phase {
	case phaseSignature:
		if d.sigLen > 0 && d.sig[0] == codestream.ContainerSignature[0] {
			return len(codestream.ContainerSignature) - d.sigLen + containerOverhead +
				len(codestream.CodestreamSignature) + codestream.HeaderSize
		}
		return max(len(codestream.CodestreamSignature)+codestream.HeaderSize-d.sigLen, 1)
	case phaseCodestreamSignature:
		need := len(codestream.CodestreamSignature) - d.accLen + codestream.HeaderSize
		if d.box.phase != boxCodestream {
			need += containerOverhead
		}
		return need
	case phaseHeader:
		return max(codestream.HeaderSize-d.accLen, 1)
	}
	return 0
}

// Reset returns the decoder to StateCreated for a new stream. The memory
// manager, logger and orientation option are kept; the runner and event
// subscriptions are cleared.
func (d *Decoder) Reset() {
	if d.closed {
		return
	}
	d.releaseSession()
	*d = Decoder{
		mm:              d.mm,
		logger:          d.logger,
		keepOrientation: d.keepOrientation,
		runner:          inlinerunner.New(),
	}
}

// Close releases every decoder-owned buffer. Caller-owned output buffers
// are left untouched. Close is safe to call more than once.
func (d *Decoder) Close() {
	if d.closed {
		return
	}
	d.releaseSession()
	d.out = nil
	d.closed = true
}

func (d *Decoder) setState(s State) {
	if d.state == s {
		return
	}
	d.logger.Debug("State %s -> %s", d.state, s)
	d.state = s
}

// fail moves the decoder to StateError.
func (d *Decoder) fail(err error) {
	d.err = err
	d.setState(StateError)
	d.releaseSession()
	d.out = nil
}

// finish moves the decoder to StateFinished.
func (d *Decoder) finish() {
	d.setState(StateFinished)
	d.phase = phaseDone
	d.releaseSession()
	d.out = nil
}

func (d *Decoder) alloc(n int) ([]byte, error) {
	buf, err := d.mm.Alloc(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %w", ErrOutOfMemory, n, err)
	}
	if len(buf) < n {
		d.mm.Free(buf)
		return nil, fmt.Errorf("%w: allocator returned %d of %d bytes", ErrOutOfMemory, len(buf), n)
	}
	return buf[:n], nil
}

func (d *Decoder) free(buf *[]byte) {
	if *buf != nil {
		d.mm.Free(*buf)
		*buf = nil
	}
}

// releaseSession frees every buffer obtained from the memory manager.
func (d *Decoder) releaseSession() {
	d.free(&d.acc)
	d.accLen = 0
	d.free(&d.box.ftyp)
	d.free(&d.cur)
	d.curLen = 0
	for i := range d.pending {
		d.free(&d.pending[i].payload)
	}
	d.pending = nil
	for i := range d.scratch {
		d.free(&d.scratch[i])
	}
	d.scratch = nil
	if d.zstd != nil {
		d.zstd.Close()
		d.zstd = nil
	}
}
