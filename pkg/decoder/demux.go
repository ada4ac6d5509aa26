package decoder

import (
	"fmt"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/container"
)

// maxFtypSize bounds the ftyp payload the decoder buffers.
const maxFtypSize = 4096

type boxPhase int

const (
	boxHeader boxPhase = iota
	boxFtyp
	boxSkip
	boxCodestream
	boxTrailing
)

// boxState tracks the container walk.
type boxState struct {
	phase     boxPhase
	hdr       [16]byte
	hdrLen    int
	current   container.Box
	remaining uint64
	seenFtyp  bool
	ftyp      []byte
	ftypLen   int
}

// available returns the codestream bytes at the cursor without consuming
// them. Container boxes before the codestream are consumed on the way.
func (d *Decoder) available(in *Cursor) ([]byte, error) {
	if !d.haveContainer {
		return in.data, nil
	}
	if err := d.demux(in); err != nil {
		return nil, err
	}
	if d.box.phase != boxCodestream {
		return nil, nil
	}
	b := in.data
	if !d.box.current.ToEnd() && uint64(len(b)) > d.box.remaining {
		b = b[:d.box.remaining]
	}
	return b, nil
}

// consume advances the cursor past n codestream bytes.
func (d *Decoder) consume(in *Cursor, n int) {
	in.advance(n)
	if !d.haveContainer || d.box.current.ToEnd() {
		return
	}
	d.box.remaining -= uint64(n)
	if d.box.remaining == 0 {
		d.box.phase = boxTrailing
	}
}

// demux walks boxes until the cursor is inside the codestream box or the
// input runs out.
func (d *Decoder) demux(in *Cursor) error {
	for {
		switch d.box.phase {
		case boxCodestream:
			return nil

		case boxTrailing:
			return fmt.Errorf("%w: codestream box ends before the image", codestream.ErrUnsupportedContainer)

		case boxHeader:
			if !d.readBoxHeader(in) {
				return nil
			}
			if err := d.openBox(); err != nil {
				return err
			}

		case boxFtyp:
			k := copy(d.box.ftyp[d.box.ftypLen:], in.data)
			d.box.ftypLen += k
			in.advance(k)
			if d.box.ftypLen < len(d.box.ftyp) {
				return nil
			}
			err := container.CheckFtyp(d.box.current, d.box.ftyp)
			d.free(&d.box.ftyp)
			if err != nil {
				return fmt.Errorf("read ftyp: %w", err)
			}
			d.box.phase = boxHeader

		case boxSkip:
			if d.box.current.ToEnd() {
				in.advance(len(in.data))
				return nil
			}
			n := min(uint64(len(in.data)), d.box.remaining)
			in.advance(int(n))
			d.box.remaining -= n
			if d.box.remaining > 0 {
				return nil
			}
			d.box.phase = boxHeader
		}
	}
}

// readBoxHeader gathers a complete box header.
func (d *Decoder) readBoxHeader(in *Cursor) bool {
	for {
		need := container.HeaderLen(d.box.hdr[:d.box.hdrLen])
		if need == 0 {
			need = 8
		}
		if d.box.hdrLen >= need {
			return true
		}
		if in.Remaining() == 0 {
			return false
		}
		k := copy(d.box.hdr[d.box.hdrLen:need], in.data)
		d.box.hdrLen += k
		in.advance(k)
	}
}

// openBox dispatches on the box just read.
func (d *Decoder) openBox() error {
	box, err := container.ParseHeader(d.box.hdr[:d.box.hdrLen])
	d.box.hdrLen = 0
	if err != nil {
		return err
	}
	d.box.current = box
	d.box.remaining = box.PayloadSize()
	d.logger.Debug("Box %s: %d bytes", box.Type, box.Size)

	if !d.box.seenFtyp {
		if box.Type != container.TypeFtyp {
			return fmt.Errorf("%w: expected ftyp, found %q", codestream.ErrUnsupportedContainer, box.Type)
		}
		if box.ToEnd() || box.PayloadSize() > maxFtypSize {
			return fmt.Errorf("%w: ftyp of %d bytes", codestream.ErrUnsupportedContainer, box.Size)
		}
		buf, err := d.alloc(int(box.PayloadSize()))
		if err != nil {
			return err
		}
		d.box.seenFtyp = true
		d.box.ftyp = buf
		d.box.ftypLen = 0
		d.box.phase = boxFtyp
		return nil
	}

	switch box.Type {
	case container.TypeCodestream:
		d.box.phase = boxCodestream
		if !box.ToEnd() && d.box.remaining == 0 {
			d.box.phase = boxTrailing
		}
	case container.TypePartial:
		return fmt.Errorf("%w: partial codestream boxes", codestream.ErrUnsupportedContainer)
	default:
		d.box.phase = boxSkip
	}
	return nil
}
