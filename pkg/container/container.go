// Package container reads and writes the ISOBMFF container that may wrap a
// JXS codestream. Box headers and the ftyp box are handled by mp4ff.
package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/jxlstream/pkg/codestream"
)

// Box types understood by the decoder.
const (
	TypeSignature  = "JXL "
	TypeFtyp       = "ftyp"
	TypeCodestream = "jxlc"
	TypePartial    = "jxlp"
)

// MajorBrand is the ftyp major brand of a JXS container.
const MajorBrand = "jxl "

const (
	smallHeaderLen = 8
	largeHeaderLen = 16
)

// Box describes one top-level box.
type Box struct {
	Type       string `json:"type"`
	Offset     int64  `json:"offset"`
	HeaderSize int    `json:"header_size"`
	// Size is the total box size including the header. It is 0 for a box
	// that extends to the end of the stream.
	Size uint64 `json:"size"`
}

// ToEnd reports whether the box extends to the end of the stream.
func (b Box) ToEnd() bool {
	return b.Size == 0
}

// PayloadSize returns the payload size, or 0 for a box that extends to the end.
func (b Box) PayloadSize() uint64 {
	if b.ToEnd() {
		return 0
	}
	return b.Size - uint64(b.HeaderSize)
}

// HeaderLen returns how many bytes the box header starting at prefix
// occupies, or 0 when prefix is too short to tell.
func HeaderLen(prefix []byte) int {
	if len(prefix) < smallHeaderLen {
		return 0
	}
	if binary.BigEndian.Uint32(prefix[0:4]) == 1 {
		return largeHeaderLen
	}
	return smallHeaderLen
}

// ParseHeader decodes a complete box header.
func ParseHeader(b []byte) (Box, error) {
	n := HeaderLen(b)
	if n == 0 || len(b) < n {
		return Box{}, fmt.Errorf("%w: short box header", codestream.ErrUnsupportedContainer)
	}

	// mp4ff rejects size 0, which only the codestream box may use.
	if binary.BigEndian.Uint32(b[0:4]) == 0 {
		return Box{Type: string(b[4:8]), HeaderSize: smallHeaderLen}, nil
	}

	hdr, err := mp4.DecodeHeader(bytes.NewReader(b[:n]))
	if err != nil {
		return Box{}, fmt.Errorf("%w: %v", codestream.ErrUnsupportedContainer, err)
	}
	if hdr.Size < uint64(hdr.Hdrlen) {
		return Box{}, fmt.Errorf("%w: box %q size %d smaller than header", codestream.ErrUnsupportedContainer, hdr.Name, hdr.Size)
	}

	return Box{
		Type:       hdr.Name,
		HeaderSize: hdr.Hdrlen,
		Size:       hdr.Size,
	}, nil
}

// CheckFtyp validates the payload of an ftyp box.
func CheckFtyp(box Box, payload []byte) error {
	hdr := mp4.BoxHeader{Name: TypeFtyp, Size: box.Size, Hdrlen: box.HeaderSize}
	decoded, err := mp4.DecodeFtyp(hdr, 0, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: ftyp: %v", codestream.ErrUnsupportedContainer, err)
	}
	ftyp, ok := decoded.(*mp4.FtypBox)
	if !ok {
		return fmt.Errorf("%w: ftyp box", codestream.ErrUnsupportedContainer)
	}
	if ftyp.MajorBrand() != MajorBrand {
		return fmt.Errorf("%w: major brand %q", codestream.ErrUnsupportedContainer, ftyp.MajorBrand())
	}
	return nil
}

// Write wraps a codestream in a container: signature box, ftyp, then a
// jxlc box holding the codestream.
func Write(w io.Writer, cs []byte) error {
	if _, err := w.Write(codestream.ContainerSignature); err != nil {
		return fmt.Errorf("write signature box: %w", err)
	}

	ftyp := mp4.NewFtyp(MajorBrand, 0, []string{MajorBrand})
	if err := ftyp.Encode(w); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}

	var hdr []byte
	size := uint64(len(cs)) + smallHeaderLen
	if size > 0xFFFFFFFF {
		hdr = binary.BigEndian.AppendUint32(hdr, 1)
		hdr = append(hdr, TypeCodestream...)
		hdr = binary.BigEndian.AppendUint64(hdr, uint64(len(cs))+largeHeaderLen)
	} else {
		hdr = binary.BigEndian.AppendUint32(hdr, uint32(size))
		hdr = append(hdr, TypeCodestream...)
	}
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("write jxlc header: %w", err)
	}
	if _, err := w.Write(cs); err != nil {
		return fmt.Errorf("write codestream: %w", err)
	}
	return nil
}

// List walks the top-level boxes of a complete container.
func List(data []byte) ([]Box, error) {
	if codestream.CheckSignature(data) != codestream.SignatureContainer {
		return nil, codestream.ErrInvalidSignature
	}

	var boxes []Box
	var offset int64
	for offset < int64(len(data)) {
		box, err := ParseHeader(data[offset:])
		if err != nil {
			return boxes, fmt.Errorf("box at %d: %w", offset, err)
		}
		box.Offset = offset
		boxes = append(boxes, box)

		if box.ToEnd() {
			break
		}
		if box.Size > uint64(int64(len(data))-offset) {
			return boxes, fmt.Errorf("%w: box %q at %d overruns stream", codestream.ErrUnsupportedContainer, box.Type, offset)
		}
		offset += int64(box.Size)
	}
	return boxes, nil
}

// Extract returns the codestream stored in the first jxlc box of data.
// Bare codestreams are returned unchanged.
func Extract(data []byte) ([]byte, error) {
	switch codestream.CheckSignature(data) {
	case codestream.SignatureCodestream:
		return data, nil
	case codestream.SignatureContainer:
	default:
		return nil, codestream.ErrInvalidSignature
	}

	boxes, err := List(data)
	if err != nil {
		return nil, err
	}
	for _, box := range boxes {
		switch box.Type {
		case TypeCodestream:
			start := box.Offset + int64(box.HeaderSize)
			if box.ToEnd() {
				return data[start:], nil
			}
			return data[start : box.Offset+int64(box.Size)], nil
		case TypePartial:
			return nil, fmt.Errorf("%w: partial codestream boxes", codestream.ErrUnsupportedContainer)
		}
	}
	return nil, fmt.Errorf("%w: no codestream box", codestream.ErrUnsupportedContainer)
}
