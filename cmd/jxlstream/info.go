package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ideamans/go-l10n"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/container"
	"github.com/user/jxlstream/pkg/decoder"
)

// Run executes the info command.
func (cmd *InfoCmd) Run() error {
	data, err := os.ReadFile(cmd.Input)
	if err != nil {
		return err
	}

	sig := codestream.CheckSignature(data)
	fmt.Println(l10n.F("Signature: %s", sig))
	if !sig.Valid() {
		return fmt.Errorf("%s: %w", cmd.Input, codestream.ErrInvalidSignature)
	}

	if sig == codestream.SignatureContainer {
		boxes, err := container.List(data)
		if err != nil {
			return err
		}
		fmt.Println(l10n.F("Boxes: %d", len(boxes)))
		for _, b := range boxes {
			size := fmt.Sprint(b.Size)
			if b.ToEnd() {
				size = l10n.T("to end")
			}
			fmt.Printf("  %-4s  @%-8d %s\n", b.Type, b.Offset, size)
		}
	}

	info, enc, err := inspect(data)
	if err != nil {
		return err
	}
	fmt.Println(l10n.F("Dimensions: %dx%d", info.Xsize, info.Ysize))
	fmt.Println(l10n.F("Bits per sample: %d (exponent %d)", info.BitsPerSample, info.ExponentBitsPerSample))
	fmt.Println(l10n.F("Channels: %d color, %d extra", info.NumColorChannels, info.NumExtraChannels))
	fmt.Println(l10n.F("Orientation: %d", info.Orientation))
	fmt.Println(l10n.F("Color space: %s, transfer %s", enc.ColorSpace, enc.TransferFunction))
	return nil
}

// inspect decodes the header of a complete stream.
func inspect(data []byte) (codestream.BasicInfo, codestream.ColorEncoding, error) {
	dec := decoder.New(decoder.WithKeepOrientation(true))
	defer dec.Close()

	var (
		info codestream.BasicInfo
		enc  codestream.ColorEncoding
	)
	if err := dec.SubscribeEvents(decoder.EventBasicInfo | decoder.EventColorEncoding); err != nil {
		return info, enc, err
	}

	cursor := decoder.NewCursor(data)
	for {
		ev, err := dec.ProcessInput(cursor)
		if err != nil {
			return info, enc, err
		}
		switch ev {
		case decoder.EventBasicInfo:
			if info, err = dec.GetBasicInfo(); err != nil {
				return info, enc, err
			}
		case decoder.EventColorEncoding:
			enc, err = dec.GetColorEncoding()
			return info, enc, err
		case decoder.EventNeedMoreInput, decoder.EventSuccess, decoder.EventFinished:
			return info, enc, io.ErrUnexpectedEOF
		}
	}
}

// decoderVersion formats decoder.Version as major.minor.patch.
func decoderVersion() string {
	v := decoder.Version()
	return fmt.Sprintf("%d.%d.%d", v/1000000, v/1000%1000, v%1000)
}
