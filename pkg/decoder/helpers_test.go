package decoder

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/user/jxlstream/pkg/codestream"
	"github.com/user/jxlstream/pkg/encoder"
)

const allEvents = EventBasicInfo | EventColorEncoding | EventFullImage

// patternFrame builds a deterministic w×h frame.
func patternFrame(w, h, bits, colors int, alpha bool) encoder.Frame {
	f := encoder.Frame{Width: w, Height: h, BitsPerSample: bits, ColorChannels: colors, Alpha: alpha}
	bps := bits / 8
	ch := f.NumChannels()
	f.Samples = make([]byte, w*h*f.PixelBytes())
	for y := range h {
		for x := range w {
			for c := range ch {
				v := uint32(x*31 + y*17 + c*59)
				off := ((y*w+x)*ch + c) * bps
				switch bps {
				case 1:
					f.Samples[off] = byte(v)
				case 2:
					binary.BigEndian.PutUint16(f.Samples[off:], uint16(v*263))
				default:
					binary.BigEndian.PutUint32(f.Samples[off:], math.Float32bits(float32(v%256)/255))
				}
			}
		}
	}
	return f
}

func encode(t *testing.T, f encoder.Frame, mutate func(*encoder.Options)) []byte {
	t.Helper()
	opts := encoder.DefaultOptions()
	opts.GroupDim = 64
	if mutate != nil {
		mutate(&opts)
	}
	data, err := encoder.EncodeBytes(f, opts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

// decodeResult is the outcome of driving a decoder over a whole stream.
type decodeResult struct {
	events []Event
	pixels []byte
	info   codestream.BasicInfo
}

// decodeChunked feeds data in chunks of the given size, binding an output
// buffer in format (or the default format when nil) when asked.
func decodeChunked(t *testing.T, data []byte, chunk int, format *codestream.PixelFormat, opts ...Option) decodeResult {
	t.Helper()

	dec := New(opts...)
	defer dec.Close()
	if err := dec.SubscribeEvents(allEvents); err != nil {
		t.Fatalf("SubscribeEvents: %v", err)
	}

	var res decodeResult
	cursor := NewCursor(nil)
	pos := 0
	for range 4*len(data) + 64 {
		ev, err := dec.ProcessInput(cursor)
		if err != nil {
			t.Fatalf("ProcessInput at byte %d: %v", pos, err)
		}

		switch ev {
		case EventNeedMoreInput:
			if cursor.Remaining() != 0 {
				t.Fatalf("need more input with %d bytes unconsumed", cursor.Remaining())
			}
			if pos >= len(data) {
				t.Fatalf("decoder wants input past end of stream (%d bytes)", len(data))
			}
			end := min(pos+chunk, len(data))
			cursor.Refill(data[pos:end])
			pos = end
			continue

		case EventBasicInfo:
			info, err := dec.GetBasicInfo()
			if err != nil {
				t.Fatalf("GetBasicInfo: %v", err)
			}
			res.info = info

		case EventNeedOutputBuffer:
			f := format
			if f == nil {
				def, err := dec.DefaultPixelFormat()
				if err != nil {
					t.Fatalf("DefaultPixelFormat: %v", err)
				}
				f = &def
			}
			size, err := dec.OutputBufferSize(*f)
			if err != nil {
				t.Fatalf("OutputBufferSize: %v", err)
			}
			res.pixels = make([]byte, size)
			if err := dec.SetOutputBuffer(*f, res.pixels); err != nil {
				t.Fatalf("SetOutputBuffer: %v", err)
			}
		}

		res.events = append(res.events, ev)
		if ev == EventSuccess {
			return res
		}
	}
	t.Fatal("decoder did not finish")
	return res
}

func equalEvents(a, b []Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
