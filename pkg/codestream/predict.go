package codestream

import "encoding/binary"

// Predictor identifies the sample predictor applied inside a group payload.
type Predictor uint8

const (
	PredictorNone Predictor = iota
	// PredictorLeft stores each sample as the wrapping difference to the
	// same channel of the pixel on its left within the group row.
	PredictorLeft
)

// String returns the string representation of the predictor.
func (p Predictor) String() string {
	switch p {
	case PredictorNone:
		return "none"
	case PredictorLeft:
		return "left"
	default:
		return "unknown"
	}
}

// ParsePredictor parses a predictor name, defaulting to PredictorNone.
func ParsePredictor(s string) Predictor {
	if s == "left" {
		return PredictorLeft
	}
	return PredictorNone
}

// RawGroupSize returns the decompressed payload size of group r: one
// predictor byte followed by the samples.
func RawGroupSize(r Rect, channels, bytesPerSample int) int {
	return 1 + r.Width*r.Height*channels*bytesPerSample
}

// Predict replaces samples with their left residuals in place.
// samples holds width×height pixels of channels interleaved samples.
func Predict(samples []byte, width, height, channels, bytesPerSample int) {
	row := width * channels * bytesPerSample
	px := channels * bytesPerSample
	for y := range height {
		line := samples[y*row : (y+1)*row]
		// Right to left so every residual is taken against an original sample.
		for off := row - bytesPerSample; off >= px; off -= bytesPerSample {
			putSample(line, off, bytesPerSample, sample(line, off, bytesPerSample)-sample(line, off-px, bytesPerSample))
		}
	}
}

// Unpredict reverses Predict in place.
func Unpredict(samples []byte, width, height, channels, bytesPerSample int) {
	row := width * channels * bytesPerSample
	px := channels * bytesPerSample
	for y := range height {
		line := samples[y*row : (y+1)*row]
		for off := px; off < row; off += bytesPerSample {
			putSample(line, off, bytesPerSample, sample(line, off, bytesPerSample)+sample(line, off-px, bytesPerSample))
		}
	}
}

func sample(b []byte, off, size int) uint32 {
	switch size {
	case 1:
		return uint32(b[off])
	case 2:
		return uint32(binary.BigEndian.Uint16(b[off:]))
	default:
		return binary.BigEndian.Uint32(b[off:])
	}
}

func putSample(b []byte, off, size int, v uint32) {
	switch size {
	case 1:
		b[off] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(b[off:], uint16(v))
	default:
		binary.BigEndian.PutUint32(b[off:], v)
	}
}
