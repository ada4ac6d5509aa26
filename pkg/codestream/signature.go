package codestream

import "bytes"

// Signature classifies the leading bytes of a stream.
type Signature int

const (
	// SignatureNotEnoughBytes means the prefix is too short to decide.
	SignatureNotEnoughBytes Signature = iota
	// SignatureInvalid means the bytes cannot start a JXS stream.
	SignatureInvalid
	// SignatureCodestream is a bare codestream.
	SignatureCodestream
	// SignatureContainer is a codestream wrapped in an ISOBMFF container.
	SignatureContainer
)

var (
	// CodestreamSignature starts every codestream.
	CodestreamSignature = []byte{0xFF, 0x0A}
	// ContainerSignature is the complete JXL signature box.
	ContainerSignature = []byte{0x00, 0x00, 0x00, 0x0C, 'J', 'X', 'L', ' ', 0x0D, 0x0A, 0x87, 0x0A}
)

// String returns the string representation of the signature.
func (s Signature) String() string {
	switch s {
	case SignatureNotEnoughBytes:
		return "not-enough-bytes"
	case SignatureInvalid:
		return "invalid"
	case SignatureCodestream:
		return "codestream"
	case SignatureContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Valid reports whether the signature identifies a decodable stream.
func (s Signature) Valid() bool {
	return s == SignatureCodestream || s == SignatureContainer
}

// CheckSignature inspects the fixed prefix of b. It never looks past the
// signature and returns SignatureNotEnoughBytes rather than guessing when b
// is a proper prefix of a valid signature.
func CheckSignature(b []byte) Signature {
	if len(b) == 0 {
		return SignatureNotEnoughBytes
	}

	switch b[0] {
	case CodestreamSignature[0]:
		if len(b) < len(CodestreamSignature) {
			return SignatureNotEnoughBytes
		}
		if b[1] != CodestreamSignature[1] {
			return SignatureInvalid
		}
		return SignatureCodestream

	case ContainerSignature[0]:
		n := min(len(b), len(ContainerSignature))
		if !bytes.Equal(b[:n], ContainerSignature[:n]) {
			return SignatureInvalid
		}
		if n < len(ContainerSignature) {
			return SignatureNotEnoughBytes
		}
		return SignatureContainer
	}

	return SignatureInvalid
}
