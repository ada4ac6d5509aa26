// Package codestream defines the JXS codestream layout shared by the decoder
// and the encoder: signatures, the image header, the group grid, pixel
// formats and the per-group sample predictor.
//
// A codestream is laid out as
//
//	signature  0xFF 0x0A
//	header     17 bytes, see Header
//	toc        one big-endian u32 payload size per group
//	groups     concatenated group payloads
//
// and may be wrapped in an ISOBMFF container (see package container).
package codestream
