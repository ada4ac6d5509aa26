package decoder

import "errors"

var (
	ErrInvalidState      = errors.New("jxlstream: invalid decoder state")
	ErrInvalidArgument   = errors.New("jxlstream: invalid argument")
	ErrBufferTooSmall    = errors.New("jxlstream: output buffer too small")
	ErrFormatMismatch    = errors.New("jxlstream: pixel format differs from sizing format")
	ErrUnsupportedFormat = errors.New("jxlstream: unsupported pixel format")
	ErrParallelTask      = errors.New("jxlstream: parallel task failed")
	ErrOutOfMemory       = errors.New("jxlstream: out of memory")
)
