package codestream

import "errors"

var (
	ErrInvalidSignature     = errors.New("jxlstream: invalid signature")
	ErrInvalidHeader        = errors.New("jxlstream: invalid header")
	ErrImageTooLarge        = errors.New("jxlstream: image dimensions exceed limit")
	ErrInvalidFormat        = errors.New("jxlstream: invalid pixel format")
	ErrCorruptGroup         = errors.New("jxlstream: corrupt group")
	ErrUnsupportedContainer = errors.New("jxlstream: unsupported container")
)
