package convert

import "errors"

// Failure categories. Convert wraps one of these so callers can classify a
// failed file with errors.Is.
var (
	ErrInputNotFound     = errors.New("input file not found")
	ErrUnsupportedOutput = errors.New("unsupported output format")
	ErrDecode            = errors.New("decode failed")
	ErrEncode            = errors.New("encode failed")
	ErrWrite             = errors.New("write failed")
)
