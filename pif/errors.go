package pif

import "errors"

// Container errors. Decode and Inspect return them wrapped in a
// *FormatError.
var (
	ErrInvalidSignature  = errors.New("pif: invalid signature")
	ErrMissingChunk      = errors.New("pif: missing required chunk")
	ErrTruncatedChunk    = errors.New("pif: truncated chunk")
	ErrInvalidHeader     = errors.New("pif: invalid IHDR chunk")
	ErrInvalidPayload    = errors.New("pif: invalid IDAT payload")
	ErrImageTooLarge     = errors.New("pif: image dimensions too large")
	ErrUnknownColorModel = errors.New("pif: unknown color model")
)

// Encoder errors
var (
	ErrInvalidImage   = errors.New("pif: invalid image")
	ErrInvalidProfile = errors.New("pif: invalid profile")
	ErrInvalidLevel   = errors.New("pif: invalid compression level")
)

// FormatError reports a malformed PIF file. Op names the stage that
// failed, such as "read IHDR" or "decode channel Y".
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
