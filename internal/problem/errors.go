package problem

import (
	"errors"
	"fmt"
)

// Input error codes. Every InputError carries one of these.
const (
	ErrCodeFilenameTooLong = "E201" // Pattern file name exceeds MaxFilenameSize
	ErrCodeOpenFailed      = "E202" // Neither <name>.rle nor <name> could be opened
	ErrCodeFileTooLarge    = "E203" // Pattern file has MaxFileSize bytes or more
	ErrCodeIllegalPattern  = "E204" // LifeHistory body could not be parsed
	ErrCodePatternTooLarge = "E205" // Pattern does not fit MaxPatternSize square
	ErrCodeNoActivePart    = "E206" // Pattern equals its own generation-2 successor
	ErrCodeIllegalObject   = "E207" // Object digit string has an unknown digit
)

// InputError reports a pattern file or argument that cannot be searched.
type InputError struct {
	// Code is one of the ErrCode constants.
	Code string

	// Message is the human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsInputError returns true if err wraps an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// HasCode returns true if err wraps an InputError with the given code.
func HasCode(err error, code string) bool {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}
