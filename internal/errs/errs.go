// Package errs collects the typed error taxonomy shared by every ioisis
// codec package.
package errs

import "fmt"

// FormatError reports a structural invariant violated in the input, such
// as a bad directory, a mismatched base address, or an unexpected byte
// where a terminator was required.
type FormatError struct {
	Context string
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ioisis: format error in %s: %s", e.Context, e.Reason)
}

// NewFormatError builds a FormatError.
func NewFormatError(context, reason string, args ...interface{}) *FormatError {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &FormatError{Context: context, Reason: reason}
}

// LineSplitError reports that the ISO line-split wrapper saw a wrong or
// missing newline sequence at the expected position.
type LineSplitError struct {
	Offset   int64
	Expected []byte
	Got      []byte
}

func (e *LineSplitError) Error() string {
	return fmt.Sprintf("ioisis: line split error at offset %d: expected newline %q, got %q",
		e.Offset, e.Expected, e.Got)
}

// InvalidBlockPadding reports that MST ibp="check" saw non-filler bytes
// in a block pad.
type InvalidBlockPadding struct {
	Offset int64
	Got    byte
}

func (e *InvalidBlockPadding) Error() string {
	return fmt.Sprintf("ioisis: invalid block padding at offset %d: got byte 0x%02x", e.Offset, e.Got)
}

// PendingReorganization reports that an MST record has a non-zero
// backward pointer, meaning the file has a pending reorganization that
// this codec does not support.
type PendingReorganization struct {
	MFN       int
	OldBlock  int32
	OldOffset uint16
}

func (e *PendingReorganization) Error() string {
	return fmt.Sprintf("ioisis: record mfn=%d has a pending reorganization (old_block=%d, old_offset=%d)",
		e.MFN, e.OldBlock, e.OldOffset)
}

// UnexpectedEOF reports that the stream ended in the middle of a record.
type UnexpectedEOF struct {
	Context string
}

func (e *UnexpectedEOF) Error() string {
	return fmt.Sprintf("ioisis: unexpected EOF while reading %s", e.Context)
}

// InvalidSubfields reports that unparsing subfields with check=true did
// not reparse to the input pair list.
type InvalidSubfields struct {
	Reason string
}

func (e *InvalidSubfields) Error() string {
	return fmt.Sprintf("ioisis: invalid subfields: %s", e.Reason)
}

// SubfieldRoundTripMismatch reports that check=true's reparse produced a
// different pair list than the input.
type SubfieldRoundTripMismatch struct {
	Field string
}

func (e *SubfieldRoundTripMismatch) Error() string {
	return fmt.Sprintf("ioisis: subfield round trip mismatch unparsing %q", e.Field)
}

// InvalidSubfieldKey reports that a supplied key is shorter than the
// configured key length.
type InvalidSubfieldKey struct {
	Key    string
	Length int
}

func (e *InvalidSubfieldKey) Error() string {
	return fmt.Sprintf("ioisis: invalid subfield key %q: shorter than configured length %d", e.Key, e.Length)
}

// AmbiguousTagTemplate reports that a template specifier occurs more than
// once with disagreeing captured values.
type AmbiguousTagTemplate struct {
	Template string
	Spec     byte
}

func (e *AmbiguousTagTemplate) Error() string {
	return fmt.Sprintf("ioisis: ambiguous tag template %q: repeated %%%c specifier disagrees on captured value", e.Template, e.Spec)
}

// InvalidTagTemplate reports that a template string could not be
// compiled at all.
type InvalidTagTemplate struct {
	Template string
	Reason   string
}

func (e *InvalidTagTemplate) Error() string {
	return fmt.Sprintf("ioisis: invalid tag template %q: %s", e.Template, e.Reason)
}

// EncodingError reports that bytes could not be decoded under the
// requested encoding (and the hybrid fallback, if any, also failed).
type EncodingError struct {
	Encoding string
	Reason   string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("ioisis: encoding error decoding as %s: %s", e.Encoding, e.Reason)
}

// ConfigurationError reports an impossible combination of options, e.g. a
// control length that isn't a multiple of the modulus.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ioisis: configuration error: %s", e.Reason)
}

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
