package errors

// DescriptorError provides specialized error handling for image descriptor
// framing: signature verification, header field validation, and ordinal
// stream decoding (spec.md §4.3, §4.4, §6).
type DescriptorError struct {
	*baseError

	// field names the header field involved (e.g. "signature", "head_skip",
	// "tail_bytes"), empty when the error is about the ordinal stream
	// instead of the header.
	field string

	// value is the offending value, stored as a string for uniform
	// formatting regardless of the field's underlying type.
	value string
}

// NewDescriptorError creates a new descriptor-specific error.
func NewDescriptorError(err error, code ErrorCode, msg string) *DescriptorError {
	return &DescriptorError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the DescriptorError type.
func (de *DescriptorError) WithMessage(msg string) *DescriptorError {
	de.baseError.WithMessage(msg)
	return de
}

// WithDetail adds contextual information while maintaining the DescriptorError type.
func (de *DescriptorError) WithDetail(key string, value any) *DescriptorError {
	de.baseError.WithDetail(key, value)
	return de
}

// WithField records which header field was involved in the error.
func (de *DescriptorError) WithField(field string) *DescriptorError {
	de.field = field
	return de
}

// WithValue records the offending value.
func (de *DescriptorError) WithValue(value string) *DescriptorError {
	de.value = value
	return de
}

// Field returns the header field involved in the error.
func (de *DescriptorError) Field() string {
	return de.field
}

// Value returns the offending value.
func (de *DescriptorError) Value() string {
	return de.value
}

// NewBadSignatureError builds the corruption error for a descriptor whose
// first 4 bytes are not 'IPIL'.
func NewBadSignatureError(got [4]byte) *DescriptorError {
	return NewDescriptorError(nil, ErrorCodeDescriptorBadSignature, "descriptor signature is not 'IPIL'").
		WithField("signature").
		WithValue(string(got[:])).
		WithDetail("expected", "IPIL")
}

// NewInvalidHeadSkipError builds the corruption error for head_skip >= B.
func NewInvalidHeadSkipError(headSkip, blockSize uint32) *DescriptorError {
	return NewDescriptorError(nil, ErrorCodeDescriptorInvalidHeadSkip, "head_skip is not less than block size").
		WithField("head_skip").
		WithDetail("headSkip", headSkip).
		WithDetail("blockSize", blockSize)
}

// NewInvalidTailBytesError builds the corruption error for tail_bytes
// outside (0, B].
func NewInvalidTailBytesError(tailBytes, blockSize uint32) *DescriptorError {
	return NewDescriptorError(nil, ErrorCodeDescriptorInvalidTailBytes, "tail_bytes is outside (0, block size]").
		WithField("tail_bytes").
		WithDetail("tailBytes", tailBytes).
		WithDetail("blockSize", blockSize)
}

// NewInconsistentTrimError builds the corruption error for a single-ordinal
// descriptor where head_skip and tail_bytes, each individually within range,
// leave the trimmed region inverted (tail_bytes < head_skip).
func NewInconsistentTrimError(headSkip, tailBytes uint32) *DescriptorError {
	return NewDescriptorError(nil, ErrorCodeDescriptorInconsistentTrim, "tail_bytes is less than head_skip on a single-block descriptor").
		WithField("tail_bytes").
		WithDetail("headSkip", headSkip).
		WithDetail("tailBytes", tailBytes)
}

// NewTruncatedOrdinalsError builds the corruption error for an ordinal
// stream whose trailing bytes are not a multiple of 4.
func NewTruncatedOrdinalsError(trailingBytes int) *DescriptorError {
	return NewDescriptorError(nil, ErrorCodeDescriptorTruncatedOrdinals, "ordinal stream ended mid-record").
		WithField("ordinals").
		WithDetail("trailingBytes", trailingBytes)
}

// NewInputTruncatedError builds the spec.md §7 "Truncation" error: a short
// read from the ingest input that is neither a legitimate head-skip nor EOF.
func NewInputTruncatedError(wanted, got int) *DescriptorError {
	return NewDescriptorError(nil, ErrorCodeInputTruncated, "input ended mid-block without a head_skip in effect").
		WithDetail("bytesWanted", wanted).
		WithDetail("bytesRead", got)
}
