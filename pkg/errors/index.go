package errors

// IndexError provides specialized error handling for Hash Index operations:
// rebuilding the in-memory lookup from the Index file at startup, appending
// a new fingerprint record, and inserting into a bucket's leaf chain.
type IndexError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// fingerprint identifies which block fingerprint was being processed
	// when the error occurred.
	fingerprint uint64

	// recordOffset is the byte offset into the Index file of the record
	// involved in the error (ordinal * 8).
	recordOffset int64

	// operation describes what Hash Index operation was being performed
	// when the error occurred (e.g. "rebuild", "find", "insert").
	operation string

	// indexSize captures the number of records in the Hash Index at the
	// time of the error, for capacity diagnostics.
	indexSize int
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{
		baseError: NewBaseError(err, code, msg),
	}
}

// Override base error methods to return *IndexError instead of *baseError.

// WithMessage updates the error message while maintaining the IndexError type.
func (ie *IndexError) WithMessage(msg string) *IndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IndexError type.
func (ie *IndexError) WithCode(code ErrorCode) *IndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithFingerprint records which block fingerprint was being processed when
// the error occurred.
func (ie *IndexError) WithFingerprint(fp uint64) *IndexError {
	ie.fingerprint = fp
	return ie
}

// WithRecordOffset captures the byte offset into the Index file of the
// record involved in the error.
func (ie *IndexError) WithRecordOffset(offset int64) *IndexError {
	ie.recordOffset = offset
	return ie
}

// WithOperation records what Hash Index operation was being performed.
func (ie *IndexError) WithOperation(operation string) *IndexError {
	ie.operation = operation
	return ie
}

// WithIndexSize captures the number of records in the Hash Index when the
// error occurred.
func (ie *IndexError) WithIndexSize(size int) *IndexError {
	ie.indexSize = size
	return ie
}

// Fingerprint returns the fingerprint involved in the error.
func (ie *IndexError) Fingerprint() uint64 {
	return ie.fingerprint
}

// RecordOffset returns the byte offset into the Index file of the record
// involved in the error.
func (ie *IndexError) RecordOffset() int64 {
	return ie.recordOffset
}

// Operation returns the name of the operation that was being performed.
func (ie *IndexError) Operation() string {
	return ie.operation
}

// IndexSize returns the number of records in the Hash Index when the error
// occurred.
func (ie *IndexError) IndexSize() int {
	return ie.indexSize
}

// NewPartialRecordError builds the corruption error for a short read of a
// fingerprint record during startup rebuild (spec.md §4.2, §7).
func NewPartialRecordError(recordOffset int64, read int, cause error) *IndexError {
	return NewIndexError(cause, ErrorCodeIndexPartialRecord, "partial fingerprint record in index file").
		WithOperation("rebuild").
		WithRecordOffset(recordOffset).
		WithDetail("bytesRead", read).
		WithDetail("bytesExpected", 8)
}

// NewLockstepViolationError builds the I1 violation error: the Index and
// Pool record counts have diverged.
func NewLockstepViolationError(indexRecords, poolBlocks int) *IndexError {
	return NewIndexError(nil, ErrorCodeIndexLockstepViolation, "index record count does not match pool block count").
		WithOperation("verify").
		WithIndexSize(indexRecords).
		WithDetail("poolBlocks", poolBlocks)
}
