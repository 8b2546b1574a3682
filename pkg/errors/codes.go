package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary: reading or writing the Pool file, the Index file, the
	// ingest input stream, or the reconstructed output stream.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents usage errors where caller-provided
	// data doesn't meet the system's requirements: a bad head_skip, a wrong
	// number of command arguments, a missing configuration (spec.md §7,
	// "Usage").
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories: assertion failures or bugs that shouldn't occur
	// during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"

	// ErrorCodePermissionDenied indicates insufficient permissions to access
	// the Pool directory or its files.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates the storage device backing the Pool
	// directory ran out of space mid-append.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates the Pool directory's filesystem
	// is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Pool-specific error codes cover the append-only block file (spec.md §4.1).
const (
	// ErrorCodePoolShortWrite indicates append() wrote fewer than
	// blocksize.Size bytes. Fatal per spec.md §7 ("I/O failure").
	ErrorCodePoolShortWrite ErrorCode = "POOL_SHORT_WRITE"

	// ErrorCodePoolShortRead indicates read(ordinal) returned fewer than
	// blocksize.Size bytes.
	ErrorCodePoolShortRead ErrorCode = "POOL_SHORT_READ"

	// ErrorCodePoolInvalidOrdinal indicates a negative ordinal, or an
	// ordinal past the current end of the Pool file.
	ErrorCodePoolInvalidOrdinal ErrorCode = "POOL_INVALID_ORDINAL"
)

// Hash Index-specific error codes (spec.md §4.2).
const (
	// ErrorCodeIndexPartialRecord indicates a short read of a fingerprint
	// record while rebuilding the in-memory lookup at startup — a corruption
	// condition per spec.md §7.
	ErrorCodeIndexPartialRecord ErrorCode = "INDEX_PARTIAL_RECORD"

	// ErrorCodeIndexAppendFailed indicates a failed append of a fingerprint
	// to the Index file.
	ErrorCodeIndexAppendFailed ErrorCode = "INDEX_APPEND_FAILED"

	// ErrorCodeIndexLockstepViolation indicates the Index and Pool record
	// counts have diverged (I1 violated), detected at startup or by verify.
	ErrorCodeIndexLockstepViolation ErrorCode = "INDEX_LOCKSTEP_VIOLATION"

	// ErrorCodeIndexAllocationFailed indicates the in-memory lookup could not
	// allocate a new leaf (spec.md §7, "Resource exhaustion").
	ErrorCodeIndexAllocationFailed ErrorCode = "INDEX_ALLOCATION_FAILED"
)

// Descriptor-specific error codes (spec.md §4.3, §4.4, §6).
const (
	// ErrorCodeDescriptorBadSignature indicates the 4-byte 'IPIL' signature
	// was missing or wrong.
	ErrorCodeDescriptorBadSignature ErrorCode = "DESCRIPTOR_BAD_SIGNATURE"

	// ErrorCodeDescriptorInvalidHeadSkip indicates head_skip >= blocksize.Size.
	ErrorCodeDescriptorInvalidHeadSkip ErrorCode = "DESCRIPTOR_INVALID_HEAD_SKIP"

	// ErrorCodeDescriptorInvalidTailBytes indicates tail_bytes is 0 or
	// greater than blocksize.Size.
	ErrorCodeDescriptorInvalidTailBytes ErrorCode = "DESCRIPTOR_INVALID_TAIL_BYTES"

	// ErrorCodeDescriptorTruncatedOrdinals indicates the ordinal stream ended
	// mid-record (a length not a multiple of 4 bytes).
	ErrorCodeDescriptorTruncatedOrdinals ErrorCode = "DESCRIPTOR_TRUNCATED_ORDINALS"

	// ErrorCodeInputTruncated indicates a short read from the ingest input
	// stream that is neither the legitimate head-skip case nor end-of-input
	// (spec.md §7, "Truncation").
	ErrorCodeInputTruncated ErrorCode = "INPUT_TRUNCATED"

	// ErrorCodeDescriptorInconsistentTrim indicates a single-ordinal
	// descriptor whose head_skip and tail_bytes, individually valid, form an
	// inverted byte range within the block (tail_bytes < head_skip).
	ErrorCodeDescriptorInconsistentTrim ErrorCode = "DESCRIPTOR_INCONSISTENT_TRIM"
)
