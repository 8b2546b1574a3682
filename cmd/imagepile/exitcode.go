package main

import (
	pkgerrors "github.com/iamNilotpal/imagepile/pkg/errors"
)

// Exit codes follow the classic sysexits.h convention the rest of the pack
// leans on for CLI tools: usage errors are distinguishable from I/O
// failures and from unexpected internal errors.
const (
	exitUsage    = 64
	exitIOError  = 74
	exitInternal = 70
)

// exitCodeFor maps an error's structured code (pkg/errors) to a process
// exit status, so a caller scripting imagepile can distinguish "you asked
// for something invalid" from "the pool is corrupt or disk failed" without
// parsing message text.
func exitCodeFor(err error) int {
	switch pkgerrors.GetErrorCode(err) {
	case pkgerrors.ErrorCodeInvalidInput:
		return exitUsage
	case pkgerrors.ErrorCodeIO,
		pkgerrors.ErrorCodeDiskFull,
		pkgerrors.ErrorCodeFilesystemReadonly,
		pkgerrors.ErrorCodePermissionDenied,
		pkgerrors.ErrorCodePoolShortWrite,
		pkgerrors.ErrorCodePoolShortRead,
		pkgerrors.ErrorCodePoolInvalidOrdinal,
		pkgerrors.ErrorCodeIndexPartialRecord,
		pkgerrors.ErrorCodeIndexAppendFailed,
		pkgerrors.ErrorCodeIndexLockstepViolation,
		pkgerrors.ErrorCodeDescriptorBadSignature,
		pkgerrors.ErrorCodeDescriptorInvalidHeadSkip,
		pkgerrors.ErrorCodeDescriptorInvalidTailBytes,
		pkgerrors.ErrorCodeDescriptorTruncatedOrdinals,
		pkgerrors.ErrorCodeDescriptorInconsistentTrim,
		pkgerrors.ErrorCodeInputTruncated:
		return exitIOError
	default:
		return exitInternal
	}
}
