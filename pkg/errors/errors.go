// Package errors provides a small hierarchy of domain-specific error types
// built on top of a shared baseError: ValidationError for usage/input
// problems, PoolError for Block Pool file operations, IndexError for Hash
// Index operations, and DescriptorError for image descriptor framing. Each
// type carries an ErrorCode for programmatic dispatch plus whatever
// positional context (ordinal, offset, fingerprint, header field) helps
// pinpoint where a failure happened.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsIndexError identifies errors that occurred during Hash Index operations
// such as startup rebuild, fingerprint lookups, or index appends.
func IsIndexError(err error) bool {
	var ie *IndexError
	return stdErrors.As(err, &ie)
}

// IsDescriptorError identifies errors from image descriptor framing: bad
// signature, invalid header fields, or a truncated ordinal stream.
func IsDescriptorError(err error) bool {
	var de *DescriptorError
	return stdErrors.As(err, &de)
}

// GetErrorCode extracts the error code from any error that supports it, or
// returns ErrorCodeInternal for errors that don't have specific codes.
// cmd/imagepile uses this to pick a process exit code without type-switching
// on every error kind individually.
func GetErrorCode(err error) ErrorCode {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve.Code()
	}
	var pe *PoolError
	if stdErrors.As(err, &pe) {
		return pe.Code()
	}
	var ie *IndexError
	if stdErrors.As(err, &ie) {
		return ie.Code()
	}
	var de *DescriptorError
	if stdErrors.As(err, &de) {
		return de.Code()
	}
	return ErrorCodeInternal
}

// ClassifyDirectoryCreationError analyzes pool-directory creation failures
// and returns a PoolError with the appropriate code, so callers can tell a
// permissions problem from a full disk from a read-only mount.
func ClassifyDirectoryCreationError(err error, path string) error {
	if os.IsPermission(err) {
		return NewPoolError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to create pool directory",
		).WithPath(path).
			WithDetail("operation", "directory_creation").
			WithDetail("suggestion", "check directory permissions or run with elevated privileges")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewPoolError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create pool directory",
				).WithPath(path).
					WithDetail("operation", "directory_creation").
					WithDetail("suggestion", "free up disk space or choose a different location")
			case syscall.EROFS:
				return NewPoolError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create directory on read-only filesystem",
				).WithPath(path).
					WithDetail("operation", "directory_creation").
					WithDetail("suggestion", "remount filesystem with write permissions")
			}
		}
	}

	return NewPoolError(
		err, ErrorCodeIO, "failed to create pool directory",
	).WithPath(path).WithDetail("operation", "directory_creation")
}

// ClassifyFileOpenError analyzes Pool/Index file open failures and returns
// a PoolError with a specific code instead of a generic I/O error.
func ClassifyFileOpenError(err error, filePath, fileName string) error {
	if os.IsPermission(err) {
		return NewPoolError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to open file",
		).WithPath(filePath).
			WithFileName(fileName).
			WithDetail("operation", "file_open").
			WithDetail("suggestion", "check file permissions or run with elevated privileges")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewPoolError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create file",
				).WithPath(filePath).
					WithFileName(fileName).
					WithDetail("operation", "file_open").
					WithDetail("suggestion", "free up disk space")
			case syscall.EROFS:
				return NewPoolError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create file on read-only filesystem",
				).WithPath(filePath).
					WithFileName(fileName).
					WithDetail("operation", "file_open").
					WithDetail("suggestion", "remount filesystem with write permissions")
			}
		}
	}

	return NewPoolError(err, ErrorCodeIO, "failed to open file").
		WithPath(filePath).
		WithFileName(fileName).
		WithDetail("operation", "file_open")
}

// ClassifySyncError analyzes Pool/Index fsync failures and returns a
// PoolError with a specific code.
func ClassifySyncError(err error, fileName, filePath string, offset int64) error {
	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewPoolError(
					err, ErrorCodeDiskFull,
					"cannot sync file: insufficient disk space",
				).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
					WithDetail("operation", "file_sync")
			case syscall.EROFS:
				return NewPoolError(
					err, ErrorCodeFilesystemReadonly,
					"cannot sync file: filesystem is read-only",
				).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
					WithDetail("operation", "file_sync")
			case syscall.EIO:
				return NewPoolError(
					err, ErrorCodeIO,
					"I/O error during file sync, possible hardware or corruption issue",
				).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
					WithDetail("operation", "file_sync").
					WithDetail("severity", "high")
			}
		}
	}

	return NewPoolError(
		err, ErrorCodeIO, "failed to sync file to disk",
	).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
		WithDetail("operation", "file_sync")
}
