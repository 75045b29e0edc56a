package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCancelled    ErrorCode = "CANCELLED"

	// Tree model errors
	ErrNotFound                ErrorCode = "NOT_FOUND"
	ErrPathPrefixNotADirectory ErrorCode = "PATH_PREFIX_NOT_A_DIRECTORY"
	ErrInvalidPath             ErrorCode = "INVALID_PATH"
	ErrMergeConflict           ErrorCode = "MERGE_CONFLICT"

	// Filesystem errors
	ErrSymlinkCycle        ErrorCode = "SYMLINK_CYCLE"
	ErrBrokenSymlink       ErrorCode = "BROKEN_SYMLINK"
	ErrPermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrIO                  ErrorCode = "IO"
	ErrDestinationOccupied ErrorCode = "DESTINATION_OCCUPIED"
	ErrUnexpectedFileType  ErrorCode = "UNEXPECTED_FILE_TYPE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
)

// Detail keys shared by the packages that build TreeErrors.
const (
	DetailPath      = "path"
	DetailFullPath  = "fullPath"
	DetailChain     = "chain"
	DetailLink      = "link"
	DetailConflicts = "conflicts"
	DetailLine      = "line"
)

// TreeError represents a structured error with code and details
type TreeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *TreeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TreeError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *TreeError) Is(target error) bool {
	var targetErr *TreeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new TreeError with the given code and message
func New(code ErrorCode, message string) *TreeError {
	return &TreeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new TreeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *TreeError {
	return &TreeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a TreeError
func Wrap(err error, code ErrorCode, message string) *TreeError {
	if err == nil {
		return nil
	}
	return &TreeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *TreeError {
	if err == nil {
		return nil
	}
	return &TreeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *TreeError) WithDetail(key string, value interface{}) *TreeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *TreeError) WithDetails(details map[string]interface{}) *TreeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// Path returns the tree-relative path recorded on the error, if any.
func (e *TreeError) Path() string {
	if p, ok := e.Details[DetailPath].(string); ok {
		return p
	}
	return ""
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var treeErr *TreeError
	if errors.As(err, &treeErr) {
		return treeErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a TreeError
func GetErrorCode(err error) ErrorCode {
	var treeErr *TreeError
	if errors.As(err, &treeErr) {
		return treeErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a TreeError
func GetErrorDetails(err error) map[string]interface{} {
	var treeErr *TreeError
	if errors.As(err, &treeErr) {
		return treeErr.Details
	}
	return nil
}

// ClassifyOS maps an error returned by the operating system onto an ErrorCode.
// ENOTDIR counts as NOT_FOUND: a path running through a file names nothing.
func ClassifyOS(err error) ErrorCode {
	switch {
	case err == nil:
		return ErrUnknown
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, syscall.ELOOP):
		return ErrSymlinkCycle
	case errors.Is(err, fs.ErrExist):
		return ErrDestinationOccupied
	default:
		return ErrIO
	}
}

// FromOS wraps an OS failure for op on fullPath, recording the tree-relative
// path alongside it. It returns nil when err is nil.
func FromOS(err error, op, relPath, fullPath string) *TreeError {
	if err == nil {
		return nil
	}
	return Wrapf(err, ClassifyOS(err), "%s %s", op, fullPath).
		WithDetail(DetailPath, relPath).
		WithDetail(DetailFullPath, fullPath)
}
