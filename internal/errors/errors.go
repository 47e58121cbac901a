// Package errors provides structured application errors with stable codes
// that map onto gRPC status codes.
package errors

import (
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Domain is reported in gRPC ErrorInfo details.
const Domain = "screenwatch"

// Code identifies an error class.
type Code string

const (
	Unknown          Code = "UNKNOWN"
	Internal         Code = "INTERNAL"
	InvalidArgument  Code = "INVALID_ARGUMENT"
	Unavailable      Code = "UNAVAILABLE"
	Timeout          Code = "TIMEOUT"
	Cancelled        Code = "CANCELLED"
	OCRExtractFailed Code = "OCR_EXTRACT_FAILED"
	OCRInvalidImage  Code = "OCR_INVALID_IMAGE"
	OCRUnavailable   Code = "OCR_UNAVAILABLE"
	CaptureFailed    Code = "CAPTURE_FAILED"
	SurfaceFailed    Code = "SURFACE_QUERY_FAILED"
	StorageWrite     Code = "STORAGE_WRITE_FAILED"
	StorageCorrupt   Code = "STORAGE_CORRUPT"
	ConfigInvalid    Code = "CONFIG_INVALID"
	ConfigMissing    Code = "CONFIG_MISSING"
)

// grpcCodeMap maps error codes to gRPC status codes.
var grpcCodeMap = map[Code]codes.Code{
	Unknown:          codes.Unknown,
	Internal:         codes.Internal,
	InvalidArgument:  codes.InvalidArgument,
	Unavailable:      codes.Unavailable,
	Timeout:          codes.DeadlineExceeded,
	Cancelled:        codes.Canceled,
	OCRExtractFailed: codes.Internal,
	OCRInvalidImage:  codes.InvalidArgument,
	OCRUnavailable:   codes.Unavailable,
	CaptureFailed:    codes.Internal,
	SurfaceFailed:    codes.Internal,
	StorageWrite:     codes.Internal,
	StorageCorrupt:   codes.DataLoss,
	ConfigInvalid:    codes.InvalidArgument,
	ConfigMissing:    codes.FailedPrecondition,
}

// AppError is the base error type with structured code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// GRPCCode returns the corresponding gRPC status code.
func (e *AppError) GRPCCode() codes.Code {
	if c, ok := grpcCodeMap[e.Code]; ok {
		return c
	}
	return codes.Unknown
}

// GRPCStatus returns a gRPC status carrying an ErrorInfo detail.
func (e *AppError) GRPCStatus() *status.Status {
	st := status.New(e.GRPCCode(), e.Error())
	info := &errdetails.ErrorInfo{Reason: string(e.Code), Domain: Domain, Metadata: e.Metadata}
	if withInfo, err := st.WithDetails(info); err == nil {
		return withInfo
	}
	return st
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// New creates an AppError.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates an AppError with a formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// FromGRPCError converts a gRPC error into an AppError, preferring the
// ErrorInfo reason when the server sent one.
func FromGRPCError(err error) *AppError {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &AppError{Code: Unknown, Message: err.Error(), Cause: err}
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetReason() != "" {
			return &AppError{Code: Code(info.GetReason()), Message: st.Message(), Metadata: info.GetMetadata(), Cause: err}
		}
	}
	return &AppError{Code: grpcToCode(st.Code()), Message: st.Message(), Cause: err}
}

// grpcToCode maps gRPC codes back to error codes (best effort).
func grpcToCode(c codes.Code) Code {
	switch c {
	case codes.InvalidArgument:
		return InvalidArgument
	case codes.Unavailable:
		return Unavailable
	case codes.DeadlineExceeded:
		return Timeout
	case codes.Canceled:
		return Cancelled
	case codes.Internal:
		return Internal
	case codes.FailedPrecondition:
		return ConfigMissing
	case codes.DataLoss:
		return StorageCorrupt
	default:
		return Unknown
	}
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return Unknown
}

// IsCode checks if an error carries a specific code anywhere in its chain.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsRetryable returns true if the error is potentially transient.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case Unavailable, Timeout, OCRUnavailable:
		return true
	default:
		return false
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
