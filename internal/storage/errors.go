package storage

import "fmt"

// Error codes mirror domain error codes to avoid a circular import.
// The handler layer maps these to HTTP status codes.
const (
	codeInvalid  = "invalid"
	codeNotFound = "not_found"
)

// StorageError is a storage-specific error with a code and message.
type StorageError struct {
	Code    string
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *StorageError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *StorageError) ErrorMessage() string {
	return e.Message
}

var (
	// ErrS3CredentialsRequired is returned when S3 credentials are missing.
	ErrS3CredentialsRequired = &StorageError{Code: codeInvalid, Message: "S3 credentials are required"}

	// ErrS3BucketRequired is returned when the S3 bucket name is missing.
	ErrS3BucketRequired = &StorageError{Code: codeInvalid, Message: "S3 bucket name is required"}
)

// ErrFileNotFound creates an error for when a file is not found.
func ErrFileNotFound(key string) error {
	return &StorageError{
		Code:    codeNotFound,
		Message: fmt.Sprintf("file not found: %s", key),
	}
}

// ErrUnknownProvider creates an error for unknown storage providers.
func ErrUnknownProvider(provider string) error {
	return &StorageError{
		Code:    codeInvalid,
		Message: fmt.Sprintf("unknown storage provider: %s", provider),
	}
}
