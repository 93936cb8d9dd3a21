package objectstore

import "errors"

var (
	ErrInvalidConfig      = errors.New("invalid object storage config")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
	ErrObjectNotFound     = errors.New("object not found")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrUploadFailed       = errors.New("upload failed")
	ErrDeleteFailed       = errors.New("delete failed")
	ErrSignFailed         = errors.New("failed to sign url")
	ErrUnsupportedType    = errors.New("unsupported content type")
	ErrServiceUnavailable = errors.New("storage service unavailable")
	ErrOperationTimeout   = errors.New("storage operation timed out")
)
