package errors

import "fmt"

// Error codes
const (
	CodeAppError   = "APP_ERROR"
	CodeAPIError   = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeService    = "SERVICE_ERROR"
	CodeUpload     = "UPLOAD_ERROR"
	CodeConflict   = "CONFLICT_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

type APIError struct {
	*AppError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// UploadError reports a rejected local image selection. StatusCode is 413 when
// the file exceeded the configured cap.
type UploadError struct {
	*AppError
	Filename string
}

func NewUploadError(message, filename string, statusCode int, cause error) *UploadError {
	return &UploadError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeUpload,
			StatusCode: statusCode,
			Context: map[string]any{
				"filename": filename,
			},
			Cause: cause,
		},
		Filename: filename,
	}
}

func NewConflictError(message string, context map[string]any) *AppError {
	return NewAppError(message, CodeConflict, 409, context)
}

// StatusCode extracts the HTTP status carried by err, falling back to 500.
func StatusCode(err error) int {
	for err != nil {
		switch e := err.(type) {
		case *ValidationError:
			return e.StatusCode
		case *UploadError:
			return e.StatusCode
		case *CacheError:
			return e.StatusCode
		case *ServiceError:
			return e.StatusCode
		case *APIError:
			return e.StatusCode
		case *AppError:
			return e.StatusCode
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return 500
}
