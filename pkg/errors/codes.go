package errors

import "net/http"

// ErrorCode is a string identifier for a specific failure category.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
)

// Knowledge-store error codes.
const (
	ErrCodeStoreUnavailable ErrorCode = "STORE_001"
	ErrCodeStoreQuery       ErrorCode = "STORE_002"
	ErrCodeStoreImport      ErrorCode = "STORE_003"
)

// Language-service error codes.
const (
	ErrCodeLLMUnavailable ErrorCode = "LLM_001"
	ErrCodeLLMMalformed   ErrorCode = "LLM_002"
	ErrCodeRateLimited    ErrorCode = "LLM_003"
	ErrCodeLLMEmpty       ErrorCode = "LLM_004"
)

// Pipeline error codes.
const (
	ErrCodeExtractionFailed ErrorCode = "PIPE_001"
	ErrCodeGenerationFailed ErrorCode = "PIPE_002"
)

const CodeOK ErrorCode = "OK"

// HTTPStatus maps an ErrorCode onto the HTTP status the interface layer
// should return for it.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeStoreUnavailable, ErrCodeLLMUnavailable, ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
