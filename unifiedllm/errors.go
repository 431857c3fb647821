package unifiedllm

import (
	"errors"
	"fmt"
)

// ErrProviderNotSet is the cause carried by the ConfigurationError returned
// when the configured provider name is not a recognized key.
var ErrProviderNotSet = errors.New("LLM provider is not set in the config file")

// SDKError is the base error type for all facade errors.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

// ProviderError represents an error returned by an LLM backend.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
	ErrorCode  string
	Raw        map[string]interface{}
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("[%s] %s (status=%d)", e.Provider, e.Message, e.StatusCode)
}

// Concrete provider error types.

type AuthenticationError struct{ ProviderError }
type AccessDeniedError struct{ ProviderError }
type NotFoundError struct{ ProviderError }
type InvalidRequestError struct{ ProviderError }
type RateLimitError struct{ ProviderError }
type ServerError struct{ ProviderError }
type ContentFilterError struct{ ProviderError }
type ContextLengthError struct{ ProviderError }

// Non-provider errors.

type RequestTimeoutError struct{ SDKError }
type NetworkError struct{ SDKError }
type ConfigurationError struct{ SDKError }

// ErrorFromStatusCode maps an HTTP status code to the appropriate error type.
func ErrorFromStatusCode(statusCode int, message, provider, errorCode string, raw map[string]interface{}) error {
	pe := ProviderError{
		SDKError:   SDKError{Message: message},
		Provider:   provider,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Raw:        raw,
	}

	switch statusCode {
	case 400, 422:
		return &InvalidRequestError{ProviderError: pe}
	case 401:
		return &AuthenticationError{ProviderError: pe}
	case 403:
		return &AccessDeniedError{ProviderError: pe}
	case 404:
		return &NotFoundError{ProviderError: pe}
	case 408:
		return &RequestTimeoutError{SDKError: SDKError{Message: message}}
	case 413:
		return &ContextLengthError{ProviderError: pe}
	case 429:
		return &RateLimitError{ProviderError: pe}
	case 500, 502, 503, 504:
		return &ServerError{ProviderError: pe}
	default:
		return &pe
	}
}

// IsBackendError reports whether err was raised by a backend call (transport
// failure, non-2xx status or malformed response) rather than by configuration.
func IsBackendError(err error) bool {
	for err != nil {
		switch err.(type) {
		case *ConfigurationError:
			return false
		case *ProviderError, *AuthenticationError, *AccessDeniedError, *NotFoundError,
			*InvalidRequestError, *RateLimitError, *ServerError, *ContentFilterError,
			*ContextLengthError, *RequestTimeoutError, *NetworkError:
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

func configError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{SDKError: SDKError{Message: message, Cause: cause}}
}
