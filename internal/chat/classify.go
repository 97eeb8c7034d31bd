package chat

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// Cause is a best-effort diagnosis of a failed Gemini call. It only shapes the
// log line and message; every failure is still a single inference error kind.
type Cause int

const (
	// CauseUnknown indicates an unrecognized failure.
	CauseUnknown Cause = iota
	// CauseInvalidKey indicates the API key is invalid or revoked.
	CauseInvalidKey
	// CauseQuotaExceeded indicates the API quota has been exceeded.
	CauseQuotaExceeded
	// CauseNetwork indicates a connectivity or server-side problem.
	CauseNetwork
	// CauseCanceled indicates the run's context was canceled or timed out.
	CauseCanceled
)

func (c Cause) String() string {
	switch c {
	case CauseInvalidKey:
		return "invalid_key"
	case CauseQuotaExceeded:
		return "quota"
	case CauseNetwork:
		return "network_error"
	case CauseCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Hint is a short user-facing explanation of the cause.
func (c Cause) Hint() string {
	switch c {
	case CauseInvalidKey:
		return "API key is invalid, expired, or lacks permissions"
	case CauseQuotaExceeded:
		return "API quota exceeded or rate limited"
	case CauseNetwork:
		return "network or server error"
	case CauseCanceled:
		return "request canceled or timed out"
	default:
		return "unexpected error"
	}
}

// Classify analyzes an error returned by the Gemini API.
func Classify(err error) Cause {
	if err == nil {
		return CauseUnknown
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CauseCanceled
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr.Code)
	}

	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "api key not valid") ||
		strings.Contains(errLower, "invalid api key") ||
		strings.Contains(errLower, "api_key_invalid") ||
		strings.Contains(errLower, "permission denied"):
		return CauseInvalidKey

	case strings.Contains(errLower, "quota") ||
		strings.Contains(errLower, "resource exhausted") ||
		strings.Contains(errLower, "rate limit"):
		return CauseQuotaExceeded

	case strings.Contains(errLower, "connection") ||
		strings.Contains(errLower, "network") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "dial") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "unreachable"):
		return CauseNetwork

	default:
		return CauseUnknown
	}
}

// classifyAPIError categorizes a Google API error by HTTP status code.
func classifyAPIError(code int) Cause {
	switch code {
	case 400, 401, 403:
		return CauseInvalidKey
	case 429:
		return CauseQuotaExceeded
	case 500, 502, 503, 504:
		return CauseNetwork
	default:
		return CauseUnknown
	}
}
