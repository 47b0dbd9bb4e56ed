package imagegen

import "strings"

// quotaMarkers are substrings (matched case-insensitively) that indicate the
// account is out of credits rather than the model being down.
var quotaMarkers = []string{
	"quota",
	"exceeded",
	"insufficient",
	"balance",
	"pollen",
	"credits",
}

// Classify maps a provider error body to a failure class. The provider does
// not use status codes consistently, so classification keys off the body text.
// All provider-message knowledge lives here; if the upstream wording changes,
// this is the only function to touch.
func Classify(body string) FailureClass {
	lower := strings.ToLower(body)

	for _, marker := range quotaMarkers {
		if strings.Contains(lower, marker) {
			return FailureQuota
		}
	}

	// "No active servers for model X" and "model X not allowed" both mean the
	// specific model is unavailable; a different model may still work.
	if strings.Contains(lower, "no active") && strings.Contains(lower, "servers") {
		return FailureRetryable
	}
	if strings.Contains(lower, "not allowed") {
		return FailureRetryable
	}

	return FailureFatal
}
