package llm

import (
	"fmt"
	"regexp"
)

const (
	// MaxLoggedResponseLength is the maximum length of response text to include
	// in logs and error messages. Longer payloads are truncated so raw model
	// output never floods log aggregators.
	MaxLoggedResponseLength = 200
)

// TruncateForLogging safely truncates a response string for logging and
// diagnostics. Malformed-response errors embed the raw text through this so
// the caller can see what the model actually said without unbounded output.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

var urlSecretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`key=[^&"\s]+`),
	regexp.MustCompile(`apiKey=[^&"\s]+`),
	regexp.MustCompile(`api_key=[^&"\s]+`),
	regexp.MustCompile(`token=[^&"\s]+`),
	regexp.MustCompile(`access_token=[^&"\s]+`),
}

var urlSecretReplacements = []string{
	"key=[REDACTED]",
	"apiKey=[REDACTED]",
	"api_key=[REDACTED]",
	"token=[REDACTED]",
	"access_token=[REDACTED]",
}

// RedactURLSecrets redacts API keys and other secrets from URLs in error
// messages, so keys passed as query parameters never reach logs.
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}
	result := text
	for i, re := range urlSecretPatterns {
		result = re.ReplaceAllString(result, urlSecretReplacements[i])
	}
	return result
}
