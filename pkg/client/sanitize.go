package client

import "regexp"

// Search text is user-controlled and may contain PII; redact the obvious
// shapes before it ever reaches the queue.
var (
	cardPattern  = regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{1,4}\b`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[ .\-]?)?\(?\d{3}\)?[ .\-]?\d{3}[ .\-]?\d{4}\b`)
)

// maxQueryLength caps sanitized search queries.
const maxQueryLength = 200

// SanitizeSearchQuery redacts email-like, phone-like and credit-card-like
// substrings from a free-text search query and truncates the result to
// 200 characters. Card shapes are replaced first so their digit groups
// are not partially consumed by the phone pattern.
func SanitizeSearchQuery(query string) string {
	sanitized := cardPattern.ReplaceAllString(query, "[card]")
	sanitized = emailPattern.ReplaceAllString(sanitized, "[email]")
	sanitized = phonePattern.ReplaceAllString(sanitized, "[phone]")

	return truncateRunes(sanitized, maxQueryLength)
}

// truncateRunes caps s at n characters without splitting a multi-byte
// rune at the boundary.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
