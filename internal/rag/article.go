package rag

import "regexp"

// Statutory citation forms: "7:244" directly, or "artikel 244" which
// implies Book 7 in the tenancy context.
var (
	articleRefRe = regexp.MustCompile(`(?i)\b(7:\d{1,3}[a-z]?)\b`)
	articleNumRe = regexp.MustCompile(`(?i)\b(?:art\.|artikel|article)\s*(\d{1,3}[a-z]?)\b`)
)

// extractArticle pulls a statutory article reference out of a question,
// or returns "" when the question cites none.
func extractArticle(question string) string {
	if m := articleRefRe.FindStringSubmatch(question); m != nil {
		return m[1]
	}
	if m := articleNumRe.FindStringSubmatch(question); m != nil {
		return "7:" + m[1]
	}
	return ""
}
