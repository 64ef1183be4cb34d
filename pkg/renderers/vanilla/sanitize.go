package vanilla

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	termsPolicyOnce sync.Once
	termsPolicy     *bluemonday.Policy
)

// sanitizeTerms keeps basic text formatting in the terms body and strips
// everything else. Plain text is returned unchanged apart from escaping.
func sanitizeTerms(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(termsSanitizer().Sanitize(trimmed))
}

func termsSanitizer() *bluemonday.Policy {
	termsPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("p", "br", "strong", "em", "b", "i", "ul", "ol", "li", "h3", "h4")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		termsPolicy = policy
	})
	return termsPolicy
}
