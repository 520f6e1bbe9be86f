package vanilla

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	advicePolicyOnce sync.Once
	advicePolicy     *bluemonday.Policy
)

// sanitizeAdvice restricts the rendered advice fragment to the elements the
// block partial emits.
func sanitizeAdvice(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(adviceSanitizer().Sanitize(trimmed))
}

func adviceSanitizer() *bluemonday.Policy {
	advicePolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		elements := []string{"section", "h2", "h3", "h4", "h5", "ul", "ol", "li", "p"}
		policy.AllowElements(elements...)
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements(elements...)
		policy.AllowAttrs("data-kind").Matching(bluemonday.Paragraph).OnElements(elements...)
		advicePolicy = policy
	})
	return advicePolicy
}
