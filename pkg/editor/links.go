package editor

import (
	"regexp"
	"slices"
	"strings"
)

const nbsp = '\u00a0'

// DefaultURLPrefix pre-fills the URL prompt.
const DefaultURLPrefix = "https://"

// Prompt labels shown when inserting a link.
const (
	PromptLinkText = "Texto do link:"
	PromptLinkURL  = "URL do link:"
)

var (
	// autolinkPattern finds a URL-looking token ending at the caret.
	autolinkPattern = regexp.MustCompile(`(?i)(https?://|www\.)\S+$`)
	// pastePattern matches a clipboard payload that is nothing but a URL.
	pastePattern    = regexp.MustCompile(`(?i)^(https?://|www\.)\S+$`)
	schemePattern   = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.-]*):`)
)

// blockedSchemes run code when followed and are never kept as link targets.
var blockedSchemes = []string{"javascript", "vbscript", "data"}

// hasExplicitScheme reports whether href names a scheme that is kept as
// typed: one of allowedSchemes, or any other scheme followed by "//".
// "localhost:8080" has no "//" and so does not count.
func hasExplicitScheme(href string) bool {
	m := schemePattern.FindStringSubmatch(href)
	if m == nil {
		return false
	}
	scheme := strings.ToLower(m[1])
	if slices.Contains(blockedSchemes, scheme) {
		return false
	}
	if slices.Contains(allowedSchemes, scheme) {
		return true
	}
	return strings.HasPrefix(href[len(m[0]):], "//")
}

// NormalizeHref turns user input into a link target. Explicit schemes are
// kept as typed; anything else, including bare hosts like "www.x.com", gets
// an https:// prefix.
func NormalizeHref(raw string) string {
	raw = strings.TrimSpace(raw)
	if hasExplicitScheme(raw) {
		return raw
	}
	return "https://" + raw
}

// safeHref returns href when it may be kept on load, or "" to drop the link.
func safeHref(href string) string {
	href = strings.TrimSpace(href)
	if !hasExplicitScheme(href) {
		return ""
	}
	return href
}

// IsURL reports whether text, trimmed, is a single URL-looking token.
func IsURL(text string) bool {
	return pastePattern.MatchString(strings.TrimSpace(text))
}
