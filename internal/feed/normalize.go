package feed

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes a URL for deduplication: lowercased host,
// query string and fragment stripped. It never panics; unparseable input
// returns ok=false and callers skip the item.
func NormalizeURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return "", false
	}
	return fmt.Sprintf("%s://%s%s", u.Scheme, strings.ToLower(u.Hostname()), u.Path), true
}

// ExtractSource returns the canonical domain of a URL without the "www."
// prefix, or "unknown" when the URL cannot be parsed.
func ExtractSource(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
