package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// IsCheckable reports whether an anchor href should be probed.
// Empty values, mailto: links and in-page fragments are skipped. The value is
// matched as written; no trimming or case folding is applied.
func IsCheckable(href string) bool {
	if href == "" {
		return false
	}
	return !strings.HasPrefix(href, "mailto:") && !strings.HasPrefix(href, "#")
}

// IsHTTPScheme returns true if the URL has an http or https scheme.
// Returns false for empty strings, non-HTTP schemes, or unparseable URLs.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// Resolve resolves a possibly-relative ref against base.
// If ref is absolute, it is returned unchanged apart from re-encoding.
func Resolve(base *url.URL, ref string) (*url.URL, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse ref URL %q: %w", ref, err)
	}
	if base == nil {
		return refURL, nil
	}
	return base.ResolveReference(refURL), nil
}
