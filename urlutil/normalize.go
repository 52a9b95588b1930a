// Package urlutil holds the small URL helpers shared by the auditor and the
// suite: href filtering, reference resolution and site root normalization.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SiteRoot parses the root URL a page list is served from.
// Normalization includes:
// - Lowercasing the scheme and host
// - Stripping fragments and queries
// - Ensuring the path ends with "/" so pages resolve beneath it
//
// Returns an error if the input is empty or is not an absolute http(s) URL.
func SiteRoot(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, errors.New("site root is empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse site root %q: %w", rawURL, err)
	}

	if !IsHTTPScheme(rawURL) || parsed.Host == "" {
		return nil, fmt.Errorf("site root %q must be an absolute http or https URL", rawURL)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.RawQuery = ""

	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
		parsed.RawPath = ""
	}

	return parsed, nil
}
