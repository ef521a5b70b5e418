// Package baseurl normalizes the API hosts given in config.
package baseurl

import (
	"fmt"
	"net/url"
	"strings"
)

// Parse returns the scheme and host of raw with any path, query or fragment
// dropped. A blank raw uses fallback, and a missing scheme becomes https.
func Parse(raw, fallback string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
