package sources

import "strings"

// ConfigString returns the trimmed string value for key from source.Config or a fallback.
func ConfigString(s Source, key, fallback string) string {
	if s.Config != nil {
		if raw, ok := s.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptKey         = "accept"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigCacheControlKey   = "cache_control"

	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.5"
)

// Headers builds the browser-like request headers for a source. Per-source config wins
// over the defaults; empty values are skipped.
func Headers(s Source, userAgent string) map[string]string {
	headers := make(map[string]string, 4)

	if v := ConfigString(s, ConfigUserAgentKey, userAgent); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(s, ConfigAcceptKey, DefaultAccept); v != "" {
		headers["Accept"] = v
	}
	if v := ConfigString(s, ConfigAcceptLanguageKey, DefaultAcceptLanguage); v != "" {
		headers["Accept-Language"] = v
	}
	if v := ConfigString(s, ConfigCacheControlKey, ""); v != "" {
		headers["Cache-Control"] = v
	}

	return headers
}
