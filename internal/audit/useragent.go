package audit

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// SummarizeUserAgent condenses a raw User-Agent header into a short
// "browser major / os / platform" label for the audit trail. The raw header is
// never stored. Does NOT include IP address (too volatile to be useful here).
func SummarizeUserAgent(userAgentString string) string {
	if userAgentString == "" {
		return ""
	}

	ua := useragent.New(userAgentString)
	browser, version := ua.Browser()

	majorVersion := "unknown"
	if version != "" {
		parts := strings.Split(version, ".")
		if len(parts) > 0 && parts[0] != "" {
			majorVersion = parts[0]
		}
	}

	os := ua.OS()
	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	}

	browser = strings.ToLower(strings.TrimSpace(browser))
	if browser == "" {
		browser = "unknown"
	}
	os = strings.ToLower(strings.TrimSpace(os))
	if os == "" {
		os = "unknown"
	}

	return fmt.Sprintf("%s %s / %s / %s", browser, majorVersion, os, platform)
}
