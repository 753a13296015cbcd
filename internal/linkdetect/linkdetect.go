// Package linkdetect classifies free-form message text into supported
// social-media platforms and extracts the exact link substring.
package linkdetect

import "regexp"

// Platform identifies a supported social-media source.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformDouyin    Platform = "douyin"

	// PlatformUnsupported marks a generic http(s) link that belongs to
	// none of the supported platforms.
	PlatformUnsupported Platform = "unsupported"
)

// Link is a classified URL found inside a message.
type Link struct {
	Platform Platform
	URL      string
}

var (
	facebookRegex  = regexp.MustCompile(`(?i)https?://(?:www\.)?(?:facebook\.com|fb\.watch)/[^\s]*`)
	tiktokRegex    = regexp.MustCompile(`(?i)https?://(?:www\.|vm\.|vt\.|m\.|t\.)?tiktok\.com/[^\s]*`)
	instagramRegex = regexp.MustCompile(`(?i)https?://(?:www\.)?instagram\.com/[^\s]*`)
	twitterRegex   = regexp.MustCompile(`(?i)https?://(?:www\.)?(?:twitter\.com|x\.com)/[^\s]*`)
	douyinRegex    = regexp.MustCompile(`(?i)https?://(?:www\.|v\.|ies\.)?douyin\.com/[^\s]*`)
	genericRegex   = regexp.MustCompile(`(?i)https?://[^\s]+`)
)

// patterns are checked in order; the first match wins.
var patterns = []struct {
	platform Platform
	re       *regexp.Regexp
}{
	{PlatformFacebook, facebookRegex},
	{PlatformTikTok, tiktokRegex},
	{PlatformInstagram, instagramRegex},
	{PlatformTwitter, twitterRegex},
	{PlatformDouyin, douyinRegex},
}

// Detect finds the first supported platform link in text. A generic URL
// that matches no platform is reported as PlatformUnsupported so the caller
// can tell the user, rather than staying silent. Returns nil when the text
// contains no URL at all.
func Detect(text string) *Link {
	if text == "" {
		return nil
	}

	for _, p := range patterns {
		if m := p.re.FindString(text); m != "" {
			return &Link{Platform: p.platform, URL: m}
		}
	}

	if m := genericRegex.FindString(text); m != "" {
		return &Link{Platform: PlatformUnsupported, URL: m}
	}

	return nil
}
