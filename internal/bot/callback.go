package bot

import (
	"strconv"
	"strings"

	"github.com/andikarip/telegram-saver-bot/internal/linkdetect"
)

// Callback data tokens. Reveal tokens are "<prefix>:<chatID>:<mediaID>".
const (
	callbackNoopToken = "noop"

	callbackPrefixTikTok    = "ttdesc"
	callbackPrefixInstagram = "igdesc"
	callbackPrefixFacebook  = "fbdesc"
	callbackPrefixTwitter   = "twdesc"
	callbackPrefixDouyin    = "dydesc"
)

var revealPrefixes = map[string]linkdetect.Platform{
	callbackPrefixTikTok:    linkdetect.PlatformTikTok,
	callbackPrefixInstagram: linkdetect.PlatformInstagram,
	callbackPrefixFacebook:  linkdetect.PlatformFacebook,
	callbackPrefixTwitter:   linkdetect.PlatformTwitter,
	callbackPrefixDouyin:    linkdetect.PlatformDouyin,
}

var callbackPlatformPrefix = map[linkdetect.Platform]string{
	linkdetect.PlatformTikTok:    callbackPrefixTikTok,
	linkdetect.PlatformInstagram: callbackPrefixInstagram,
	linkdetect.PlatformFacebook:  callbackPrefixFacebook,
	linkdetect.PlatformTwitter:   callbackPrefixTwitter,
	linkdetect.PlatformDouyin:    callbackPrefixDouyin,
}

type callbackKind int

const (
	callbackReveal callbackKind = iota
	callbackNoop
	callbackUnrecognized
)

// callbackAction is the parsed form of a button-press token. platform,
// chatID and mediaID are meaningful only for callbackReveal.
type callbackAction struct {
	kind     callbackKind
	platform linkdetect.Platform
	chatID   int64
	mediaID  string
}

// parseCallback classifies a raw callback data token. It never fails:
// anything that does not parse is reported as unrecognized so the press
// can still be acknowledged.
func parseCallback(data string) callbackAction {
	if data == callbackNoopToken {
		return callbackAction{kind: callbackNoop}
	}

	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return callbackAction{kind: callbackUnrecognized}
	}

	platform, ok := revealPrefixes[parts[0]]
	if !ok {
		return callbackAction{kind: callbackUnrecognized}
	}

	chatID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || parts[2] == "" {
		return callbackAction{kind: callbackUnrecognized}
	}

	return callbackAction{kind: callbackReveal, platform: platform, chatID: chatID, mediaID: parts[2]}
}

// revealCallbackData builds the token placed on a reveal-description
// button.
func revealCallbackData(platform linkdetect.Platform, chatID int64, mediaID string) string {
	prefix, ok := callbackPlatformPrefix[platform]
	if !ok {
		return ""
	}

	return prefix + ":" + strconv.FormatInt(chatID, 10) + ":" + mediaID
}
