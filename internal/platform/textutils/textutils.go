// Package textutils provides text helpers for outbound Telegram messages:
// Markdown stripping for parse-error fallbacks and human-readable
// duration/timestamp formatting for media captions.
package textutils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const unknownLabel = "Tidak diketahui"

// markdownChars are the characters that commonly break Telegram's Markdown
// parser when they appear unescaped in upstream-supplied text.
const markdownChars = "*_`[]()"

// StripMarkdown removes Markdown syntax characters from text so it can be
// resent without a parse mode after a formatting rejection.
func StripMarkdown(text string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(markdownChars, r) {
			return -1
		}

		return r
	}, text)
}

// FormatDuration renders a millisecond duration as Indonesian prose,
// e.g. "1 jam 2 menit 3 detik".
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return unknownLabel
	}

	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	var b strings.Builder

	if hours > 0 {
		fmt.Fprintf(&b, "%d jam ", hours)
	}

	if minutes > 0 || hours > 0 {
		fmt.Fprintf(&b, "%d menit ", minutes)
	}

	fmt.Fprintf(&b, "%d detik", seconds)

	return b.String()
}

// FormatTimestamp renders an upstream "taken at" value as a readable local
// date. Upstreams disagree on the format: some send Unix seconds, some send
// preformatted date strings. Unparseable input falls through unchanged, and
// empty input reports unknown.
func FormatTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownLabel
	}

	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if secs <= 0 {
			return unknownLabel
		}

		return time.Unix(secs, 0).Format("02 Jan 2006 15:04 MST")
	}

	if ts, err := dateparse.ParseAny(raw); err == nil {
		return ts.Format("02 Jan 2006 15:04 MST")
	}

	return raw
}
