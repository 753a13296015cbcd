package fetch

import (
	"time"

	"github.com/andikarip/telegram-saver-bot/internal/media"
)

// Adapter interprets one upstream downloader API for one platform. The
// fetch loop is written once against this interface; adding an alternate
// upstream or a new platform means adding one adapter, never touching the
// fetch/rotation logic. Upstream response schemas change without notice, so
// keeping "how to call" separate from "how to interpret" is the point.
type Adapter interface {
	// Name identifies the upstream in captions and logs.
	Name() string

	// RequestURL builds the full GET URL for a target post link.
	RequestURL(target string) string

	// Timeout bounds one request to this upstream.
	Timeout() time.Duration

	// Extract maps a raw response body to a descriptor. It returns a
	// *Failure (as error) carrying the upstream's own error message when
	// the body reports failure or yields no usable media.
	Extract(raw []byte) (*media.Descriptor, error)
}
