package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andikarip/telegram-saver-bot/internal/descstore"
	"github.com/andikarip/telegram-saver-bot/internal/linkdetect"
	"github.com/andikarip/telegram-saver-bot/internal/media"
	"github.com/andikarip/telegram-saver-bot/internal/platform/config"
	"github.com/andikarip/telegram-saver-bot/internal/rehost"
	"github.com/andikarip/telegram-saver-bot/internal/telegram"
)

const maxResponseBytes = 8 << 20

// Fetcher queries upstream downloader APIs and produces normalized
// descriptors. Platforms with more than one adapter rotate which upstream is
// tried first on each fetch; within one fetch the remaining adapters act as
// ordered fallbacks.
type Fetcher struct {
	client    *http.Client
	adapters  map[linkdetect.Platform][]Adapter
	cursors   map[linkdetect.Platform]*rotationCursor
	store     *descstore.Store
	uploader  *rehost.Uploader
	shortener *rehost.Shortener
	logger    *zerolog.Logger
}

// New builds a fetcher with the adapter set derived from configuration.
func New(
	cfg *config.Config,
	store *descstore.Store,
	uploader *rehost.Uploader,
	shortener *rehost.Shortener,
	logger *zerolog.Logger,
) *Fetcher {
	adapters := map[linkdetect.Platform][]Adapter{
		linkdetect.PlatformTikTok: {
			newVredenTikTok(cfg.VredenBaseURL, cfg.TikTokTimeout),
			newTikwm(cfg.TikwmBaseURL, cfg.TikTokTimeout),
		},
		linkdetect.PlatformInstagram: {
			newFerdev(linkdetect.PlatformInstagram, cfg.FerdevBaseURL, cfg.FerdevAPIKey, cfg.InstagramTimeout),
			newVredenInstagram(cfg.VredenBaseURL, cfg.InstagramTimeout),
		},
		linkdetect.PlatformFacebook: {
			newFerdev(linkdetect.PlatformFacebook, cfg.FerdevBaseURL, cfg.FerdevAPIKey, cfg.FacebookTimeout),
		},
		linkdetect.PlatformTwitter: {
			newFerdev(linkdetect.PlatformTwitter, cfg.FerdevBaseURL, cfg.FerdevAPIKey, cfg.TwitterTimeout),
		},
		linkdetect.PlatformDouyin: {
			newFerdev(linkdetect.PlatformDouyin, cfg.FerdevBaseURL, cfg.FerdevAPIKey, cfg.DouyinTimeout),
		},
	}

	cursors := make(map[linkdetect.Platform]*rotationCursor, len(adapters))
	for platform := range adapters {
		cursors[platform] = &rotationCursor{}
	}

	return &Fetcher{
		client:    &http.Client{},
		adapters:  adapters,
		cursors:   cursors,
		store:     store,
		uploader:  uploader,
		shortener: shortener,
		logger:    logger,
	}
}

// Fetch resolves a post URL into a descriptor, trying each upstream for the
// platform in rotation order and returning the first usable result. chatID
// scopes the description cache entry written for a successful result.
func (f *Fetcher) Fetch(
	ctx context.Context,
	platform linkdetect.Platform,
	targetURL string,
	chatID int64,
) (*media.Descriptor, *Failure) {
	list := f.adapters[platform]
	if len(list) == 0 {
		return nil, &Failure{Reason: ReasonAllUpstreamsFailed, Message: "no upstream configured"}
	}

	start := f.cursors[platform].begin(len(list))

	var last *Failure

	for i := 0; i < len(list); i++ {
		ad := list[(start+i)%len(list)]

		d, failure := f.attempt(ctx, ad, platform, targetURL)
		if failure == nil {
			AttemptsTotal.WithLabelValues(string(platform), ad.Name(), StatusSuccess).Inc()
			f.finalize(ctx, d, chatID)

			return d, nil
		}

		AttemptsTotal.WithLabelValues(string(platform), ad.Name(), StatusFailure).Inc()
		f.logger.Warn().
			Str("platform", string(platform)).
			Str("api", ad.Name()).
			Str("reason", string(failure.Reason)).
			Str("detail", failure.Message).
			Msg("upstream attempt failed")

		last = failure
	}

	FailuresTotal.WithLabelValues(string(platform), string(last.Reason)).Inc()

	// The last failure's reason drives the user-facing wording, so it is
	// returned unchanged rather than collapsed into a generic one.
	return nil, last
}

func (f *Fetcher) attempt(
	ctx context.Context,
	ad Adapter,
	platform linkdetect.Platform,
	targetURL string,
) (*media.Descriptor, *Failure) {
	reqCtx, cancel := context.WithTimeout(ctx, ad.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, ad.RequestURL(targetURL), nil)
	if err != nil {
		return nil, &Failure{Reason: ReasonUpstreamError, Message: err.Error()}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Failure{
			Reason:  ReasonUpstreamError,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	d, err := ad.Extract(raw)
	if err != nil {
		var failure *Failure
		if errors.As(err, &failure) {
			return nil, failure
		}

		return nil, &Failure{Reason: ReasonMalformedResponse, Message: err.Error()}
	}

	d.Platform = platform
	d.SourceName = ad.Name()

	return d, nil
}

func classifyTransportError(err error) *Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Reason: ReasonTimeout, Message: "upstream did not respond in time"}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Failure{Reason: ReasonTimeout, Message: "upstream did not respond in time"}
	}

	return &Failure{Reason: ReasonUpstreamError, Message: err.Error()}
}

// finalize applies post-extraction steps shared by every adapter: a stable
// media identifier, re-hosting of files Telegram refuses to fetch by URL,
// optional shortening of button links and the description cache write.
func (f *Fetcher) finalize(ctx context.Context, d *media.Descriptor, chatID int64) {
	if d.MediaID == "" {
		d.MediaID = uuid.NewString()[:8]
	}

	d.PrimaryURL = f.maybeRehost(ctx, d, d.PrimaryURL, d.PrimarySize, "video")
	d.SecondaryURL = f.maybeRehost(ctx, d, d.SecondaryURL, d.SecondarySize, "video")

	if f.shortener != nil && f.shortener.Enabled() {
		d.AudioURL = f.maybeShorten(ctx, d.AudioURL)
		d.ProfilePicURL = f.maybeShorten(ctx, d.ProfilePicURL)
	}

	if d.Description != "" {
		f.store.Put(chatID, d.MediaID, d.Description)
	}
}

// maybeRehost substitutes an upload-host link when the reported size exceeds
// what Telegram fetches by URL. The original link is kept on any error so a
// degraded button is still better than none.
func (f *Fetcher) maybeRehost(ctx context.Context, d *media.Descriptor, mediaURL string, size int64, hint string) string {
	if mediaURL == "" || size <= telegram.GeneralSizeLimit {
		return mediaURL
	}

	if f.uploader == nil || !f.uploader.Enabled() || f.uploader.TooLarge(size) {
		return mediaURL
	}

	hosted, err := f.uploader.Rehost(ctx, mediaURL, string(d.Platform)+"_"+hint)
	if err != nil {
		RehostTotal.WithLabelValues(StatusFailure).Inc()
		f.logger.Warn().Err(err).Str("url", mediaURL).Msg("re-hosting failed, keeping original link")

		return mediaURL
	}

	RehostTotal.WithLabelValues(StatusSuccess).Inc()

	return hosted
}

func (f *Fetcher) maybeShorten(ctx context.Context, longURL string) string {
	if longURL == "" {
		return longURL
	}

	shortCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	short, err := f.shortener.Shorten(shortCtx, longURL)
	if err != nil {
		f.logger.Debug().Err(err).Msg("shortener unavailable, keeping original link")

		return longURL
	}

	return short
}

// CursorPositions reports the rotation cursor per platform, for the owner
// diagnostics command.
func (f *Fetcher) CursorPositions() map[string]int {
	out := make(map[string]int, len(f.cursors))
	for platform, cursor := range f.cursors {
		out[string(platform)] = cursor.position()
	}

	return out
}
