// Package deliver implements the tiered send cascade that turns a media
// descriptor into messages: direct media first, degraded forms after,
// buttons as a last resort, and an explicit failure notice when nothing
// can be sent. The user never gets silence.
package deliver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/andikarip/telegram-saver-bot/internal/media"
)

// User-facing texts.
const (
	coverFallbackPrefix = "🖼️ *Cover (Video Gagal):*\n"
	albumButtonsNotice  = "Tombol Unduhan & Info:"
	albumTruncatedFmt   = "_(Info: Hanya tombol unduhan untuk %d gambar slide pertama ditampilkan.)_"
	albumCounterFmt     = "\n\n_(Gambar 1 dari %d)_"
	buttonsFallbackFmt  = "⚠️ Gagal mengirim media secara langsung.\n\n%s\n\nCoba unduh via tombol:"
	nothingDeliverable  = "❌ Gagal mengirim media dan tidak ada link unduhan. 🗿"
)

// Transport is the messaging surface the cascade runs against.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, kb media.Keyboard, replyTo int) error
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, kb media.Keyboard, size int64) error
	SendVideo(ctx context.Context, chatID int64, videoURL, caption string, kb media.Keyboard, size int64) error
	SendAlbum(ctx context.Context, chatID int64, items []media.AlbumItem, caption string) error
}

// Engine executes the delivery cascade.
type Engine struct {
	transport Transport
	columns   int
	maxAlbum  int
	logger    *zerolog.Logger
}

func New(transport Transport, columns, maxAlbumButtons int, logger *zerolog.Logger) *Engine {
	return &Engine{transport: transport, columns: columns, maxAlbum: maxAlbumButtons, logger: logger}
}

// Deliver attempts the cascade for one descriptor. descCallback, when
// non-empty, becomes the reveal-description button. The return value is
// true whenever the user received media, buttons or both; false only when
// nothing at all was deliverable and the failure notice was sent instead.
func (e *Engine) Deliver(ctx context.Context, chatID int64, d *media.Descriptor, descCallback string) bool {
	opts := media.ButtonOptions{Columns: e.columns, MaxAlbumButtons: e.maxAlbum}
	if d.Description != "" {
		opts.DescCallback = descCallback
	}

	kb, albumShown := media.Buttons(d, opts)

	var sent bool

	switch d.Kind {
	case media.KindVideo:
		sent = e.deliverVideo(ctx, chatID, d, kb)
	case media.KindPhotoAlbum:
		sent = e.deliverAlbum(ctx, chatID, d, kb, albumShown)
	default:
		sent = e.deliverPhoto(ctx, chatID, d, kb)
	}

	if sent {
		return true
	}

	if len(kb) > 0 {
		text := fmt.Sprintf(buttonsFallbackFmt, d.Caption)
		if err := e.transport.SendText(ctx, chatID, text, kb, 0); err != nil {
			e.logger.Error().Err(err).Int64("chat_id", chatID).Msg("button fallback message failed")
		}

		deliveriesTotal.WithLabelValues(outcomeButtons).Inc()

		return true
	}

	if err := e.transport.SendText(ctx, chatID, nothingDeliverable, nil, 0); err != nil {
		e.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failure notice failed")
	}

	deliveriesTotal.WithLabelValues(outcomeNothing).Inc()

	return false
}

// deliverVideo tries primary video, then the distinct secondary, then the
// cover image with an adjusted caption. Buttons ride along on every tier.
func (e *Engine) deliverVideo(ctx context.Context, chatID int64, d *media.Descriptor, kb media.Keyboard) bool {
	if d.PrimaryURL != "" {
		err := e.transport.SendVideo(ctx, chatID, d.PrimaryURL, d.Caption, kb, d.PrimarySize)
		if err == nil {
			deliveriesTotal.WithLabelValues(outcomeMedia).Inc()

			return true
		}

		e.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("primary video send failed")
	}

	if d.SecondaryURL != "" && d.SecondaryURL != d.PrimaryURL {
		err := e.transport.SendVideo(ctx, chatID, d.SecondaryURL, d.Caption, kb, d.SecondarySize)
		if err == nil {
			deliveriesTotal.WithLabelValues(outcomeMedia).Inc()

			return true
		}

		e.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("secondary video send failed")
	}

	if d.CoverURL != "" {
		err := e.transport.SendPhoto(ctx, chatID, d.CoverURL, coverFallbackPrefix+d.Caption, kb, d.CoverSize)
		if err == nil {
			deliveriesTotal.WithLabelValues(outcomeCover).Inc()

			return true
		}

		e.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("cover fallback send failed")
	}

	return false
}

// deliverAlbum sends the grouped-media call, then the buttons as a
// follow-up text since a media group cannot carry an inline keyboard. A
// one-item album degrades to a single photo, as does a failed group send.
func (e *Engine) deliverAlbum(ctx context.Context, chatID int64, d *media.Descriptor, kb media.Keyboard, albumShown int) bool {
	items := validItems(d.AlbumItems)
	if len(items) == 0 {
		return false
	}

	if len(items) == 1 {
		return e.deliverSingleItem(ctx, chatID, items[0], d.Caption, kb)
	}

	caption := d.Caption + fmt.Sprintf(albumCounterFmt, len(items))

	if err := e.transport.SendAlbum(ctx, chatID, items, caption); err != nil {
		e.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("album send failed, degrading to single item")

		return e.deliverSingleItem(ctx, chatID, items[0], d.Caption, kb)
	}

	deliveriesTotal.WithLabelValues(outcomeMedia).Inc()

	if len(kb) > 0 {
		if err := e.transport.SendText(ctx, chatID, albumButtonsNotice, kb, 0); err != nil {
			e.logger.Error().Err(err).Int64("chat_id", chatID).Msg("album button message failed")
		}

		if len(d.AlbumItems) > albumShown {
			notice := fmt.Sprintf(albumTruncatedFmt, albumShown)
			if err := e.transport.SendText(ctx, chatID, notice, nil, 0); err != nil {
				e.logger.Error().Err(err).Int64("chat_id", chatID).Msg("album truncation notice failed")
			}
		}
	}

	return true
}

func (e *Engine) deliverSingleItem(ctx context.Context, chatID int64, item media.AlbumItem, caption string, kb media.Keyboard) bool {
	var err error
	if item.Type == media.AlbumVideo {
		err = e.transport.SendVideo(ctx, chatID, item.URL, caption, kb, 0)
	} else {
		err = e.transport.SendPhoto(ctx, chatID, item.URL, caption, kb, 0)
	}

	if err != nil {
		e.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("single album item send failed")

		return false
	}

	deliveriesTotal.WithLabelValues(outcomeMedia).Inc()

	return true
}

func (e *Engine) deliverPhoto(ctx context.Context, chatID int64, d *media.Descriptor, kb media.Keyboard) bool {
	if d.PrimaryURL == "" {
		return false
	}

	if err := e.transport.SendPhoto(ctx, chatID, d.PrimaryURL, d.Caption, kb, d.PrimarySize); err != nil {
		e.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("photo send failed")

		return false
	}

	deliveriesTotal.WithLabelValues(outcomeMedia).Inc()

	return true
}

func validItems(items []media.AlbumItem) []media.AlbumItem {
	out := make([]media.AlbumItem, 0, len(items))

	for _, item := range items {
		if item.URL != "" {
			out = append(out, item)
		}
	}

	return out
}
