// Package telegram wraps the Bot API client with the send primitives the
// delivery cascade needs: URL-based media sends with size ceilings, album
// sends and a Markdown fallback that retries once with formatting stripped.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/andikarip/telegram-saver-bot/internal/media"
	"github.com/andikarip/telegram-saver-bot/internal/platform/textutils"
)

// Size ceilings Telegram enforces on media fetched by URL. Sends above
// these are rejected upstream, so they are refused locally instead.
const (
	VideoSizeLimit   int64 = 49 * 1024 * 1024
	PhotoSizeLimit   int64 = 10 * 1024 * 1024
	GeneralSizeLimit int64 = 50 * 1024 * 1024
)

// maxAlbumItems is Telegram's media group ceiling.
const maxAlbumItems = 10

// parseErrorMarkers identify Bot API rejections caused by Markdown the
// upstream caption broke. Matching is case-insensitive.
var parseErrorMarkers = []string{"parse_mode", "parse entities", "can't parse entities"}

// api is the subset of tgbotapi.BotAPI the client uses.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client sends messages and media over the Bot API.
type Client struct {
	api    api
	logger *zerolog.Logger
}

func NewClient(api api, logger *zerolog.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// SendText sends a Markdown text message. replyTo attaches the message as
// a reply when non-zero.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb media.Keyboard, replyTo int) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyToMessageID = replyTo

	if markup := toMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}

	_, err := c.api.Send(msg)
	if err == nil || !isParseError(err) {
		return err
	}

	c.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("markdown rejected, retrying without formatting")

	msg.Text = textutils.StripMarkdown(text)
	msg.ParseMode = ""

	_, err = c.api.Send(msg)

	return err
}

// SendPhoto sends a photo by URL. size is the reported byte size when
// known; photos above the transport ceiling are refused without a request.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, kb media.Keyboard, size int64) error {
	if size > PhotoSizeLimit {
		return fmt.Errorf("photo of %d bytes exceeds the %d byte ceiling", size, PhotoSizeLimit)
	}

	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeMarkdown

	if markup := toMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}

	_, err := c.api.Send(msg)
	if err == nil || !isParseError(err) {
		return err
	}

	c.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("markdown rejected, retrying without formatting")

	msg.Caption = textutils.StripMarkdown(caption)
	msg.ParseMode = ""

	_, err = c.api.Send(msg)

	return err
}

// SendVideo sends a video by URL, refusing sizes above the transport
// ceiling.
func (c *Client) SendVideo(ctx context.Context, chatID int64, videoURL, caption string, kb media.Keyboard, size int64) error {
	if size > VideoSizeLimit {
		return fmt.Errorf("video of %d bytes exceeds the %d byte ceiling", size, VideoSizeLimit)
	}

	msg := tgbotapi.NewVideo(chatID, tgbotapi.FileURL(videoURL))
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeMarkdown

	if markup := toMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}

	_, err := c.api.Send(msg)
	if err == nil || !isParseError(err) {
		return err
	}

	c.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("markdown rejected, retrying without formatting")

	msg.Caption = textutils.StripMarkdown(caption)
	msg.ParseMode = ""

	_, err = c.api.Send(msg)

	return err
}

// SendAlbum sends up to ten items as one media group with the caption on
// the first item. Telegram requires at least two items in a group.
func (c *Client) SendAlbum(ctx context.Context, chatID int64, items []media.AlbumItem, caption string) error {
	if len(items) < 2 {
		return fmt.Errorf("media group needs at least 2 items, got %d", len(items))
	}

	if len(items) > maxAlbumItems {
		items = items[:maxAlbumItems]
	}

	group := make([]interface{}, 0, len(items))

	for i, item := range items {
		switch item.Type {
		case media.AlbumVideo:
			entry := tgbotapi.NewInputMediaVideo(tgbotapi.FileURL(item.URL))
			if i == 0 {
				entry.Caption = caption
				entry.ParseMode = tgbotapi.ModeMarkdown
			}

			group = append(group, entry)
		default:
			entry := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(item.URL))
			if i == 0 {
				entry.Caption = caption
				entry.ParseMode = tgbotapi.ModeMarkdown
			}

			group = append(group, entry)
		}
	}

	cfg := tgbotapi.MediaGroupConfig{ChatID: chatID, Media: group}

	_, err := c.api.Request(cfg)
	if err == nil || !isParseError(err) {
		return err
	}

	c.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("markdown rejected, retrying album without formatting")

	stripped := textutils.StripMarkdown(caption)

	switch first := group[0].(type) {
	case tgbotapi.InputMediaVideo:
		first.Caption, first.ParseMode = stripped, ""
		group[0] = first
	case tgbotapi.InputMediaPhoto:
		first.Caption, first.ParseMode = stripped, ""
		group[0] = first
	}

	_, err = c.api.Request(tgbotapi.MediaGroupConfig{ChatID: chatID, Media: group})

	return err
}

// AnswerCallback acknowledges a callback query, optionally with a toast or
// alert text.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = showAlert

	_, err := c.api.Request(cb)

	return err
}

// isParseError reports whether a Bot API error was caused by Markdown the
// message text broke, meaning a retry without a parse mode can succeed.
func isParseError(err error) bool {
	if err == nil {
		return false
	}

	text := strings.ToLower(err.Error())

	for _, marker := range parseErrorMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}

	return false
}

// toMarkup converts a keyboard grid to the Bot API markup type. Returns
// nil for an empty keyboard so callers can leave ReplyMarkup unset.
func toMarkup(kb media.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))

	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))

		for _, b := range row {
			if b.CallbackData != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.CallbackData))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
			}
		}

		rows = append(rows, buttons)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)

	return &markup
}
