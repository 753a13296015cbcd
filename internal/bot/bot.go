// Package bot ties the webhook surface to the fetch and delivery engines:
// it parses inbound updates, routes commands, nudges users who send no
// link, and runs the link-to-media flow for the ones who do.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/andikarip/telegram-saver-bot/internal/descstore"
	"github.com/andikarip/telegram-saver-bot/internal/fetch"
	"github.com/andikarip/telegram-saver-bot/internal/linkdetect"
	"github.com/andikarip/telegram-saver-bot/internal/media"
	"github.com/andikarip/telegram-saver-bot/internal/platform/config"
)

// Command names.
const (
	cmdStart = "start"
	cmdHelp  = "help"
	cmdAI    = "ai"
)

// nudgeSilenceAfter is the counter value past which the bot stops
// responding to linkless messages entirely.
const nudgeSilenceAfter = 3

// User-facing texts.
const (
	textWelcome = "Selamat datang! 👋 Kirimkan saya link video dari Facebook, TikTok, Instagram, Twitter/X, atau Douyin!"
	textHelp    = "Platform yang didukung saat ini:\n• Facebook\n• TikTok\n• Instagram\n• Twitter/X\n• Douyin\n\nCara penggunaan:\n1. Salin link video.\n2. Kirim linknya ke saya.\n\nSaya akan coba ambil link unduhannya."

	textNudgeText     = "Linknya mana bro? (FB/TT/IG/X/Douyin) 🗿"
	textNudgeNonText  = "🗿"
	textNudgeFinal    = "terserah!!🗿"
	textUnsupported   = "❌ Link tidak didukung.\nPlatform: FB, TT, IG, X, Douyin.\nInfo /help"
	textProcessingFmt = "⏳ Sedang memproses link %s Anda..."
	textOwnerOnly     = "Perintah ini khusus pemilik bot. 🗿"

	textFailTimeoutFmt     = "❌ Maaf, server downloader %s terlalu lama merespons. Coba lagi nanti. 🗿"
	textFailUpstreamFmt    = "❌ Maaf, terjadi kesalahan dari server downloader %s: %s 🗿"
	textFailNoMediaFmt     = "❌ Maaf, API %s berhasil merespons tapi tidak menemukan link media. 🗿"
	textFailExhaustedFmt   = "❌ Maaf, server downloader %s sedang sibuk atau gagal memproses link Anda. Coba lagi nanti. 🗿"
	textFailInternalFmt    = "❌ Maaf, terjadi kesalahan internal saat mencoba mengambil link %s. 🗿"
	textRevealFmt          = "📝 *Deskripsi Lengkap (%s):*\n\n%s"
	textRevealSendFailed   = "Gagal mengirim deskripsi."
	textRevealGone         = "Deskripsi sudah ditampilkan atau tidak tersedia lagi."
	textUnknownAction      = "Aksi tidak dikenal."
	textInternalErrorBody  = "Internal Server Error - Check Logs"
	textMethodNotAllowed   = "Method Not Allowed"
	textOKBody             = "OK"
)

// platformNames are the user-facing platform labels.
var platformNames = map[linkdetect.Platform]string{
	linkdetect.PlatformFacebook:  "Facebook",
	linkdetect.PlatformTikTok:    "TikTok",
	linkdetect.PlatformInstagram: "Instagram",
	linkdetect.PlatformTwitter:   "Twitter/X",
	linkdetect.PlatformDouyin:    "Douyin",
}

// sender is the messaging surface the bot needs directly; media sends go
// through the delivery engine instead.
type sender interface {
	SendText(ctx context.Context, chatID int64, text string, kb media.Keyboard, replyTo int) error
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error
}

type fetcher interface {
	Fetch(ctx context.Context, platform linkdetect.Platform, targetURL string, chatID int64) (*media.Descriptor, *fetch.Failure)
	CursorPositions() map[string]int
}

type deliverer interface {
	Deliver(ctx context.Context, chatID int64, d *media.Descriptor, descCallback string) bool
}

// Bot handles webhook updates.
type Bot struct {
	cfg     *config.Config
	sender  sender
	fetcher fetcher
	engine  deliverer
	store   *descstore.Store
	state   *stateStore
	logger  *zerolog.Logger
}

func New(cfg *config.Config, sender sender, fetcher fetcher, engine deliverer, store *descstore.Store, logger *zerolog.Logger) *Bot {
	return &Bot{
		cfg:     cfg,
		sender:  sender,
		fetcher: fetcher,
		engine:  engine,
		store:   store,
		state:   newStateStore(),
		logger:  logger,
	}
}

// Handler returns the webhook endpoint. Telegram retries any non-200
// response, so every handled update answers 200 even after an internal
// panic; only a wrong method or an unreadable body is rejected.
func (b *Bot) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, textMethodNotAllowed, http.StatusMethodNotAllowed)

			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)

			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				b.logger.Error().Interface("panic", rec).Msg("panic while handling update")
				w.WriteHeader(http.StatusOK)
				_, _ = fmt.Fprint(w, textInternalErrorBody)
			}
		}()

		b.HandleUpdate(r.Context(), &update)

		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, textOKBody)
	})
}

// HandleUpdate routes one update. Unknown update kinds are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	updatesTotal.WithLabelValues(updateKindMessage).Inc()

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)

		return
	}

	if msg.Text == "" {
		b.nudge(ctx, chatID, msg.MessageID, textNudgeNonText)

		return
	}

	link := linkdetect.Detect(msg.Text)
	if link == nil {
		b.nudge(ctx, chatID, msg.MessageID, textNudgeText)

		return
	}

	b.state.reset(chatID)

	if link.Platform == linkdetect.PlatformUnsupported {
		b.reply(ctx, chatID, textUnsupported, msg.MessageID)

		return
	}

	b.handleLink(ctx, chatID, msg.MessageID, link)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case cmdStart:
		b.state.reset(chatID)
		b.reply(ctx, chatID, textWelcome, msg.MessageID)
	case cmdHelp:
		b.state.reset(chatID)
		b.reply(ctx, chatID, textHelp, msg.MessageID)
	case cmdAI:
		if b.cfg.OwnerID == 0 || chatID != b.cfg.OwnerID {
			b.reply(ctx, chatID, textOwnerOnly, msg.MessageID)

			return
		}

		b.reply(ctx, chatID, b.diagnostics(), msg.MessageID)
	default:
		// Other commands fall through to the nudge flow the same way
		// arbitrary text does.
		b.nudge(ctx, chatID, msg.MessageID, textNudgeText)
	}
}

func (b *Bot) handleLink(ctx context.Context, chatID int64, messageID int, link *linkdetect.Link) {
	name := platformNames[link.Platform]

	linksTotal.WithLabelValues(string(link.Platform)).Inc()
	b.reply(ctx, chatID, fmt.Sprintf(textProcessingFmt, name), messageID)

	d, failure := b.fetcher.Fetch(ctx, link.Platform, link.URL, chatID)
	if failure != nil {
		b.reply(ctx, chatID, failureText(name, failure), 0)

		return
	}

	var descCallback string
	if d.Description != "" {
		descCallback = revealCallbackData(link.Platform, chatID, d.MediaID)
	}

	if delivered := b.engine.Deliver(ctx, chatID, d, descCallback); !delivered {
		b.logger.Warn().Int64("chat_id", chatID).Str("platform", string(link.Platform)).Msg("nothing deliverable for link")
	}
}

// nudge escalates replies to linkless messages: a hint twice, a final
// shrug on the third, then silence.
func (b *Bot) nudge(ctx context.Context, chatID int64, messageID int, text string) {
	count := b.state.bump(chatID)

	switch {
	case count < nudgeSilenceAfter:
		b.reply(ctx, chatID, text, messageID)
	case count == nudgeSilenceAfter:
		b.reply(ctx, chatID, textNudgeFinal, messageID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	updatesTotal.WithLabelValues(updateKindCallback).Inc()

	action := parseCallback(query.Data)

	switch action.kind {
	case callbackNoop:
		b.ack(ctx, query.ID, "", false)
	case callbackUnrecognized:
		b.logger.Warn().Str("data", query.Data).Msg("unrecognized callback data")
		b.ack(ctx, query.ID, textUnknownAction, false)
	case callbackReveal:
		b.revealDescription(ctx, query, action)
	}
}

// revealDescription sends the cached full description as a new message and
// consumes the cache entry. A second press of the same button lands on the
// consumed entry and reports it gone, which is the intended one-shot
// behavior.
func (b *Bot) revealDescription(ctx context.Context, query *tgbotapi.CallbackQuery, action callbackAction) {
	text, ok := b.store.Get(action.chatID, action.mediaID)
	if !ok {
		b.ack(ctx, query.ID, textRevealGone, false)

		return
	}

	var replyTo int
	if query.Message != nil {
		replyTo = query.Message.MessageID
	}

	message := fmt.Sprintf(textRevealFmt, platformNames[action.platform], text)

	if err := b.sender.SendText(ctx, action.chatID, message, nil, replyTo); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", action.chatID).Msg("failed to send revealed description")
		b.ack(ctx, query.ID, textRevealSendFailed, true)
		b.store.Clear(action.chatID, action.mediaID)

		return
	}

	b.ack(ctx, query.ID, "", false)
	b.store.Clear(action.chatID, action.mediaID)
}

// diagnostics renders the owner-only state summary: adapter rotation
// positions and in-memory cache sizes.
func (b *Bot) diagnostics() string {
	positions := b.fetcher.CursorPositions()

	platforms := make([]string, 0, len(positions))
	for platform := range positions {
		platforms = append(platforms, platform)
	}

	sort.Strings(platforms)

	var sb strings.Builder

	sb.WriteString("🤖 *Diagnostik*\n\n*Rotasi upstream:*\n")

	for _, platform := range platforms {
		fmt.Fprintf(&sb, "• %s: %d\n", platform, positions[platform])
	}

	fmt.Fprintf(&sb, "\n*Deskripsi tersimpan:* %d\n*Chat dengan counter aktif:* %d", b.store.Len(), b.state.chats())

	return sb.String()
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, replyTo int) {
	if err := b.sender.SendText(ctx, chatID, text, nil, replyTo); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (b *Bot) ack(ctx context.Context, callbackID, text string, showAlert bool) {
	if err := b.sender.AnswerCallback(ctx, callbackID, text, showAlert); err != nil {
		b.logger.Error().Err(err).Msg("failed to answer callback query")
	}
}

// failureText maps a fetch failure to its user-facing wording.
func failureText(platformName string, failure *fetch.Failure) string {
	switch failure.Reason {
	case fetch.ReasonTimeout:
		return fmt.Sprintf(textFailTimeoutFmt, platformName)
	case fetch.ReasonUpstreamError:
		return fmt.Sprintf(textFailUpstreamFmt, platformName, failure.Message)
	case fetch.ReasonNoUsableMedia:
		return fmt.Sprintf(textFailNoMediaFmt, platformName)
	case fetch.ReasonAllUpstreamsFailed:
		return fmt.Sprintf(textFailExhaustedFmt, platformName)
	default:
		return fmt.Sprintf(textFailInternalFmt, platformName)
	}
}
