package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andikarip/telegram-saver-bot/internal/descstore"
	"github.com/andikarip/telegram-saver-bot/internal/fetch"
	"github.com/andikarip/telegram-saver-bot/internal/linkdetect"
	"github.com/andikarip/telegram-saver-bot/internal/media"
	"github.com/andikarip/telegram-saver-bot/internal/platform/config"
)

type sentMessage struct {
	chatID  int64
	text    string
	replyTo int
}

type ackedCallback struct {
	id    string
	text  string
	alert bool
}

type fakeSender struct {
	messages []sentMessage
	acks     []ackedCallback
	sendErr  error
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string, _ media.Keyboard, replyTo int) error {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, replyTo: replyTo})

	return f.sendErr
}

func (f *fakeSender) AnswerCallback(_ context.Context, callbackID, text string, showAlert bool) error {
	f.acks = append(f.acks, ackedCallback{id: callbackID, text: text, alert: showAlert})

	return nil
}

type fakeFetcher struct {
	descriptor *media.Descriptor
	failure    *fetch.Failure
	calls      int
	lastURL    string
}

func (f *fakeFetcher) Fetch(_ context.Context, _ linkdetect.Platform, targetURL string, _ int64) (*media.Descriptor, *fetch.Failure) {
	f.calls++
	f.lastURL = targetURL

	if f.failure != nil {
		return nil, f.failure
	}

	return f.descriptor, nil
}

func (f *fakeFetcher) CursorPositions() map[string]int {
	return map[string]int{"tiktok": 1, "instagram": 0}
}

type fakeDeliverer struct {
	delivered    []string
	lastCallback string
}

func (f *fakeDeliverer) Deliver(_ context.Context, _ int64, d *media.Descriptor, descCallback string) bool {
	f.delivered = append(f.delivered, d.MediaID)
	f.lastCallback = descCallback

	return true
}

type fixture struct {
	bot     *Bot
	sender  *fakeSender
	fetcher *fakeFetcher
	engine  *fakeDeliverer
	store   *descstore.Store
}

func newFixture(ownerID int64) *fixture {
	logger := zerolog.Nop()
	sender := &fakeSender{}
	fetcher := &fakeFetcher{}
	engine := &fakeDeliverer{}
	store := descstore.New()
	cfg := &config.Config{OwnerID: ownerID}

	return &fixture{
		bot:     New(cfg, sender, fetcher, engine, store, &logger),
		sender:  sender,
		fetcher: fetcher,
		engine:  engine,
		store:   store,
	}
}

func textUpdate(chatID int64, messageID int, text string) *tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: messageID,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}

	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}}
	}

	return &tgbotapi.Update{Message: msg}
}

func stickerUpdate(chatID int64) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 9,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Sticker:   &tgbotapi.Sticker{FileID: "sticker"},
	}}
}

func callbackUpdate(chatID int64, data string) *tgbotapi.Update {
	return &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func TestHandler_MethodAndBodyValidation(t *testing.T) {
	f := newFixture(0)
	srv := httptest.NewServer(f.bot.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(srv.URL, "application/json", strings.NewReader("{broken"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL, "application/json", strings.NewReader(`{"update_id": 1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartAndHelp(t *testing.T) {
	f := newFixture(0)

	f.bot.HandleUpdate(context.Background(), textUpdate(42, 1, "/start"))
	require.Len(t, f.sender.messages, 1)
	assert.Equal(t, textWelcome, f.sender.messages[0].text)
	assert.Equal(t, 1, f.sender.messages[0].replyTo)

	f.bot.HandleUpdate(context.Background(), textUpdate(42, 2, "/help"))
	require.Len(t, f.sender.messages, 2)
	assert.Equal(t, textHelp, f.sender.messages[1].text)
}

func TestNudgeEscalationAndSilence(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	f.bot.HandleUpdate(ctx, textUpdate(42, 1, "halo"))
	f.bot.HandleUpdate(ctx, textUpdate(42, 2, "halo lagi"))
	f.bot.HandleUpdate(ctx, textUpdate(42, 3, "masih halo"))
	f.bot.HandleUpdate(ctx, textUpdate(42, 4, "woi"))
	f.bot.HandleUpdate(ctx, textUpdate(42, 5, "woi bot"))

	require.Len(t, f.sender.messages, 3)
	assert.Equal(t, textNudgeText, f.sender.messages[0].text)
	assert.Equal(t, textNudgeText, f.sender.messages[1].text)
	assert.Equal(t, textNudgeFinal, f.sender.messages[2].text)
}

func TestNudgeNonTextMessages(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	f.bot.HandleUpdate(ctx, stickerUpdate(42))
	f.bot.HandleUpdate(ctx, stickerUpdate(42))
	f.bot.HandleUpdate(ctx, stickerUpdate(42))
	f.bot.HandleUpdate(ctx, stickerUpdate(42))

	require.Len(t, f.sender.messages, 3)
	assert.Equal(t, textNudgeNonText, f.sender.messages[0].text)
	assert.Equal(t, textNudgeFinal, f.sender.messages[2].text)
}

func TestNudgeCounterResetByLink(t *testing.T) {
	f := newFixture(0)
	f.fetcher.descriptor = &media.Descriptor{MediaID: "m1", Kind: media.KindVideo, PrimaryURL: "https://v"}
	ctx := context.Background()

	f.bot.HandleUpdate(ctx, textUpdate(42, 1, "halo"))
	f.bot.HandleUpdate(ctx, textUpdate(42, 2, "halo"))
	f.bot.HandleUpdate(ctx, textUpdate(42, 3, "https://vt.tiktok.com/xyz"))

	// Counter starts over after the link.
	f.bot.HandleUpdate(ctx, textUpdate(42, 4, "halo"))

	last := f.sender.messages[len(f.sender.messages)-1]
	assert.Equal(t, textNudgeText, last.text)
}

func TestCountersIndependentPerChat(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.bot.HandleUpdate(ctx, textUpdate(1, i, "halo"))
	}

	f.bot.HandleUpdate(ctx, textUpdate(2, 10, "halo"))

	last := f.sender.messages[len(f.sender.messages)-1]
	assert.Equal(t, int64(2), last.chatID)
	assert.Equal(t, textNudgeText, last.text)
}

func TestUnsupportedLink(t *testing.T) {
	f := newFixture(0)

	f.bot.HandleUpdate(context.Background(), textUpdate(42, 1, "https://example.com/video"))

	require.Len(t, f.sender.messages, 1)
	assert.Equal(t, textUnsupported, f.sender.messages[0].text)
	assert.Zero(t, f.fetcher.calls)
}

func TestLinkFlow_SuccessDeliversWithRevealCallback(t *testing.T) {
	f := newFixture(0)
	f.fetcher.descriptor = &media.Descriptor{
		MediaID:     "abc123",
		Kind:        media.KindVideo,
		PrimaryURL:  "https://cdn/hd.mp4",
		Description: "deskripsi",
	}

	f.bot.HandleUpdate(context.Background(), textUpdate(42, 5, "tonton https://vm.tiktok.com/ZSabc/"))

	require.Len(t, f.sender.messages, 1)
	assert.Equal(t, "⏳ Sedang memproses link TikTok Anda...", f.sender.messages[0].text)
	assert.Equal(t, 5, f.sender.messages[0].replyTo)

	assert.Equal(t, "https://vm.tiktok.com/ZSabc/", f.fetcher.lastURL)
	assert.Equal(t, []string{"abc123"}, f.engine.delivered)
	assert.Equal(t, "ttdesc:42:abc123", f.engine.lastCallback)
}

func TestLinkFlow_NoDescriptionMeansNoCallback(t *testing.T) {
	f := newFixture(0)
	f.fetcher.descriptor = &media.Descriptor{MediaID: "abc", Kind: media.KindVideo, PrimaryURL: "https://v"}

	f.bot.HandleUpdate(context.Background(), textUpdate(42, 1, "https://x.com/user/status/1"))

	assert.Empty(t, f.engine.lastCallback)
}

func TestLinkFlow_FailureWording(t *testing.T) {
	tests := []struct {
		name    string
		failure *fetch.Failure
		want    string
	}{
		{
			name:    "timeout",
			failure: &fetch.Failure{Reason: fetch.ReasonTimeout},
			want:    "❌ Maaf, server downloader TikTok terlalu lama merespons. Coba lagi nanti. 🗿",
		},
		{
			name:    "upstream error carries message",
			failure: &fetch.Failure{Reason: fetch.ReasonUpstreamError, Message: "link invalid"},
			want:    "❌ Maaf, terjadi kesalahan dari server downloader TikTok: link invalid 🗿",
		},
		{
			name:    "no usable media",
			failure: &fetch.Failure{Reason: fetch.ReasonNoUsableMedia},
			want:    "❌ Maaf, API TikTok berhasil merespons tapi tidak menemukan link media. 🗿",
		},
		{
			name:    "exhausted",
			failure: &fetch.Failure{Reason: fetch.ReasonAllUpstreamsFailed},
			want:    "❌ Maaf, server downloader TikTok sedang sibuk atau gagal memproses link Anda. Coba lagi nanti. 🗿",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(0)
			f.fetcher.failure = tt.failure

			f.bot.HandleUpdate(context.Background(), textUpdate(42, 1, "https://vt.tiktok.com/x"))

			require.Len(t, f.sender.messages, 2)
			assert.Equal(t, tt.want, f.sender.messages[1].text)
			assert.Empty(t, f.engine.delivered)
		})
	}
}

func TestAICommand_OwnerGate(t *testing.T) {
	f := newFixture(99)

	f.bot.HandleUpdate(context.Background(), textUpdate(42, 1, "/ai"))
	require.Len(t, f.sender.messages, 1)
	assert.Equal(t, textOwnerOnly, f.sender.messages[0].text)

	f.bot.HandleUpdate(context.Background(), textUpdate(99, 2, "/ai"))
	require.Len(t, f.sender.messages, 2)
	assert.Contains(t, f.sender.messages[1].text, "Diagnostik")
	assert.Contains(t, f.sender.messages[1].text, "tiktok: 1")
}

func TestAICommand_DisabledWithoutOwner(t *testing.T) {
	f := newFixture(0)

	f.bot.HandleUpdate(context.Background(), textUpdate(42, 1, "/ai"))
	require.Len(t, f.sender.messages, 1)
	assert.Equal(t, textOwnerOnly, f.sender.messages[0].text)
}

func TestCallback_RevealIsOneShot(t *testing.T) {
	f := newFixture(0)
	f.store.Put(42, "abc123", "deskripsi panjang sekali")

	f.bot.HandleUpdate(context.Background(), callbackUpdate(42, "ttdesc:42:abc123"))

	require.Len(t, f.sender.messages, 1)
	assert.Equal(t, "📝 *Deskripsi Lengkap (TikTok):*\n\ndeskripsi panjang sekali", f.sender.messages[0].text)
	assert.Equal(t, 77, f.sender.messages[0].replyTo)

	require.Len(t, f.sender.acks, 1)
	assert.Empty(t, f.sender.acks[0].text)

	// The entry was consumed; pressing again reports it gone.
	f.bot.HandleUpdate(context.Background(), callbackUpdate(42, "ttdesc:42:abc123"))

	require.Len(t, f.sender.acks, 2)
	assert.Equal(t, textRevealGone, f.sender.acks[1].text)
	assert.False(t, f.sender.acks[1].alert)
	assert.Len(t, f.sender.messages, 1)
}

func TestCallback_RevealSendFailureStillClears(t *testing.T) {
	f := newFixture(0)
	f.store.Put(42, "abc123", "deskripsi")
	f.sender.sendErr = errors.New("blocked")

	f.bot.HandleUpdate(context.Background(), callbackUpdate(42, "igdesc:42:abc123"))

	require.Len(t, f.sender.acks, 1)
	assert.Equal(t, textRevealSendFailed, f.sender.acks[0].text)
	assert.True(t, f.sender.acks[0].alert)

	_, ok := f.store.Get(42, "abc123")
	assert.False(t, ok)
}

func TestCallback_NoopAndUnknown(t *testing.T) {
	f := newFixture(0)

	f.bot.HandleUpdate(context.Background(), callbackUpdate(42, "noop"))
	require.Len(t, f.sender.acks, 1)
	assert.Empty(t, f.sender.acks[0].text)

	f.bot.HandleUpdate(context.Background(), callbackUpdate(42, "what:is:this:even"))
	require.Len(t, f.sender.acks, 2)
	assert.Equal(t, textUnknownAction, f.sender.acks[1].text)

	assert.Empty(t, f.sender.messages)
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name string
		data string
		want callbackAction
	}{
		{"noop", "noop", callbackAction{kind: callbackNoop}},
		{
			"tiktok reveal",
			"ttdesc:42:abc",
			callbackAction{kind: callbackReveal, platform: linkdetect.PlatformTikTok, chatID: 42, mediaID: "abc"},
		},
		{
			"douyin reveal",
			"dydesc:-100123:m9",
			callbackAction{kind: callbackReveal, platform: linkdetect.PlatformDouyin, chatID: -100123, mediaID: "m9"},
		},
		{"unknown prefix", "xxdesc:42:abc", callbackAction{kind: callbackUnrecognized}},
		{"bad chat id", "ttdesc:notanumber:abc", callbackAction{kind: callbackUnrecognized}},
		{"missing media id", "ttdesc:42:", callbackAction{kind: callbackUnrecognized}},
		{"too few parts", "ttdesc:42", callbackAction{kind: callbackUnrecognized}},
		{"empty", "", callbackAction{kind: callbackUnrecognized}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCallback(tt.data))
		})
	}
}

func TestRevealCallbackData(t *testing.T) {
	assert.Equal(t, "igdesc:42:abc", revealCallbackData(linkdetect.PlatformInstagram, 42, "abc"))
	assert.Empty(t, revealCallbackData(linkdetect.PlatformUnsupported, 42, "abc"))
}
