package fetch

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"time"

	"github.com/andikarip/telegram-saver-bot/internal/media"
	"github.com/andikarip/telegram-saver-bot/internal/platform/textutils"
)

const (
	vredenTikTokName = "Vreden"

	vredenVariantHD     = "nowatermark_hd"
	vredenVariantSD     = "nowatermark"
	vredenVariantPhoto  = "photo"
	vredenTikTokPathFmt = "%s/api/v1/download/tiktok?url=%s"
)

// vredenTikTokResponse mirrors the vreden TikTok downloader schema. The
// data list mixes video variants and slide photos, distinguished by type.
type vredenTikTokResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Result  struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		TakenAt string `json:"taken_at"`
		Cover   string `json:"cover"`
		Author  struct {
			Fullname string `json:"fullname"`
			Nickname string `json:"nickname"`
			Avatar   string `json:"avatar"`
		} `json:"author"`
		MusicInfo struct {
			URL string `json:"url"`
		} `json:"music_info"`
		SizeNowmHD int64 `json:"size_nowm_hd"`
		SizeNowm   int64 `json:"size_nowm"`
		Data       []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"data"`
	} `json:"result"`
}

type vredenTikTok struct {
	baseURL string
	timeout time.Duration
}

func newVredenTikTok(baseURL string, timeout time.Duration) *vredenTikTok {
	return &vredenTikTok{baseURL: baseURL, timeout: timeout}
}

func (a *vredenTikTok) Name() string { return vredenTikTokName }

func (a *vredenTikTok) Timeout() time.Duration { return a.timeout }

func (a *vredenTikTok) RequestURL(target string) string {
	return fmt.Sprintf(vredenTikTokPathFmt, a.baseURL, url.QueryEscape(target))
}

func (a *vredenTikTok) Extract(raw []byte) (*media.Descriptor, error) {
	var resp vredenTikTokResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Failure{Reason: ReasonMalformedResponse, Message: err.Error()}
	}

	if !resp.Status {
		msg := resp.Message
		if msg == "" {
			msg = "upstream reported failure"
		}

		return nil, &Failure{Reason: ReasonUpstreamError, Message: msg}
	}

	result := resp.Result

	d := &media.Descriptor{
		MediaID:       result.ID,
		CoverURL:      result.Cover,
		AudioURL:      result.MusicInfo.URL,
		ProfilePicURL: result.Author.Avatar,
		Description:   html.UnescapeString(result.Title),
	}

	for _, item := range result.Data {
		switch item.Type {
		case vredenVariantHD:
			d.PrimaryURL = item.URL
			d.PrimarySize = result.SizeNowmHD
		case vredenVariantSD:
			d.SecondaryURL = item.URL
			d.SecondarySize = result.SizeNowm
		case vredenVariantPhoto:
			d.AlbumItems = append(d.AlbumItems, media.AlbumItem{URL: item.URL, Type: media.AlbumPhoto})
		}
	}

	// The SD variant is the only video some posts carry.
	if d.PrimaryURL == "" && d.SecondaryURL != "" {
		d.PrimaryURL, d.PrimarySize = d.SecondaryURL, d.SecondarySize
		d.SecondaryURL, d.SecondarySize = "", 0
	}

	d.TotalAlbumCandidates = len(d.AlbumItems)

	switch {
	case d.PrimaryURL != "":
		d.Kind = media.KindVideo
	case len(d.AlbumItems) == 1:
		// A one-photo "slide" post is just a photo.
		d.Kind = media.KindPhotoSingle
		d.PrimaryURL = d.AlbumItems[0].URL
		d.AlbumItems = nil
	case len(d.AlbumItems) > 1:
		d.Kind = media.KindPhotoAlbum
	default:
		d.Kind = media.KindPhotoSingle
		d.PrimaryURL = d.CoverURL
	}

	if !d.Usable() {
		return nil, &Failure{Reason: ReasonNoUsableMedia, Message: "response carried no media URLs"}
	}

	author := result.Author.Fullname
	if author == "" {
		author = result.Author.Nickname
	}

	d.Caption = tiktokCaption(d.Kind, d.Description, author, result.TakenAt, vredenTikTokName)

	return d, nil
}

// tiktokCaption renders the shared TikTok caption: description line, author
// line when known, posting date and the source suffix. Slides get a photo
// prefix instead of the description one.
func tiktokCaption(kind media.Kind, description, author, takenAt, source string) string {
	var caption string

	if kind == media.KindPhotoAlbum {
		if description != "" {
			caption = "📸 *Slide:* " + description
		} else {
			caption = "📸 Slide TikTok"
		}
	} else {
		if description != "" {
			caption = "📝 *Deskripsi:* " + description
		} else {
			caption = "ℹ️ Konten TikTok"
		}
	}

	if author != "" {
		caption += "\n\nDiposting oleh: @" + author
	}

	caption += "\nDiposting pada: " + textutils.FormatTimestamp(takenAt)
	caption += "\n\n*(via " + source + ")*"

	return caption
}
