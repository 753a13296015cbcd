package fetch

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/andikarip/telegram-saver-bot/internal/media"
)

const vredenInstagramName = "Vreden"

// vredenInstagramResponse mirrors the vreden Instagram downloader schema,
// the same envelope as its TikTok endpoint with a media list payload.
type vredenInstagramResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Result  struct {
		Shortcode string `json:"shortcode"`
		Caption   string `json:"caption"`
		Username  string `json:"username"`
		TakenAt   string `json:"taken_at"`
		Thumbnail string `json:"thumbnail"`
		Media     []struct {
			URL  string `json:"url"`
			Type string `json:"type"`
		} `json:"media"`
	} `json:"result"`
}

type vredenInstagram struct {
	baseURL string
	timeout time.Duration
}

func newVredenInstagram(baseURL string, timeout time.Duration) *vredenInstagram {
	return &vredenInstagram{baseURL: baseURL, timeout: timeout}
}

func (a *vredenInstagram) Name() string { return vredenInstagramName }

func (a *vredenInstagram) Timeout() time.Duration { return a.timeout }

func (a *vredenInstagram) RequestURL(target string) string {
	return fmt.Sprintf("%s/api/v1/download/instagram?url=%s", a.baseURL, url.QueryEscape(target))
}

func (a *vredenInstagram) Extract(raw []byte) (*media.Descriptor, error) {
	var resp vredenInstagramResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Failure{Reason: ReasonMalformedResponse, Message: err.Error()}
	}

	if !resp.Status {
		return nil, upstreamFailure(resp.Message)
	}

	result := resp.Result

	d := &media.Descriptor{
		MediaID:     result.Shortcode,
		Description: html.UnescapeString(result.Caption),
	}

	d.Caption = instagramCaption(d.Description, result.Username, result.TakenAt, vredenInstagramName)

	d.TotalAlbumCandidates = len(result.Media)

	for _, m := range result.Media {
		if m.URL == "" {
			continue
		}

		item := media.AlbumItem{URL: m.URL, Type: media.AlbumPhoto}
		if m.Type == "video" || strings.Contains(m.URL, ".mp4") {
			item.Type = media.AlbumVideo
		}

		d.AlbumItems = append(d.AlbumItems, item)
	}

	switch len(d.AlbumItems) {
	case 0:
		return nil, &Failure{Reason: ReasonNoUsableMedia, Message: "response carried no media URLs"}
	case 1:
		if d.AlbumItems[0].Type == media.AlbumVideo {
			d.Kind = media.KindVideo
			d.CoverURL = result.Thumbnail
		} else {
			d.Kind = media.KindPhotoSingle
		}

		d.PrimaryURL = d.AlbumItems[0].URL
		d.AlbumItems = nil
	default:
		d.Kind = media.KindPhotoAlbum
		d.CoverURL = result.Thumbnail
	}

	return d, nil
}
