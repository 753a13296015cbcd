package fetch

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/andikarip/telegram-saver-bot/internal/linkdetect"
	"github.com/andikarip/telegram-saver-bot/internal/media"
	"github.com/andikarip/telegram-saver-bot/internal/platform/textutils"
)

const ferdevName = "Ferdev"

// ferdevEnvelope is the part of every ferdev response shared across
// platforms. The success flag is misspelled "succes" on some endpoints and
// spelled correctly on others, so both are decoded.
type ferdevEnvelope struct {
	Succes  bool   `json:"succes"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e *ferdevEnvelope) ok() bool { return e.Succes || e.Success }

type ferdevFacebookResponse struct {
	ferdevEnvelope
	Data struct {
		Title      string `json:"title"`
		DurationMS int64  `json:"duration_ms"`
		HD         string `json:"hd"`
		SD         string `json:"sd"`
		Thumbnail  string `json:"thumbnail"`
	} `json:"data"`
}

type ferdevTwitterResponse struct {
	ferdevEnvelope
	Result struct {
		HD     struct{ URL string } `json:"HD"`
		SemiHD struct{ URL string } `json:"SEMI_HD"`
		SD     struct{ URL string } `json:"SD"`
	} `json:"result"`
}

type ferdevDouyinResponse struct {
	ferdevEnvelope
	Result struct {
		Title     string `json:"title"`
		Thumbnail string `json:"thumbnail"`
		Download  struct {
			NoWatermark string `json:"no_watermark"`
			MP3         string `json:"mp3"`
		} `json:"download"`
	} `json:"result"`
}

type ferdevInstagramResponse struct {
	ferdevEnvelope
	Data struct {
		Type   string `json:"type"`
		Slides []struct {
			MediaURLs []ferdevMediaURL `json:"mediaUrls"`
		} `json:"slides"`
		VideoURLs    []ferdevMediaURL `json:"videoUrls"`
		ThumbnailURL string           `json:"thumbnailUrl"`
		Metadata     struct {
			Title     string `json:"title"`
			Username  string `json:"username"`
			TakenAt   string `json:"takenAt"`
			Shortcode string `json:"shortcode"`
		} `json:"metadata"`
	} `json:"data"`
}

type ferdevMediaURL struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

func (m *ferdevMediaURL) isVideo() bool {
	return m.Type == "mp4" || strings.Contains(m.URL, ".mp4")
}

// ferdev interprets the ferdev downloader family. One endpoint per
// platform, same envelope, different payload shapes.
type ferdev struct {
	platform linkdetect.Platform
	baseURL  string
	apiKey   string
	timeout  time.Duration
}

func newFerdev(platform linkdetect.Platform, baseURL, apiKey string, timeout time.Duration) *ferdev {
	return &ferdev{platform: platform, baseURL: baseURL, apiKey: apiKey, timeout: timeout}
}

func (a *ferdev) Name() string { return ferdevName }

func (a *ferdev) Timeout() time.Duration { return a.timeout }

func (a *ferdev) RequestURL(target string) string {
	u := fmt.Sprintf("%s/downloader/%s?link=%s", a.baseURL, a.platform, url.QueryEscape(target))
	if a.apiKey != "" {
		u += "&apikey=" + url.QueryEscape(a.apiKey)
	}

	return u
}

func (a *ferdev) Extract(raw []byte) (*media.Descriptor, error) {
	switch a.platform {
	case linkdetect.PlatformFacebook:
		return a.extractFacebook(raw)
	case linkdetect.PlatformTwitter:
		return a.extractTwitter(raw)
	case linkdetect.PlatformDouyin:
		return a.extractDouyin(raw)
	case linkdetect.PlatformInstagram:
		return a.extractInstagram(raw)
	default:
		return nil, &Failure{Reason: ReasonNoUsableMedia, Message: fmt.Sprintf("no ferdev endpoint for %s", a.platform)}
	}
}

func (a *ferdev) extractFacebook(raw []byte) (*media.Descriptor, error) {
	var resp ferdevFacebookResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Failure{Reason: ReasonMalformedResponse, Message: err.Error()}
	}

	if !resp.ok() {
		return nil, upstreamFailure(resp.Message)
	}

	data := resp.Data

	title := "Video Facebook"
	if data.Title != "" {
		title = html.UnescapeString(data.Title)
	}

	d := &media.Descriptor{
		Kind:          media.KindVideo,
		PrimaryURL:    data.HD,
		SecondaryURL:  data.SD,
		CoverURL:      data.Thumbnail,
		Description:   title,
		Caption:       fmt.Sprintf("🎬 *JUDUL:* %s\n⏱️ *DURASI:* %s", title, textutils.FormatDuration(data.DurationMS)),
	}

	if d.PrimaryURL == "" {
		d.PrimaryURL, d.SecondaryURL = d.SecondaryURL, ""
	}

	if !d.Usable() {
		return nil, &Failure{Reason: ReasonNoUsableMedia, Message: "response carried no media URLs"}
	}

	d.Caption += viaSuffix(ferdevName)

	return d, nil
}

func (a *ferdev) extractTwitter(raw []byte) (*media.Descriptor, error) {
	var resp ferdevTwitterResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Failure{Reason: ReasonMalformedResponse, Message: err.Error()}
	}

	if !resp.ok() {
		return nil, upstreamFailure(resp.Message)
	}

	// Three quality tiers; the best becomes primary, the next distinct
	// one the fallback.
	candidates := []string{resp.Result.HD.URL, resp.Result.SemiHD.URL, resp.Result.SD.URL}

	d := &media.Descriptor{
		Kind:    media.KindVideo,
		Caption: "✅ Link download video Twitter/X ditemukan:" + viaSuffix(ferdevName),
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}

		if d.PrimaryURL == "" {
			d.PrimaryURL = c
		} else if c != d.PrimaryURL {
			d.SecondaryURL = c

			break
		}
	}

	if !d.Usable() {
		return nil, &Failure{Reason: ReasonNoUsableMedia, Message: "response carried no video URLs"}
	}

	return d, nil
}

func (a *ferdev) extractDouyin(raw []byte) (*media.Descriptor, error) {
	var resp ferdevDouyinResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Failure{Reason: ReasonMalformedResponse, Message: err.Error()}
	}

	if !resp.ok() {
		return nil, upstreamFailure(resp.Message)
	}

	result := resp.Result

	title := "Video Douyin"
	if result.Title != "" {
		title = html.UnescapeString(result.Title)
	}

	d := &media.Descriptor{
		Kind:        media.KindVideo,
		PrimaryURL:  result.Download.NoWatermark,
		CoverURL:    result.Thumbnail,
		AudioURL:    result.Download.MP3,
		Description: title,
		Caption:     "🇨🇳 *JUDUL:* " + title + viaSuffix(ferdevName),
	}

	if d.PrimaryURL == "" && d.CoverURL != "" {
		d.Kind = media.KindPhotoSingle
		d.PrimaryURL, d.CoverURL = d.CoverURL, ""
	}

	if !d.Usable() {
		return nil, &Failure{Reason: ReasonNoUsableMedia, Message: "response carried no media URLs"}
	}

	return d, nil
}

func (a *ferdev) extractInstagram(raw []byte) (*media.Descriptor, error) {
	var resp ferdevInstagramResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Failure{Reason: ReasonMalformedResponse, Message: err.Error()}
	}

	if !resp.ok() {
		return nil, upstreamFailure(resp.Message)
	}

	data := resp.Data
	meta := data.Metadata

	d := &media.Descriptor{
		MediaID:     meta.Shortcode,
		Description: html.UnescapeString(meta.Title),
	}

	d.Caption = instagramCaption(d.Description, meta.Username, meta.TakenAt, ferdevName)

	if data.Type == "slide" && len(data.Slides) > 0 {
		d.TotalAlbumCandidates = len(data.Slides)

		for _, slide := range data.Slides {
			if len(slide.MediaURLs) == 0 || slide.MediaURLs[0].URL == "" {
				continue
			}

			item := media.AlbumItem{URL: slide.MediaURLs[0].URL, Type: media.AlbumPhoto}
			if slide.MediaURLs[0].isVideo() {
				item.Type = media.AlbumVideo
			}

			d.AlbumItems = append(d.AlbumItems, item)
		}

		switch len(d.AlbumItems) {
		case 0:
			return nil, &Failure{Reason: ReasonNoUsableMedia, Message: "slide post carried no media URLs"}
		case 1:
			if d.AlbumItems[0].Type == media.AlbumVideo {
				d.Kind = media.KindVideo
			} else {
				d.Kind = media.KindPhotoSingle
			}

			d.PrimaryURL = d.AlbumItems[0].URL
			d.AlbumItems = nil
		default:
			d.Kind = media.KindPhotoAlbum
			d.CoverURL = data.ThumbnailURL
		}

		return d, nil
	}

	if len(data.VideoURLs) == 0 || data.VideoURLs[0].URL == "" {
		return nil, &Failure{Reason: ReasonNoUsableMedia, Message: "response carried no media URLs"}
	}

	main := data.VideoURLs[0]
	d.PrimaryURL = main.URL

	if main.isVideo() {
		d.Kind = media.KindVideo
		d.CoverURL = data.ThumbnailURL
	} else {
		d.Kind = media.KindPhotoSingle
	}

	return d, nil
}

func upstreamFailure(message string) *Failure {
	if message == "" {
		message = "upstream reported failure"
	}

	return &Failure{Reason: ReasonUpstreamError, Message: message}
}

func viaSuffix(source string) string {
	return "\n\n*(via " + source + ")*"
}

// instagramCaption renders the Instagram caption: description block,
// author line when known, posting date and the source suffix.
func instagramCaption(description, username, takenAt, source string) string {
	var author string
	if username != "" {
		author = "👤 *Oleh:* @" + username + "\n"
	}

	return fmt.Sprintf(
		"✨ *Deskripsi:*\n%s\n\n%s📅 *DIPOSTING PADA:* %s%s",
		description, author, textutils.FormatTimestamp(takenAt), viaSuffix(source),
	)
}
