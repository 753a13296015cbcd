package fetch

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"time"

	"github.com/andikarip/telegram-saver-bot/internal/media"
)

const tikwmName = "Tikwm"

// tikwmResponse mirrors the tikwm.com downloader schema. code 0 means
// success; play/hdplay are watermark-free video variants and images holds
// slide photos.
type tikwmResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		ID         string   `json:"id"`
		Title      string   `json:"title"`
		CreateTime int64    `json:"create_time"`
		Cover      string   `json:"cover"`
		Play       string   `json:"play"`
		HDPlay     string   `json:"hdplay"`
		Size       int64    `json:"size"`
		HDSize     int64    `json:"hd_size"`
		Music      string   `json:"music"`
		Images     []string `json:"images"`
		Author     struct {
			UniqueID string `json:"unique_id"`
			Nickname string `json:"nickname"`
			Avatar   string `json:"avatar"`
		} `json:"author"`
	} `json:"data"`
}

type tikwm struct {
	baseURL string
	timeout time.Duration
}

func newTikwm(baseURL string, timeout time.Duration) *tikwm {
	return &tikwm{baseURL: baseURL, timeout: timeout}
}

func (a *tikwm) Name() string { return tikwmName }

func (a *tikwm) Timeout() time.Duration { return a.timeout }

func (a *tikwm) RequestURL(target string) string {
	return fmt.Sprintf("%s/api/?url=%s&hd=1", a.baseURL, url.QueryEscape(target))
}

func (a *tikwm) Extract(raw []byte) (*media.Descriptor, error) {
	var resp tikwmResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Failure{Reason: ReasonMalformedResponse, Message: err.Error()}
	}

	if resp.Code != 0 {
		msg := resp.Msg
		if msg == "" {
			msg = "upstream reported failure"
		}

		return nil, &Failure{Reason: ReasonUpstreamError, Message: msg}
	}

	data := resp.Data

	d := &media.Descriptor{
		MediaID:       data.ID,
		CoverURL:      data.Cover,
		AudioURL:      data.Music,
		ProfilePicURL: data.Author.Avatar,
		Description:   html.UnescapeString(data.Title),
	}

	if data.HDPlay != "" {
		d.PrimaryURL, d.PrimarySize = data.HDPlay, data.HDSize
		if data.Play != "" && data.Play != data.HDPlay {
			d.SecondaryURL, d.SecondarySize = data.Play, data.Size
		}
	} else if data.Play != "" {
		d.PrimaryURL, d.PrimarySize = data.Play, data.Size
	}

	for _, img := range data.Images {
		d.AlbumItems = append(d.AlbumItems, media.AlbumItem{URL: img, Type: media.AlbumPhoto})
	}

	d.TotalAlbumCandidates = len(d.AlbumItems)

	switch {
	case len(d.AlbumItems) == 1:
		d.Kind = media.KindPhotoSingle
		d.PrimaryURL, d.PrimarySize = d.AlbumItems[0].URL, 0
		d.AlbumItems = nil
	case len(d.AlbumItems) > 1:
		// Slide posts also carry a rendered slideshow video; prefer
		// the photos themselves.
		d.Kind = media.KindPhotoAlbum
		d.PrimaryURL, d.PrimarySize = "", 0
		d.SecondaryURL, d.SecondarySize = "", 0
	case d.PrimaryURL != "":
		d.Kind = media.KindVideo
	default:
		d.Kind = media.KindPhotoSingle
		d.PrimaryURL = d.CoverURL
	}

	if !d.Usable() {
		return nil, &Failure{Reason: ReasonNoUsableMedia, Message: "response carried no media URLs"}
	}

	author := data.Author.UniqueID
	if author == "" {
		author = data.Author.Nickname
	}

	var takenAt string
	if data.CreateTime > 0 {
		takenAt = strconv.FormatInt(data.CreateTime, 10)
	}

	d.Caption = tiktokCaption(d.Kind, d.Description, author, takenAt, tikwmName)

	return d, nil
}
