// Package media defines the normalized descriptor produced by upstream
// downloader APIs and the inline keyboard assembly derived from it.
package media

import "github.com/andikarip/telegram-saver-bot/internal/linkdetect"

// Kind determines which delivery path applies to a descriptor.
type Kind int

const (
	KindVideo Kind = iota
	KindPhotoSingle
	KindPhotoAlbum
)

// AlbumItemType distinguishes grouped-media entries.
type AlbumItemType string

const (
	AlbumPhoto AlbumItemType = "photo"
	AlbumVideo AlbumItemType = "video"
)

// AlbumItem is one entry of a grouped-media send.
type AlbumItem struct {
	URL  string
	Type AlbumItemType
}

// Descriptor is the platform-agnostic result of querying one or more
// downloader APIs for a single post URL.
type Descriptor struct {
	MediaID  string
	Platform linkdetect.Platform
	Kind     Kind

	// Ranked candidate URLs for the main media (e.g. HD then SD).
	// Sizes are in bytes when the upstream reports them, 0 otherwise;
	// they gate transport sends and re-hosting decisions.
	PrimaryURL    string
	PrimarySize   int64
	SecondaryURL  string
	SecondarySize int64

	// CoverURL is a fallback image usable when video delivery fails.
	CoverURL  string
	CoverSize int64

	// Supplementary assets, rendered as buttons only, never auto-sent.
	AudioURL      string
	ProfilePicURL string

	// AlbumItems is populated only for KindPhotoAlbum.
	// TotalAlbumCandidates counts items before filtering/capping, so
	// delivery can tell the user when buttons were truncated.
	AlbumItems           []AlbumItem
	TotalAlbumCandidates int

	// Description is the full caption text, possibly large; cached for
	// on-demand reveal rather than sent inline.
	Description string

	// Caption is the short derived text shown with media or buttons.
	Caption string

	// SourceName records which upstream API produced this result.
	SourceName string
}

// Usable reports whether the descriptor carries anything deliverable.
// A descriptor with no primary URL, no cover and no album items cannot be
// delivered and the caller must report failure instead.
func (d *Descriptor) Usable() bool {
	return d.PrimaryURL != "" || d.CoverURL != "" || len(d.AlbumItems) > 0
}
