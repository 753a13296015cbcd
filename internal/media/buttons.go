package media

import "fmt"

// Button is one inline keyboard entry: either a URL-open button or a
// callback-trigger button. Exactly one of URL and CallbackData is set.
type Button struct {
	Label        string
	URL          string
	CallbackData string
}

// Keyboard is a grid of buttons, rows of a fixed column width.
type Keyboard [][]Button

// Button labels.
const (
	labelVideoHD    = "Unduh Video HD 💃"
	labelVideoSD    = "Unduh Video SD 🎞️"
	labelPhoto      = "Unduh Foto 📸"
	labelAlbumItem  = "Unduh Gbr Slide %d"
	labelCover      = "Unduh Cover 🖼️"
	labelAudio      = "Unduh Audio 🎵"
	labelProfilePic = "Foto Profil 👤"
	labelFullDesc   = "Deskripsi Lengkap 📝"
)

// ButtonOptions controls keyboard assembly.
type ButtonOptions struct {
	// Columns is the grid width; values below 1 mean 1.
	Columns int
	// MaxAlbumButtons caps per-item album download buttons.
	MaxAlbumButtons int
	// DescCallback, when non-empty, appends a reveal-description
	// callback button last.
	DescCallback string
}

// Buttons assembles the keyboard for a descriptor in the canonical order:
// primary media, secondary media, album items (capped), cover, audio,
// profile picture, then the description reveal button last. The returned
// count is the number of album-item buttons included, so callers can notify
// the user when the cap truncated them.
func Buttons(d *Descriptor, opts ButtonOptions) (Keyboard, int) {
	flat := make([]Button, 0, 8)

	primaryLabel := labelVideoHD
	secondaryLabel := labelVideoSD

	if d.Kind != KindVideo {
		primaryLabel = labelPhoto
	}

	if d.PrimaryURL != "" {
		flat = append(flat, Button{Label: primaryLabel, URL: d.PrimaryURL})
	}

	if d.SecondaryURL != "" && d.SecondaryURL != d.PrimaryURL {
		flat = append(flat, Button{Label: secondaryLabel, URL: d.SecondaryURL})
	}

	albumButtons := 0

	for i, item := range d.AlbumItems {
		if opts.MaxAlbumButtons > 0 && albumButtons >= opts.MaxAlbumButtons {
			break
		}

		flat = append(flat, Button{Label: fmt.Sprintf(labelAlbumItem, i+1), URL: item.URL})
		albumButtons++
	}

	if d.CoverURL != "" && d.CoverURL != d.PrimaryURL && len(d.AlbumItems) == 0 {
		flat = append(flat, Button{Label: labelCover, URL: d.CoverURL})
	}

	if d.AudioURL != "" {
		flat = append(flat, Button{Label: labelAudio, URL: d.AudioURL})
	}

	if d.ProfilePicURL != "" {
		flat = append(flat, Button{Label: labelProfilePic, URL: d.ProfilePicURL})
	}

	if opts.DescCallback != "" {
		flat = append(flat, Button{Label: labelFullDesc, CallbackData: opts.DescCallback})
	}

	return buildGrid(flat, opts.Columns), albumButtons
}

// buildGrid arranges a flat button list into rows of the given width.
func buildGrid(flat []Button, columns int) Keyboard {
	if len(flat) == 0 {
		return nil
	}

	if columns < 1 {
		columns = 1
	}

	grid := make(Keyboard, 0, (len(flat)+columns-1)/columns)

	for i := 0; i < len(flat); i += columns {
		end := i + columns
		if end > len(flat) {
			end = len(flat)
		}

		grid = append(grid, flat[i:end])
	}

	return grid
}
