package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatten(kb Keyboard) []Button {
	var out []Button
	for _, row := range kb {
		out = append(out, row...)
	}

	return out
}

func TestButtons_Order(t *testing.T) {
	d := &Descriptor{
		Kind:          KindVideo,
		PrimaryURL:    "https://hd",
		SecondaryURL:  "https://sd",
		CoverURL:      "https://cover",
		AudioURL:      "https://audio",
		ProfilePicURL: "https://avatar",
	}

	kb, albumCount := Buttons(d, ButtonOptions{Columns: 2, MaxAlbumButtons: 5, DescCallback: "ttdesc:1:abc"})
	require.Equal(t, 0, albumCount)

	flat := flatten(kb)
	require.Len(t, flat, 6)

	assert.Equal(t, "https://hd", flat[0].URL)
	assert.Equal(t, "https://sd", flat[1].URL)
	assert.Equal(t, "https://cover", flat[2].URL)
	assert.Equal(t, "https://audio", flat[3].URL)
	assert.Equal(t, "https://avatar", flat[4].URL)
	assert.Equal(t, "ttdesc:1:abc", flat[5].CallbackData)
	assert.Empty(t, flat[5].URL)
}

func TestButtons_SecondaryEqualsPrimary(t *testing.T) {
	d := &Descriptor{Kind: KindVideo, PrimaryURL: "https://same", SecondaryURL: "https://same"}

	kb, _ := Buttons(d, ButtonOptions{Columns: 2})
	assert.Len(t, flatten(kb), 1)
}

func TestButtons_AlbumCap(t *testing.T) {
	d := &Descriptor{Kind: KindPhotoAlbum, TotalAlbumCandidates: 8}
	for i := 0; i < 8; i++ {
		d.AlbumItems = append(d.AlbumItems, AlbumItem{URL: "https://slide", Type: AlbumPhoto})
	}

	kb, albumCount := Buttons(d, ButtonOptions{Columns: 2, MaxAlbumButtons: 5})
	assert.Equal(t, 5, albumCount)
	assert.Len(t, flatten(kb), 5)
}

func TestButtons_CoverHiddenForAlbums(t *testing.T) {
	d := &Descriptor{
		Kind:       KindPhotoAlbum,
		CoverURL:   "https://cover",
		AlbumItems: []AlbumItem{{URL: "https://a", Type: AlbumPhoto}},
	}

	kb, _ := Buttons(d, ButtonOptions{Columns: 2, MaxAlbumButtons: 5})
	for _, b := range flatten(kb) {
		assert.NotEqual(t, "https://cover", b.URL)
	}
}

func TestButtons_GridWidth(t *testing.T) {
	d := &Descriptor{
		Kind:          KindVideo,
		PrimaryURL:    "https://hd",
		SecondaryURL:  "https://sd",
		AudioURL:      "https://audio",
		ProfilePicURL: "https://avatar",
	}

	kb, _ := Buttons(d, ButtonOptions{Columns: 2})
	require.Len(t, kb, 2)
	assert.Len(t, kb[0], 2)
	assert.Len(t, kb[1], 2)

	kb, _ = Buttons(d, ButtonOptions{Columns: 0})
	require.Len(t, kb, 4)
}

func TestDescriptor_Usable(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want bool
	}{
		{"empty", Descriptor{}, false},
		{"primary only", Descriptor{PrimaryURL: "https://v"}, true},
		{"cover only", Descriptor{CoverURL: "https://c"}, true},
		{"album only", Descriptor{AlbumItems: []AlbumItem{{URL: "https://a"}}}, true},
		{"description only is not deliverable", Descriptor{Description: "text"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Usable())
		})
	}
}
